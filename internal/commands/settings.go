package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apierrors "github.com/tigosprojects/tigos/internal/errors"
	"github.com/tigosprojects/tigos/internal/history"
	"github.com/tigosprojects/tigos/internal/render"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the user profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the user profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}
			s, err := store.Settings().Load(history.DefaultSettings())
			if err != nil {
				return err
			}

			pic := "(none)"
			if s.ProfilePic != nil {
				pic = *s.ProfilePic
			}
			theme := s.Theme
			if theme == "" {
				theme = string(render.DefaultTheme)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Username:    %s\n", s.Username)
			fmt.Fprintf(w, "Profile pic: %s\n", pic)
			fmt.Fprintf(w, "Theme:       %s\n", theme)
			fmt.Fprintf(w, "File:        %s\n", store.Settings().Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <username|theme|profile-pic> <value>",
		Short: "Change one profile field",
		Long: `Change one profile field.

  username      Name shown on your messages (must not be empty)
  theme         Dark, Light or System
  profile-pic   Path to an image file; "none" clears it`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}
			s, err := store.Settings().Load(history.DefaultSettings())
			if err != nil {
				return err
			}

			if err := setSetting(&s, args[0], args[1]); err != nil {
				return err
			}
			if err := store.Settings().Save(s); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successLine(fmt.Sprintf("%s updated", args[0])))
			return nil
		},
	})

	return cmd
}

// setSetting validates value and stores it in field of s
func setSetting(s *history.Settings, field, value string) error {
	value = strings.TrimSpace(value)

	switch strings.ToLower(field) {
	case "username":
		if value == "" {
			return apierrors.NewValidationError("username", value, "must not be empty")
		}
		s.Username = value
	case "theme":
		theme, err := render.ParseTheme(value)
		if err != nil {
			return err
		}
		s.Theme = string(theme)
	case "profile-pic", "profile_pic", "pic":
		if value == "" || strings.EqualFold(value, "none") {
			s.ProfilePic = nil
			return nil
		}
		abs, err := filepath.Abs(value)
		if err != nil {
			return err
		}
		if _, err := os.Stat(abs); err != nil {
			return apierrors.NewValidationError("profile-pic", value, "file not found")
		}
		s.ProfilePic = &abs
	default:
		return apierrors.NewValidationError("setting", field, "expected username, theme or profile-pic")
	}
	return nil
}
