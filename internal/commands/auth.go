package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tigosprojects/tigos/internal/config"
)

func newAuthCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the provider API key",
		Long: fmt.Sprintf(`Manage the provider API key.

The key is looked up in $%s (also read from <config dir>/.env), then in
the OS keyring. Without a key requests are sent anonymously.`, config.APIKeyEnv),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-key [key]",
		Short: "Store the API key in the OS keyring",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) > 0 {
				key = args[0]
			} else {
				var err error
				key, err = deps.ReadSecret("API key: ", cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("failed to read key: %w", err)
				}
			}

			if err := config.StoreAPIKey(key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successLine("API key saved to keyring"))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-key",
		Short: "Remove the API key from the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteAPIKey(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successLine("API key removed from keyring"))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which API key would be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, source, err := config.ResolveAPIKey()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if source == config.KeySourceNone {
				fmt.Fprintln(w, "No API key configured; requests are anonymous.")
				return nil
			}
			fmt.Fprintf(w, "Key:    %s\n", config.MaskKey(key))
			fmt.Fprintf(w, "Source: %s\n", source)
			return nil
		},
	})

	return cmd
}
