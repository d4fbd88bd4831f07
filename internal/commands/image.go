package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tigosprojects/tigos/internal/api"
	"github.com/tigosprojects/tigos/internal/command"
	"github.com/tigosprojects/tigos/internal/config"
)

func newImageCmd(deps *Dependencies, flags *selectionFlags) *cobra.Command {
	var output string
	var raw bool

	cmd := &cobra.Command{
		Use:   "image <prompt>",
		Short: "Generate an image",
		Long: `Generate an image with the selected image model and resolution.

The image is saved to --output, or to the download directory under a name
derived from the prompt. The prompt is added to the image history.`,
		Example: `  tigos image "a lighthouse at dusk"
  tigos image "a red fox" --resolution 1024x1024 --no-logo -o fox`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))

			s, err := openSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.close(); cerr != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), warningLine(fmt.Sprintf("failed to save history: %v", cerr)))
				}
			}()

			spin := startProgress(deps.Interactive() && !raw, cmd.ErrOrStderr(), progressMessage(command.KindImage))
			data, err := s.app.GenerateImage(cmd.Context(), prompt)
			if len(data) == 0 {
				spin.fail()
				if err == nil {
					err = fmt.Errorf("provider returned an empty image")
				}
				return err
			}
			spin.success("Image ready")
			if err != nil {
				s.log.Error().Err(err).Msg("failed to record image history")
			}

			path := output
			if path == "" {
				dir, err := config.GetDownloadDir(s.cfg)
				if err != nil {
					return err
				}
				path = filepath.Join(dir, api.SuggestFilename(prompt, deps.Now()))
			}
			written, err := api.SaveImage(data, path)
			if err != nil {
				return err
			}
			printSaved(cmd, raw, command.KindImage, written)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Image file path (extension added from the image format)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the saved path")
	return cmd
}
