package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tigosprojects/tigos/internal/api"
	"github.com/tigosprojects/tigos/internal/command"
	"github.com/tigosprojects/tigos/internal/config"
	"github.com/tigosprojects/tigos/internal/speech"
)

func newTTSCmd(deps *Dependencies, flags *selectionFlags) *cobra.Command {
	var output string
	var preview, raw bool

	cmd := &cobra.Command{
		Use:   "tts <text>",
		Short: "Turn text into speech",
		Long: `Turn text into speech.

By default the provider synthesizes the text with the selected voice and
the audio is saved to --output or the download directory. --preview reads
the text aloud with the local speech engine instead, without a network call.
Either way the text is added to the speech history.`,
		Example: `  tigos tts "Good morning" --voice nova -o greeting
  tigos tts --preview "Testing one two"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))

			s, err := openSession(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.close(); cerr != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), warningLine(fmt.Sprintf("failed to save history: %v", cerr)))
				}
			}()

			if preview {
				done, err := s.app.Preview(cmd.Context(), text)
				if err != nil {
					return err
				}
				if err := <-done; err != nil {
					if errors.Is(err, speech.ErrNoEngine) {
						return fmt.Errorf("%w: install espeak-ng, or drop --preview to use the provider", err)
					}
					return err
				}
				return nil
			}

			path := output
			if path == "" {
				dir, err := config.GetDownloadDir(s.cfg)
				if err != nil {
					return err
				}
				path = filepath.Join(dir, api.SuggestFilename(text, deps.Now()))
			}

			spin := startProgress(deps.Interactive() && !raw, cmd.ErrOrStderr(), progressMessage(command.KindTTS))
			written, err := s.app.DownloadSpeech(cmd.Context(), text, path)
			if written == "" {
				spin.fail()
				return err
			}
			spin.success("Audio ready")
			if err != nil {
				s.log.Error().Err(err).Msg("failed to record speech history")
			}
			printSaved(cmd, raw, command.KindTTS, written)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Audio file path (.wav added when missing)")
	cmd.Flags().BoolVarP(&preview, "preview", "p", false, "Read aloud with the local speech engine")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the saved path")
	return cmd
}
