package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tigosprojects/tigos/internal/api"
	"github.com/tigosprojects/tigos/internal/app"
	"github.com/tigosprojects/tigos/internal/command"
	"github.com/tigosprojects/tigos/internal/config"
	apierrors "github.com/tigosprojects/tigos/internal/errors"
)

// askOptions are the flags of a one-shot prompt
type askOptions struct {
	file   string
	output string
	copy   bool
	raw    bool
}

func (o *askOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "Read prompt from file")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Save the reply, image or audio to this path")
	cmd.Flags().BoolVarP(&o.copy, "copy", "c", false, "Copy the reply to the clipboard")
	cmd.Flags().BoolVar(&o.raw, "raw", false, "Print the reply without formatting")
}

func newAskCmd(deps *Dependencies, flags *selectionFlags) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a single prompt and print the reply",
		Long: `Send a single prompt to the current thread and print the reply.

The prompt comes from the argument, from --file or from stdin. Image and
speech prompts are saved to --output or to the download directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, deps, flags, opts, args)
		},
	}
	opts.register(cmd)
	return cmd
}

// readPrompt takes the prompt from args, the file flag or stdin, in that order
func readPrompt(cmd *cobra.Command, deps *Dependencies, opts *askOptions, args []string) (string, error) {
	switch {
	case len(args) > 0:
		return args[0], nil
	case opts.file != "":
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	case deps.StdinPiped():
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	return "", apierrors.ErrEmptyInput
}

func runAsk(cmd *cobra.Command, deps *Dependencies, flags *selectionFlags, opts *askOptions, args []string) error {
	prompt, err := readPrompt(cmd, deps, opts, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(prompt) == "" {
		return apierrors.ErrEmptyInput
	}

	s, err := openSession(cmd, deps, flags)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), warningLine(fmt.Sprintf("failed to save history: %v", cerr)))
		}
	}()

	ctx := cmd.Context()
	task, ok, err := s.app.Submit(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		return apierrors.ErrEmptyInput
	}

	spin := startProgress(deps.Interactive() && !opts.raw, cmd.ErrOrStderr(), progressMessage(task.Request.Kind))
	out, err := s.app.Wait(ctx)
	if err != nil {
		spin.fail()
		return err
	}
	if _, aerr := s.app.Apply(out); aerr != nil {
		s.log.Error().Err(aerr).Msg("failed to persist reply")
	}
	if out.Err != nil {
		spin.fail()
		return out.Err
	}
	spin.success(fmt.Sprintf("Done in %s", out.Elapsed.Round(100*time.Millisecond)))

	if task.Request.Kind != command.KindChat {
		return saveMedia(cmd, deps, s, opts, task)
	}
	return writeReply(cmd, deps, s.cfg, opts, out)
}

func progressMessage(kind command.Kind) string {
	switch kind {
	case command.KindImage:
		return "Generating image"
	case command.KindTTS:
		return "Synthesizing speech"
	default:
		return "Waiting for reply"
	}
}

// writeReply prints or saves a chat reply and copies it when asked
func writeReply(cmd *cobra.Command, deps *Dependencies, cfg config.Config, opts *askOptions, out app.Outcome) error {
	w := cmd.OutOrStdout()

	switch {
	case opts.output != "":
		if err := os.WriteFile(opts.output, []byte(out.Text), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if !opts.raw {
			fmt.Fprintln(cmd.ErrOrStderr(), successLine("Saved reply to "+opts.output))
		}
	case opts.raw || !deps.Interactive():
		fmt.Fprintln(w, out.Text)
	default:
		printReply(w, out.Text, getTerminalWidth())
	}

	if opts.copy || cfg.CopyToClipboard {
		if err := deps.Clipboard(out.Text); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), warningLine(fmt.Sprintf("failed to copy to clipboard: %v", err)))
		} else if !opts.raw {
			fmt.Fprintln(cmd.ErrOrStderr(), successLine("Copied to clipboard"))
		}
	}
	return nil
}

// saveMedia writes the image or audio of task to --output or the download dir
func saveMedia(cmd *cobra.Command, deps *Dependencies, s *session, opts *askOptions, task *app.Task) error {
	path := opts.output
	if path == "" {
		dir, err := config.GetDownloadDir(s.cfg)
		if err != nil {
			return err
		}
		path = filepath.Join(dir, api.SuggestFilename(task.Request.Text, deps.Now()))
	}

	written, err := s.app.SaveLastMedia(path)
	if err != nil {
		return err
	}
	printSaved(cmd, opts.raw, task.Request.Kind, written)
	return nil
}

func printSaved(cmd *cobra.Command, raw bool, kind command.Kind, path string) {
	if raw {
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return
	}
	what := "image"
	if kind == command.KindTTS {
		what = "audio"
	}
	fmt.Fprintln(cmd.OutOrStdout(), successLine(fmt.Sprintf("Saved %s to %s", what, path)))
}
