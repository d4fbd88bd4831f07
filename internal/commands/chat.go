package commands

import (
	"github.com/spf13/cobra"

	"github.com/tigosprojects/tigos/internal/config"
	"github.com/tigosprojects/tigos/internal/tui"
)

func newChatCmd(deps *Dependencies, flags *selectionFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

Threads, settings and histories are loaded from the data directory and
written back on exit. Requests run in the background, so you can keep
typing or switch threads while a reply is pending.

Slash commands:
  /new            Start a new thread
  /switch [ref]   Switch thread (no ref opens the picker)
  /save [path]    Save the last image or audio
  /copy           Copy the last reply
  /help           Show keys
  /exit           Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps, flags)
		},
	}
}

func runChat(cmd *cobra.Command, deps *Dependencies, flags *selectionFlags) error {
	s, err := openSession(cmd, deps, flags)
	if err != nil {
		return err
	}
	defer s.closeLog()

	opts := []tui.Option{
		tui.WithContext(cmd.Context()),
		tui.WithClipboard(deps.Clipboard),
	}
	if dir, err := config.GetDownloadDir(s.cfg); err == nil {
		opts = append(opts, tui.WithDownloadDir(dir))
	}

	// RunTUI saves every collection through Session.Close on exit
	return deps.RunTUI(s.app, opts...)
}
