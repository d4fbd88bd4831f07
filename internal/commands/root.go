// Package commands provides CLI commands for tigos.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	flags := &selectionFlags{}
	ask := &askOptions{}

	rootCmd := &cobra.Command{
		Use:   "tigos [prompt]",
		Short: "Chat, images and speech from the terminal",
		Long: `tigos is a terminal client for a hosted text, image and speech service.
Conversations are kept in threads and saved as JSON in the data directory.

Prompts that start with "generate an image" or "create an image" produce
images. Prompts that start with "/tts " are read aloud by the provider.

Examples:
  tigos                                 Start interactive chat
  tigos "What is Go?"                   Send a single prompt
  tigos -f prompt.md                    Read prompt from file
  cat prompt.md | tigos                 Read prompt from stdin
  tigos "Hello" -o reply.md             Save the reply to a file
  tigos image "a red fox" -o fox.jpg    Generate an image
  tigos history list                    List saved threads`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "tigos %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if len(args) > 0 || ask.file != "" || deps.StdinPiped() {
				return runAsk(cmd, deps, flags, ask, args)
			}
			return runChat(cmd, deps, flags)
		},
	}

	flags.register(rootCmd)
	ask.register(rootCmd)
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(
		newChatCmd(deps, flags),
		newAskCmd(deps, flags),
		newImageCmd(deps, flags),
		newTTSCmd(deps, flags),
		newHistoryCmd(),
		newSettingsCmd(),
		newAuthCmd(deps),
		newConfigCmd(),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd(NewDependencies())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, ""))
		os.Exit(1)
	}
}
