package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tigosprojects/tigos/internal/conversation"
	"github.com/tigosprojects/tigos/internal/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage conversation threads and media history",
		Long: `Manage the saved conversation threads and the image and speech histories.

Threads can be referenced by index, by id prefix or by alias:
  @current, @last, @first, 1, 2, 3, 3f2a...`,
	}

	cmd.AddCommand(
		newHistoryListCmd(),
		newHistoryShowCmd(),
		newHistoryNewCmd(),
		newHistorySwitchCmd(),
		newHistoryExportCmd(),
		newHistorySearchCmd(),
		newHistoryImagesCmd(),
		newHistoryTTSCmd(),
	)
	return cmd
}

// openThreads loads the chat collection as a conversation model that saves
// back to it after every change
func openThreads() (*history.Store, *conversation.Model, error) {
	_, store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	h, err := store.Chats().Load(history.ChatHistory{})
	if err != nil {
		return nil, nil, err
	}
	conv, err := conversation.New(store.Chats(), h, conversation.NewID)
	if err != nil {
		return nil, nil, err
	}
	return store, conv, nil
}

// resolveThread turns a user reference into a thread id
func resolveThread(conv *conversation.Model, ref string) (string, error) {
	return history.NewResolver(conv.Snapshot()).Resolve(ref)
}

func newHistoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List conversation threads",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conv, err := openThreads()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tID\tMSGS\tTITLE")
			for i, t := range conv.Threads() {
				marker := ""
				if t.Current {
					marker = " *"
				}
				fmt.Fprintf(tw, "%d%s\t%s\t%d\t%s\n", i+1, marker, shortID(t.ID), t.Messages, t.Title)
			}
			return tw.Flush()
		},
	}
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [ref]",
		Short: "Print the messages of a thread",
		Long:  "Print the messages of a thread (default @current).\n\n" + history.ListAliases(),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, conv, err := openThreads()
			if err != nil {
				return err
			}

			ref := "@current"
			if len(args) > 0 {
				ref = args[0]
			}
			id, err := resolveThread(conv, ref)
			if err != nil {
				return err
			}
			th, err := conv.Thread(id)
			if err != nil {
				return err
			}

			settings, err := store.Settings().Load(history.DefaultSettings())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Thread %s (%d messages)\n", th.ID, len(th.Messages))
			for _, msg := range th.Messages {
				label := settings.Username
				if msg.Role == conversation.RoleAssistant {
					label = "Tigos"
				}
				fmt.Fprintf(w, "\n[%s]\n%s\n", label, msg.Text)
				if len(msg.Image) > 0 {
					fmt.Fprintf(w, "(image, %d KB)\n", (len(msg.Image)+1023)/1024)
				}
			}
			return nil
		},
	}
}

func newHistoryNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new thread and make it current",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conv, err := openThreads()
			if err != nil {
				return err
			}
			id, err := conv.CreateThread()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successLine("Created thread "+id))
			return nil
		},
	}
}

func newHistorySwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <ref>",
		Short: "Make another thread current",
		Long:  "Make another thread current.\n\n" + history.ListAliases(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conv, err := openThreads()
			if err != nil {
				return err
			}
			id, err := resolveThread(conv, args[0])
			if err != nil {
				return err
			}
			if err := conv.SwitchThread(id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successLine("Switched to thread "+id))
			return nil
		},
	}
}

func newHistoryExportCmd() *cobra.Command {
	var format, output string
	var images bool

	cmd := &cobra.Command{
		Use:   "export [ref]",
		Short: "Export a thread as Markdown or JSON",
		Long:  "Export a thread (default @current) as Markdown or JSON.\n\n" + history.ListAliases(),
		Example: `  tigos history export @last -o chat.md
  tigos history export 2 -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, err := history.ParseExportFormat(format)
			if err != nil {
				return err
			}

			store, conv, err := openThreads()
			if err != nil {
				return err
			}

			ref := "@current"
			if len(args) > 0 {
				ref = args[0]
			}
			id, err := resolveThread(conv, ref)
			if err != nil {
				return err
			}

			settings, err := store.Settings().Load(history.DefaultSettings())
			if err != nil {
				return err
			}

			opts := history.DefaultExportOptions()
			opts.Format = exportFormat
			opts.Username = settings.Username
			opts.IncludeImages = images

			data, err := history.ExportThread(conv.Snapshot(), id, opts)
			if err != nil {
				return err
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), successLine("Exported thread to "+output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "md", "Export format (md or json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&images, "images", false, "Inline images as data URIs (Markdown)")
	return cmd
}

func newHistorySearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find threads containing text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conv, err := openThreads()
			if err != nil {
				return err
			}

			results := history.SearchThreads(conv.Snapshot(), strings.Join(args, " "))
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No threads match.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tMATCH")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", shortID(r.ThreadID), r.Title, r.MatchSnippet)
			}
			return tw.Flush()
		},
	}
}

func newHistoryImagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List generated image prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}
			records, err := store.Images().Load([]history.ImageRecord{})
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No images generated yet.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tMODEL\tSIZE\tNOLOGO\tPROMPT")
			for i, r := range records {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\n", i+1, r.Model, r.Resolution, r.NoLogo, history.Truncate(r.Prompt, 60))
			}
			return tw.Flush()
		},
	}
}

func newHistoryTTSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tts",
		Short: "List text sent to speech",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}
			texts, err := store.TTS().Load([]string{})
			if err != nil {
				return err
			}
			if len(texts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No speech history yet.")
				return nil
			}
			for i, text := range texts {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", i+1, history.Truncate(text, 70))
			}
			return nil
		},
	}
}

// shortID abbreviates a thread id for tables
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
