package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/diogo/campuschat/internal/history"
	"github.com/diogo/campuschat/internal/models"
)

var (
	exportFormatFlag  string
	exportOutputFlag  string
	exportNoToolsFlag bool
	searchContentFlag bool
	clearYesFlag      bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage conversation history",
	Long: `View and manage your saved conversations.

` + history.ListAliases(),
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all conversations",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyRenameCmd = &cobra.Command{
	Use:   "rename <ref> <title>",
	Short: "Rename a conversation",
	Args:  cobra.ExactArgs(2),
	RunE:  runHistoryRename,
}

var historyExportCmd = &cobra.Command{
	Use:   "export <ref>",
	Short: "Export a conversation as markdown or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search conversation titles (and content with --content)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistorySearch,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all conversations",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyExportCmd.Flags().StringVar(&exportFormatFlag, "format", "markdown", "Export format (markdown, json)")
	historyExportCmd.Flags().StringVarP(&exportOutputFlag, "output", "o", "", "Write to file instead of stdout")
	historyExportCmd.Flags().BoolVar(&exportNoToolsFlag, "no-tools", false, "Leave tool calls out of the export")
	historySearchCmd.Flags().BoolVar(&searchContentFlag, "content", false, "Also search message content")
	historyClearCmd.Flags().BoolVarP(&clearYesFlag, "yes", "y", false, "Do not ask for confirmation")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyRenameCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func openHistoryStore() (*history.Store, error) {
	store, err := history.DefaultStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

// resolveConversation opens the store and resolves ref to a conversation
func resolveConversation(ref string) (*history.Store, *history.Conversation, error) {
	store, err := openHistoryStore()
	if err != nil {
		return nil, nil, err
	}
	conv, err := history.NewResolver(store).ResolveWithInfo(ref)
	if err != nil {
		return nil, nil, err
	}
	return store, conv, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}

	conversations, err := store.ListConversations()
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(conversations) == 0 {
		fmt.Fprintln(out, "No conversations found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tTITLE\tMESSAGES\tSEARCHES\tUPDATED")
	for i, conv := range conversations {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n",
			i+1, shortID(conv.ID), truncateRunes(conv.Title, 40), len(conv.Messages),
			conv.ToolCallCount(), history.FormatRelativeTime(conv.UpdatedAt))
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	_, conv, err := resolveConversation(args[0])
	if err != nil {
		return err
	}
	printConversation(cmd.OutOrStdout(), conv)
	return nil
}

func printConversation(out io.Writer, conv *history.Conversation) {
	fmt.Fprintf(out, "ID: %s\n", conv.ID)
	fmt.Fprintf(out, "Title: %s\n", conv.Title)
	if conv.Endpoint != "" {
		fmt.Fprintf(out, "Endpoint: %s\n", conv.Endpoint)
	}
	fmt.Fprintf(out, "Created: %s\n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Updated: %s\n", conv.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Messages: %d\n", len(conv.Messages))
	fmt.Fprintln(out)

	for i, msg := range conv.Messages {
		role := "You"
		if msg.Role == models.RoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(out, "[%d] %s (%s):\n", i+1, role, msg.Timestamp.Format("15:04"))
		for _, inv := range msg.ToolInvocations {
			fmt.Fprintf(out, "  🔧 %s\n", inv.ToolName)
		}
		fmt.Fprintf(out, "  %s\n", truncateRunes(msg.Content, 500))
		if msg.Interrupted {
			fmt.Fprintln(out, "  (reply interrupted)")
		}
		fmt.Fprintln(out)
	}
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, conv, err := resolveConversation(args[0])
	if err != nil {
		return err
	}
	if err := store.DeleteConversation(conv.ID); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted conversation: %s\n", conv.ID)
	return nil
}

func runHistoryRename(cmd *cobra.Command, args []string) error {
	store, conv, err := resolveConversation(args[0])
	if err != nil {
		return err
	}
	title := strings.TrimSpace(args[1])
	if title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if err := store.UpdateTitle(conv.ID, title); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", shortID(conv.ID), title)
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, err := history.ParseExportFormat(exportFormatFlag)
	if err != nil {
		return err
	}

	store, conv, err := resolveConversation(args[0])
	if err != nil {
		return err
	}

	data, err := store.Export(conv.ID, history.ExportOptions{
		Format:           format,
		IncludeToolCalls: !exportNoToolsFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	if exportOutputFlag == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(exportOutputFlag, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", shortID(conv.ID), exportOutputFlag)
	return nil
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}

	results, err := store.SearchConversations(args[0], searchContentFlag)
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No matches.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tMATCH")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", shortID(r.Conversation.ID), truncateRunes(r.Conversation.Title, 40), r.MatchSnippet)
	}
	return w.Flush()
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	if !clearYesFlag {
		fmt.Fprint(cmd.OutOrStdout(), "Delete all conversations? [y/N] ")
		var answer string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	if err := store.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "All conversations deleted.")
	return nil
}

// shortID returns the first 8 characters of a session ID
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncateRunes shortens s to n runes, adding "..." when cut
func truncateRunes(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
