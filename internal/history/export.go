package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diogo/campuschat/internal/models"
	"github.com/diogo/campuschat/internal/tools"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseExportFormat accepts "markdown", "md" or "json"
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	}
	return "", fmt.Errorf("unknown export format %q: use markdown or json", s)
}

// ExportOptions configures how conversations are exported
type ExportOptions struct {
	Format ExportFormat
	// IncludeToolCalls adds each tool invocation (name, args, products found).
	IncludeToolCalls bool
}

// DefaultExportOptions returns the default export options
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:           ExportFormatMarkdown,
		IncludeToolCalls: true,
	}
}

// Export renders a conversation in the format selected by opts
func (s *Store) Export(id string, opts ExportOptions) ([]byte, error) {
	switch opts.Format {
	case ExportFormatJSON:
		return s.ExportToJSONWithOptions(id, opts)
	default:
		md, err := s.ExportToMarkdownWithOptions(id, opts)
		return []byte(md), err
	}
}

// ExportToMarkdown exports a conversation to Markdown format
func (s *Store) ExportToMarkdown(id string) (string, error) {
	return s.ExportToMarkdownWithOptions(id, DefaultExportOptions())
}

// ExportToMarkdownWithOptions exports a conversation to Markdown with options
func (s *Store) ExportToMarkdownWithOptions(id string, opts ExportOptions) (string, error) {
	conv, err := s.GetConversation(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(conv.Title)
	sb.WriteString("\n\n")

	if conv.Endpoint != "" {
		fmt.Fprintf(&sb, "**Endpoint:** %s\n", conv.Endpoint)
	}
	fmt.Fprintf(&sb, "**Created:** %s\n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "**Updated:** %s\n", conv.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "**Messages:** %d\n\n---\n\n", len(conv.Messages))

	for i, msg := range conv.Messages {
		sb.WriteString("## ")
		sb.WriteString(roleTitle(msg.Role))
		if !msg.Timestamp.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.Timestamp.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Content)
		sb.WriteString("\n")
		if msg.Interrupted {
			sb.WriteString("\n_(reply interrupted)_\n")
		}

		if opts.IncludeToolCalls {
			for _, inv := range msg.ToolInvocations {
				writeToolMarkdown(&sb, inv)
			}
		}

		if i < len(conv.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String(), nil
}

func roleTitle(r models.Role) string {
	switch r {
	case models.RoleAssistant:
		return "Assistant"
	case models.RoleSystem:
		return "System"
	default:
		return "User"
	}
}

func writeToolMarkdown(sb *strings.Builder, inv models.ToolInvocation) {
	sb.WriteString("\n<details>\n<summary>Tool: ")
	sb.WriteString(inv.ToolName)
	sb.WriteString("</summary>\n\n")
	if len(inv.Args) > 0 {
		var args bytes.Buffer
		if err := json.Compact(&args, inv.Args); err != nil {
			args.Reset()
			args.Write(inv.Args)
		}
		fmt.Fprintf(sb, "Arguments: `%s`\n\n", args.String())
	}

	var products []models.ProductSummary
	switch r := tools.Decode(inv.Result).(type) {
	case tools.SearchResult:
		products = r.Products
	case tools.ProductList:
		products = r
	}
	if len(products) > 0 {
		sb.WriteString("| Product | Price | Seller |\n|---|---|---|\n")
		for _, p := range products {
			fmt.Fprintf(sb, "| %s | %.2f | %s |\n", p.Name, p.Price, p.VendorName)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("</details>\n")
}

type exportMessage struct {
	ID              string                  `json:"id"`
	Role            models.Role             `json:"role"`
	Content         string                  `json:"content"`
	Timestamp       time.Time               `json:"timestamp"`
	Interrupted     bool                    `json:"interrupted,omitempty"`
	ToolInvocations []models.ToolInvocation `json:"tool_invocations,omitempty"`
}

type exportConversation struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Endpoint  string          `json:"endpoint,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Messages  []exportMessage `json:"messages"`
}

// ExportToJSON exports a conversation to JSON format
func (s *Store) ExportToJSON(id string) ([]byte, error) {
	return s.ExportToJSONWithOptions(id, DefaultExportOptions())
}

// ExportToJSONWithOptions exports a conversation to JSON with options
func (s *Store) ExportToJSONWithOptions(id string, opts ExportOptions) ([]byte, error) {
	conv, err := s.GetConversation(id)
	if err != nil {
		return nil, err
	}

	export := exportConversation{
		ID:        conv.ID,
		Title:     conv.Title,
		Endpoint:  conv.Endpoint,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		Messages:  make([]exportMessage, len(conv.Messages)),
	}

	for i, msg := range conv.Messages {
		export.Messages[i] = exportMessage{
			ID:          msg.ID,
			Role:        msg.Role,
			Content:     msg.Content,
			Timestamp:   msg.Timestamp,
			Interrupted: msg.Interrupted,
		}
		if opts.IncludeToolCalls {
			export.Messages[i].ToolInvocations = msg.ToolInvocations
		}
	}

	return json.MarshalIndent(export, "", "  ")
}

// SearchResult represents a search match in conversations
type SearchResult struct {
	Conversation *Conversation
	MatchSnippet string // Snippet where the term was found
	MatchField   string // "title" or "content"
	MatchIndex   int    // Message index if MatchField is "content", -1 for title
}

// SearchConversations searches titles and, optionally, message content
func (s *Store) SearchConversations(query string, searchContent bool) ([]*SearchResult, error) {
	conversations, err := s.ListConversations()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var results []*SearchResult

	for _, conv := range conversations {
		if strings.Contains(strings.ToLower(conv.Title), queryLower) {
			results = append(results, &SearchResult{
				Conversation: conv,
				MatchSnippet: conv.Title,
				MatchField:   "title",
				MatchIndex:   -1,
			})
			continue
		}

		if !searchContent {
			continue
		}
		for i, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Content), queryLower) {
				results = append(results, &SearchResult{
					Conversation: conv,
					MatchSnippet: extractSnippet(msg.Content, query, 100),
					MatchField:   "content",
					MatchIndex:   i,
				})
				break
			}
		}
	}

	return results, nil
}

// extractSnippet extracts a snippet around the first occurrence of query
func extractSnippet(content, query string, maxLen int) string {
	idx := strings.Index(strings.ToLower(content), strings.ToLower(query))
	if idx == -1 {
		if len(content) > maxLen {
			return content[:maxLen] + "..."
		}
		return content
	}

	half := maxLen / 2
	start := idx - half
	end := idx + len(query) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(content) {
		end = len(content)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	snippet := content[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet += "..."
	}

	return snippet
}

// FormatRelativeTime formats t relative to now, like "2h ago" or "yesterday"
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "min")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	default:
		months := int(diff.Hours() / 24 / 30)
		if months < 12 {
			return plural(months, "month")
		}
		return t.Format("2006-01-02")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
