package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diogo/campuschat/internal/models"
)

// Projection is what a tool result means for the UI
type Projection struct {
	// Summary replaces the assistant text when HasSummary is set.
	Summary    string
	HasSummary bool
	// Panel is non-nil when a side panel should open.
	Panel *models.PanelUpdate
}

// Project maps a tool result to a summary sentence and an optional panel update.
// It has no side effects.
func Project(toolName string, raw json.RawMessage) Projection {
	switch r := Decode(raw).(type) {
	case SearchResult:
		return projectSearch(r)
	case ProductList:
		panel := models.NewProductPanel("", []models.ProductSummary(r))
		return Projection{
			Summary:    fmt.Sprintf("I found %s for you!", countProducts(len(r))),
			HasSummary: true,
			Panel:      &panel,
		}
	case TextResult:
		return Projection{Summary: string(r), HasSummary: true}
	default:
		return Projection{}
	}
}

func projectSearch(r SearchResult) Projection {
	info := r.Info

	if len(r.Products) == 0 {
		var sb strings.Builder
		fmt.Fprintf(&sb, "I couldn't find any suitable matches for '%s'.", info.OriginalQuery)
		if info.Corrected() {
			fmt.Fprintf(&sb, " I also tried '%s'.", info.CorrectedQuery)
		}
		return Projection{Summary: sb.String(), HasSummary: true}
	}

	query := info.EffectiveQuery()

	var sb strings.Builder
	fmt.Fprintf(&sb, "I found %s for '%s'", countProducts(len(r.Products)), query)
	if info.Corrected() {
		fmt.Fprintf(&sb, " (you searched for '%s')", info.OriginalQuery)
	}
	if phrase := intentPhrase(info.Intent); phrase != "" {
		sb.WriteString(", ")
		sb.WriteString(phrase)
	}
	sb.WriteString(".")
	if reasoning := strings.TrimSpace(info.Reasoning); reasoning != "" {
		sb.WriteString(" ")
		sb.WriteString(reasoning)
	}

	panel := models.NewProductPanel(query, r.Products)
	return Projection{
		Summary:    sb.String(),
		HasSummary: true,
		Panel:      &panel,
	}
}

func countProducts(n int) string {
	if n == 1 {
		return "1 product"
	}
	return fmt.Sprintf("%d products", n)
}

// intentPhrase turns the search intent into a sort description
func intentPhrase(intent string) string {
	switch strings.ToLower(strings.TrimSpace(intent)) {
	case "", "general", "relevance":
		return ""
	case "cheapest", "price_low", "price_asc", "lowest_price":
		return "sorted by lowest price"
	case "expensive", "price_high", "price_desc", "highest_price", "premium":
		return "sorted by highest price"
	case "newest", "latest", "recent":
		return "sorted by newest first"
	case "popular", "best_selling", "top_rated":
		return "sorted by popularity"
	default:
		return "sorted by " + strings.ReplaceAll(intent, "_", " ")
	}
}
