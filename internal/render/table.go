package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/diogo/campuschat/internal/models"
)

// FormatPrice formats a listing price in dollars
func FormatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}

// FormatStock describes remaining stock; unknown stock is empty
func FormatStock(stock *int) string {
	switch {
	case stock == nil:
		return ""
	case *stock <= 0:
		return "sold out"
	default:
		return fmt.Sprintf("%d left", *stock)
	}
}

func productRows(products []models.ProductSummary) [][]string {
	rows := make([][]string, 0, len(products))
	for i, p := range products {
		seller := p.VendorName
		if seller == "" {
			seller = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			p.Name,
			FormatPrice(p.Price),
			seller,
			FormatStock(p.Stock),
		})
	}
	return rows
}

// ProductTable renders a product panel as a bordered table. width <= 0
// lets the table size itself.
func ProductTable(data models.PanelData, theme TUITheme, width int) string {
	if len(data.Payload) == 0 {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("No products to show.")
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Padding(0, 1)
	cell := lipgloss.NewStyle().Foreground(theme.Text).Padding(0, 1)
	price := cell.Foreground(theme.Secondary)
	dim := cell.Foreground(theme.TextDim)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers("#", "Product", "Price", "Seller", "Stock").
		Rows(productRows(data.Payload)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 0 || col == 4:
				return dim
			case col == 2:
				return price
			default:
				return cell
			}
		})
	if width > 0 {
		t = t.Width(width)
	}

	var sb strings.Builder
	if data.Query != "" {
		title := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent)
		sb.WriteString(title.Render(fmt.Sprintf("Results for '%s'", data.Query)))
		sb.WriteString("\n")
	}
	sb.WriteString(t.String())
	return sb.String()
}

// PlainProductTable renders a product panel as tab-separated lines for
// pipes and non-terminal output
func PlainProductTable(data models.PanelData) string {
	var sb strings.Builder
	for _, row := range productRows(data.Payload) {
		sb.WriteString(strings.TrimRight(strings.Join(row, "\t"), "\t"))
		sb.WriteString("\n")
	}
	return sb.String()
}
