package models

// PanelKind identifies a side panel in the UI
type PanelKind string

const (
	PanelNone           PanelKind = ""
	PanelProductResults PanelKind = "product-results"
)

// PanelData is the payload a panel renders
type PanelData struct {
	Type    string           `json:"type"`
	Query   string           `json:"query,omitempty"`
	Payload []ProductSummary `json:"payload"`
}

// PanelUpdate asks the panel store to open a panel with data
type PanelUpdate struct {
	Panel PanelKind `json:"activePanel"`
	Data  PanelData `json:"data"`
}

// NewProductPanel builds the update that opens the product results panel
func NewProductPanel(query string, products []ProductSummary) PanelUpdate {
	return PanelUpdate{
		Panel: PanelProductResults,
		Data: PanelData{
			Type:    "products",
			Query:   query,
			Payload: products,
		},
	}
}
