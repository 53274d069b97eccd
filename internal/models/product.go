package models

// ProductSummary is a catalog entry as returned by the marketplace search tool
type ProductSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	VendorName  string  `json:"vendor_name,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
}

// SearchInfo describes how a search query was interpreted
type SearchInfo struct {
	OriginalQuery  string `json:"originalQuery"`
	CorrectedQuery string `json:"correctedQuery,omitempty"`
	Intent         string `json:"intent,omitempty"`
	Reasoning      string `json:"reasoning,omitempty"`
}

// EffectiveQuery returns the corrected query when it differs from the original
func (s SearchInfo) EffectiveQuery() string {
	if s.Corrected() {
		return s.CorrectedQuery
	}
	return s.OriginalQuery
}

// Corrected reports whether the backend rewrote the query
func (s SearchInfo) Corrected() bool {
	return s.CorrectedQuery != "" && s.CorrectedQuery != s.OriginalQuery
}
