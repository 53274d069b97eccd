// Package tools decodes assistant tool results and projects them into
// user-facing summaries and panel updates.
package tools

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/diogo/campuschat/internal/models"
)

// Result is the decoded form of a tool result. Exactly one of the concrete
// types below is returned by Decode.
type Result interface {
	isResult()
}

// SearchResult is the marketplace search tool's structured response
type SearchResult struct {
	Products []models.ProductSummary `json:"products"`
	Info     models.SearchInfo       `json:"info"`
}

// ProductList is a bare array of products
type ProductList []models.ProductSummary

// TextResult is a plain string result
type TextResult string

// OpaqueResult is anything else; the raw JSON is kept for the tool log
type OpaqueResult json.RawMessage

func (SearchResult) isResult() {}
func (ProductList) isResult()  {}
func (TextResult) isResult()   {}
func (OpaqueResult) isResult() {}

// Decode classifies raw into the most specific known shape.
// Shapes are tried in order: search result, product array, string, opaque.
func Decode(raw json.RawMessage) Result {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return OpaqueResult(raw)
	}

	parsed := gjson.ParseBytes(raw)
	switch {
	case isSearchResult(parsed):
		return SearchResult{
			Products: decodeProducts(parsed.Get("products")),
			Info:     decodeInfo(parsed.Get("info")),
		}
	case isProductArray(parsed):
		return ProductList(decodeProducts(parsed))
	case parsed.Type == gjson.String:
		return TextResult(parsed.String())
	}

	return OpaqueResult(raw)
}

// decodeProducts reads products field by field so that numeric ids, quoted
// prices and quoted stock counts from the backend are still accepted.
// Elements that are not objects are skipped.
func decodeProducts(arr gjson.Result) []models.ProductSummary {
	items := arr.Array()
	products := make([]models.ProductSummary, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		products = append(products, models.ProductSummary{
			ID:          item.Get("id").String(),
			Name:        item.Get("name").String(),
			Price:       item.Get("price").Float(),
			Description: item.Get("description").String(),
			Category:    item.Get("category").String(),
			ImageURL:    item.Get("image_url").String(),
			VendorName:  item.Get("vendor_name").String(),
			Stock:       decodeStock(item.Get("stock")),
		})
	}
	return products
}

// decodeStock returns nil when stock is absent, null or not a count
func decodeStock(v gjson.Result) *int {
	var n int
	switch v.Type {
	case gjson.Number:
		n = int(v.Int())
	case gjson.String:
		parsed, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

func decodeInfo(v gjson.Result) models.SearchInfo {
	return models.SearchInfo{
		OriginalQuery:  v.Get("originalQuery").String(),
		CorrectedQuery: v.Get("correctedQuery").String(),
		Intent:         v.Get("intent").String(),
		Reasoning:      v.Get("reasoning").String(),
	}
}

func isSearchResult(r gjson.Result) bool {
	return r.IsObject() &&
		r.Get("products").IsArray() &&
		r.Get("info").IsObject() &&
		r.Get("info.originalQuery").Type == gjson.String
}

// isProductArray accepts an array whose elements all look like products.
// An empty array is not a product list since it carries no shape.
func isProductArray(r gjson.Result) bool {
	if !r.IsArray() {
		return false
	}
	items := r.Array()
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.IsObject() || !item.Get("id").Exists() || !item.Get("name").Exists() {
			return false
		}
	}
	return true
}
