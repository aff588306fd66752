package result

import "github.com/kailas-cloud/bizsearch/internal/domain/search/facet"

// Result is one page of business search hits with their facet counts.
type Result struct {
	Total  int              `json:"total"`
	Start  int              `json:"start"`
	Rows   int              `json:"rows"`
	Docs   []map[string]any `json:"docs"`
	Facets facet.Response   `json:"facets"`
}
