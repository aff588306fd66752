package db

import "encoding/json"

// BaseQuery is the initial query and filter list produced by a query builder.
type BaseQuery struct {
	Query  string
	Filter []string
}

// FacetDomain narrows or widens the document set a facet counts over.
type FacetDomain struct {
	BlockChildren string   `json:"blockChildren,omitempty"`
	ExcludeTags   []string `json:"excludeTags,omitempty"`
}

// Facet is a JSON Facet API terms facet.
type Facet struct {
	Type   string            `json:"type"`
	Field  string            `json:"field"`
	Limit  int               `json:"limit,omitempty"`
	Domain *FacetDomain      `json:"domain,omitempty"`
	Facet  map[string]string `json:"facet,omitempty"`
}

// Payload is a Solr JSON Request API body. It is built once per search
// and mutated in place by the filter helpers.
type Payload struct {
	Query   string            `json:"query"`
	Filter  []string          `json:"filter,omitempty"`
	Queries map[string]string `json:"queries,omitempty"`
	Facet   map[string]Facet  `json:"facet,omitempty"`
	Fields  []string          `json:"fields,omitempty"`
	Offset  int               `json:"offset"`
	Limit   int               `json:"limit"`
}

// QueryResult is the decoded engine response for one page.
type QueryResult struct {
	NumFound int                        `json:"numFound"`
	Start    int                        `json:"start"`
	Docs     []map[string]any           `json:"docs"`
	Facets   map[string]json.RawMessage `json:"facets,omitempty"`
}
