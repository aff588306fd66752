package chi

import (
	"github.com/kailas-cloud/bizsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/result"
)

type searchResponse struct {
	Facets        facet.Response `json:"facets"`
	SearchResults searchResults  `json:"searchResults"`
}

type searchResults struct {
	TotalResults int              `json:"totalResults"`
	QueryInfo    queryInfo        `json:"queryInfo"`
	Results      []map[string]any `json:"results"`
}

type queryInfo struct {
	Start int `json:"start"`
	Rows  int `json:"rows"`
}

func searchResponseFrom(res result.Result) searchResponse {
	return searchResponse{
		Facets: res.Facets,
		SearchResults: searchResults{
			TotalResults: res.Total,
			QueryInfo:    queryInfo{Start: res.Start, Rows: res.Rows},
			Results:      res.Docs,
		},
	}
}
