package business

import (
	"context"

	"github.com/kailas-cloud/bizsearch/internal/db"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/dash"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/field"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/request"
)

// QueryBuilder renders query clauses for the search engine.
type QueryBuilder interface {
	BuildBaseQuery(
		query map[string]string,
		fields map[field.Field]dash.Mode,
		boostFields map[field.Field]int,
		fuzzyFields map[field.Field]request.Fuzzy,
	) db.BaseQuery
	BuildFacet(f field.Field, nested bool) map[string]db.Facet
	BuildChildQuery(child map[string]string) string
}

// CategoryFilter adds category (facet value) filters to a payload in place.
type CategoryFilter interface {
	ApplyCategoryFilters(p *db.Payload, categories map[field.Field][]string, nested bool)
}

// Engine executes a payload for one page of results.
type Engine interface {
	Query(ctx context.Context, p *db.Payload, start, rows int) (*db.QueryResult, error)
}
