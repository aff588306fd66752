package business

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bizsearch/internal/db"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/field"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/request"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/result"
	"github.com/kailas-cloud/bizsearch/internal/logger"
	"github.com/kailas-cloud/bizsearch/internal/metrics"
)

// tooManyClauses is the Solr message for queries over maxClauseCount.
const tooManyClauses = "Query contains too many nested clauses"

// parentsQuery selects business documents in block joins.
const parentsQuery = string(field.Identifier) + ":*"

// Service searches business documents.
type Service struct {
	builder QueryBuilder
	filters CategoryFilter
	engine  Engine
}

// New creates a business search service.
func New(builder QueryBuilder, filters CategoryFilter, engine Engine) *Service {
	return &Service{builder: builder, filters: filters, engine: engine}
}

// Search runs the business query described by params.
//
// When the engine rejects the query for exceeding its clause limit, the
// search is retried once without boost and fuzzy clauses. Engine errors are
// returned unwrapped.
func (s *Service) Search(ctx context.Context, params *request.Params) (*db.QueryResult, error) {
	ctx = logger.With(ctx, zap.String("search_id", uuid.NewString()))
	log := logger.FromContext(ctx)

	base := s.builder.BuildBaseQuery(
		params.Query(), params.QueryFields(), params.QueryBoostFields(), params.QueryFuzzyFields(),
	)
	for _, b := range params.FullQueryBoosts() {
		base.Query += fullQueryBoost(b)
	}

	res, err := s.engine.Query(ctx, s.payload(params, base), params.Start(), params.Rows())
	if err == nil {
		return res, nil
	}

	qe, ok := db.AsQueryError(err)
	if !ok || !strings.Contains(qe.Msg, tooManyClauses) {
		return nil, err
	}

	log.Warn("Query over clause limit, retrying simplified",
		zap.Int("boost_fields", len(params.QueryBoostFields())),
		zap.Int("fuzzy_fields", len(params.QueryFuzzyFields())),
		zap.Int("full_query_boosts", len(params.FullQueryBoosts())),
	)
	metrics.SearchFallbacksTotal.Inc()

	simplified := s.builder.BuildBaseQuery(
		params.Query(), params.QueryFields(), map[field.Field]int{}, map[field.Field]request.Fuzzy{},
	)
	return s.engine.Query(ctx, s.payload(params, simplified), params.Start(), params.Rows())
}

// payload assembles the full request around base.
func (s *Service) payload(params *request.Params, base db.BaseQuery) *db.Payload {
	p := &db.Payload{
		Query:  base.Query,
		Filter: append([]string(nil), base.Filter...),
		Queries: map[string]string{
			"parents":       parentsQuery,
			"parentFilters": strings.Join(base.Filter, " AND "),
		},
		Facet:  make(map[string]db.Facet, 2),
		Fields: params.Fields(),
	}
	for _, f := range []field.Field{field.State, field.Type} {
		for name, fc := range s.builder.BuildFacet(f, false) {
			p.Facet[name] = fc
		}
	}

	s.filters.ApplyCategoryFilters(p, params.Categories(), false)
	if child := s.builder.BuildChildQuery(params.ChildQuery()); child != "" {
		p.Filter = append(p.Filter, child)
	}
	s.filters.ApplyCategoryFilters(p, params.ChildCategories(), true)
	return p
}

// fullQueryBoost renders ` OR (field:"value"~fuzzy^boost)`.
func fullQueryBoost(b request.Boost) string {
	clause := ` OR (` + b.Field.String() + `:"` + b.Value + `"`
	if b.Fuzzy != 0 {
		clause += "~" + strconv.Itoa(b.Fuzzy)
	}
	return clause + "^" + strconv.Itoa(b.Boost) + ")"
}

// ToResult converts an engine page into the client-facing result.
func ToResult(res *db.QueryResult, params *request.Params) result.Result {
	docs := res.Docs
	if docs == nil {
		docs = []map[string]any{}
	}
	return result.Result{
		Total:  res.NumFound,
		Start:  params.Start(),
		Rows:   params.Rows(),
		Docs:   docs,
		Facets: facet.Format(res.Facets),
	}
}

