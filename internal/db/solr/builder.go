package solr

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/bizsearch/internal/db"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/dash"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/field"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/request"
)

const (
	matchAll = "*:*"
	// parentsQuery selects business (parent) documents in block joins.
	parentsQuery = string(field.Identifier) + ":*"
	childOf      = `{!parent which="` + parentsQuery + `"}`
	byParent     = "uniqueBlock(_root_)"
)

// filterFields maps per-field query entries to the field they filter on.
var filterFields = map[string]field.Field{
	"identifier": field.IdentifierQ,
	"bn":         field.BNQ,
	"name":       field.NameQ,
}

var childFilterFields = map[string]field.Field{
	"partyName":        field.PartyNameQ,
	"parentName":       field.ParentName,
	"parentIdentifier": field.ParentIdentifier,
}

// QueryBuilder renders business search clauses in Solr query syntax.
type QueryBuilder struct {
	facetLimit int
}

// NewQueryBuilder creates a query builder. facetLimit caps buckets per facet (0 = Solr default).
func NewQueryBuilder(facetLimit int) *QueryBuilder {
	return &QueryBuilder{facetLimit: facetLimit}
}

// BuildBaseQuery matches query["value"] against every query field and adds
// boosted and fuzzy variants as optional clauses. Other known query entries
// become filters.
func (b *QueryBuilder) BuildBaseQuery(
	query map[string]string,
	fields map[field.Field]dash.Mode,
	boostFields map[field.Field]int,
	fuzzyFields map[field.Field]request.Fuzzy,
) db.BaseQuery {
	value := query[request.ValueKey]

	var groups []string
	for _, f := range slices.Sorted(maps.Keys(fields)) {
		if g := termGroup(f, prepTerms(value, fields[f]), nil); g != "" {
			groups = append(groups, g)
		}
	}
	for _, f := range slices.Sorted(maps.Keys(boostFields)) {
		if g := termGroup(f, prepTerms(value, fields[f]), nil); g != "" {
			groups = append(groups, g+"^"+strconv.Itoa(boostFields[f]))
		}
	}
	for _, f := range slices.Sorted(maps.Keys(fuzzyFields)) {
		fz := fuzzyFields[f]
		fuzz := func(term string) string {
			if d := fz.Distance(term); d > 0 {
				return term + "~" + strconv.Itoa(d)
			}
			return term
		}
		if g := termGroup(f, prepTerms(value, fields[f]), fuzz); g != "" {
			groups = append(groups, g)
		}
	}

	bq := db.BaseQuery{Query: matchAll}
	if len(groups) > 0 {
		bq.Query = strings.Join(groups, " OR ")
	}

	for _, key := range slices.Sorted(maps.Keys(query)) {
		f, ok := filterFields[key]
		if !ok {
			continue
		}
		if clause := fieldClause(f, prepTerms(query[key], dash.None)); clause != "" {
			bq.Filter = append(bq.Filter, clause)
		}
	}
	return bq
}

// BuildFacet returns a terms facet on f. Nested facets count party documents
// and report how many distinct businesses each bucket covers.
func (b *QueryBuilder) BuildFacet(f field.Field, nested bool) map[string]db.Facet {
	fc := db.Facet{Type: "terms", Field: f.String(), Limit: b.facetLimit}
	if nested {
		fc.Domain = &db.FacetDomain{BlockChildren: parentsQuery}
		fc.Facet = map[string]string{"by_parent": byParent}
	}
	return map[string]db.Facet{f.String(): fc}
}

// BuildChildQuery returns a filter selecting businesses with matching party
// documents, or "" when child has no usable entries.
func (b *QueryBuilder) BuildChildQuery(child map[string]string) string {
	var clauses []string
	for _, key := range slices.Sorted(maps.Keys(child)) {
		f, ok := childFilterFields[key]
		if !ok {
			continue
		}
		if clause := fieldClause(f, prepTerms(child[key], dash.Tighten)); clause != "" {
			clauses = append(clauses, clause)
		}
	}
	if len(clauses) == 0 {
		return ""
	}
	return childOf + "(" + strings.Join(clauses, " AND ") + ")"
}

// ApplyCategoryFilters appends one exact-value filter per category.
// Top-level filters are tagged so the category's own facet keeps counting
// the unselected values.
func (b *QueryBuilder) ApplyCategoryFilters(p *db.Payload, categories map[field.Field][]string, nested bool) {
	for _, f := range slices.Sorted(maps.Keys(categories)) {
		values := make([]string, 0, len(categories[f]))
		for _, v := range categories[f] {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, quote(v))
			}
		}
		if len(values) == 0 {
			continue
		}
		clause := f.String() + ":(" + strings.Join(values, " OR ") + ")"

		if nested {
			p.Filter = append(p.Filter, childOf+clause)
			continue
		}
		p.Filter = append(p.Filter, "{!tag="+f.String()+"}"+clause)
		if fc, ok := p.Facet[f.String()]; ok {
			dom := db.FacetDomain{}
			if fc.Domain != nil {
				dom = *fc.Domain
			}
			dom.ExcludeTags = append(slices.Clone(dom.ExcludeTags), f.String())
			fc.Domain = &dom
			p.Facet[f.String()] = fc
		}
	}
}

func prepTerms(text string, mode dash.Mode) []string {
	return strings.FieldsFunc(PrepareQuery(text, mode, true), isSpace)
}

// termGroup renders (f:t1 AND f:t2 ...), optionally decorating each term.
func termGroup(f field.Field, terms []string, decorate func(string) string) string {
	if len(terms) == 0 {
		return ""
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		if decorate != nil {
			t = decorate(t)
		}
		parts[i] = f.String() + ":" + t
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

// fieldClause renders f:(t1 AND t2 ...).
func fieldClause(f field.Field, terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	return f.String() + ":(" + strings.Join(terms, " AND ") + ")"
}
