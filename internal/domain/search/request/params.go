package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/bizsearch/internal/domain"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/dash"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/field"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed length of any query value.
	MaxQueryLength = 1000
	DefaultRows    = 10
	MaxRows        = 1000
)

// ValueKey is the query entry holding the free text searched across all query fields.
const ValueKey = "value"

// Fuzzy configures the edit distance applied to a fuzzy-matched field.
type Fuzzy struct {
	Short         int // distance for terms up to ShortMaxChars runes
	Long          int
	ShortMaxChars int
}

// Distance returns the edit distance for term.
func (f Fuzzy) Distance(term string) int {
	if utf8.RuneCountInString(term) <= f.ShortMaxChars {
		return f.Short
	}
	return f.Long
}

// Boost ranks documents whose field matches the whole value higher.
type Boost struct {
	Field field.Field
	Value string
	Boost int
	Fuzzy int // 0 disables fuzziness
}

// Profile describes how free text is matched against the index.
type Profile struct {
	QueryFields      map[field.Field]dash.Mode
	QueryBoostFields map[field.Field]int
	QueryFuzzyFields map[field.Field]Fuzzy
	// Fields lists the stored fields returned for each hit.
	Fields []string
}

// Input is the caller-supplied part of a search.
type Input struct {
	Query           map[string]string
	Categories      map[field.Field][]string
	ChildQuery      map[string]string
	ChildCategories map[field.Field][]string
	FullQueryBoosts []Boost
	Start           int
	Rows            int
}

// Params is a validated, read-only business search request.
type Params struct {
	query           map[string]string
	profile         Profile
	fullQueryBoosts []Boost
	categories      map[field.Field][]string
	childCategories map[field.Field][]string
	childQuery      map[string]string
	start           int
	rows            int
}

// New validates in and combines it with the matching profile.
// Defaults: rows=10. Rows is clamped to MaxRows.
func New(in Input, profile Profile) (*Params, error) {
	if strings.TrimSpace(in.Query[ValueKey]) == "" {
		return nil, fmt.Errorf("%w: query value is required", domain.ErrInvalidRequest)
	}
	for k, v := range in.Query {
		if utf8.RuneCountInString(v) > MaxQueryLength {
			return nil, fmt.Errorf("%w: query %s too long (max %d chars)", domain.ErrInvalidRequest, k, MaxQueryLength)
		}
	}
	for k, v := range in.ChildQuery {
		if utf8.RuneCountInString(v) > MaxQueryLength {
			return nil, fmt.Errorf("%w: child query %s too long (max %d chars)", domain.ErrInvalidRequest, k, MaxQueryLength)
		}
	}
	for f := range in.Categories {
		if !f.IsCategory() || f.IsChild() {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidRequest, f)
		}
	}
	for f := range in.ChildCategories {
		if !f.IsCategory() || !f.IsChild() {
			return nil, fmt.Errorf("%w: unknown child category %q", domain.ErrInvalidRequest, f)
		}
	}
	for f, m := range profile.QueryFields {
		if !m.IsValid() {
			return nil, fmt.Errorf("%w: field %s: %w", domain.ErrInvalidRequest, f, dash.ErrInvalidMode)
		}
	}
	if in.Start < 0 {
		return nil, fmt.Errorf("%w: start must not be negative", domain.ErrInvalidRequest)
	}

	rows := in.Rows
	if rows <= 0 {
		rows = DefaultRows
	}
	if rows > MaxRows {
		rows = MaxRows
	}

	return &Params{
		query:           in.Query,
		profile:         profile,
		fullQueryBoosts: in.FullQueryBoosts,
		categories:      in.Categories,
		childCategories: in.ChildCategories,
		childQuery:      in.ChildQuery,
		start:           in.Start,
		rows:            rows,
	}, nil
}

// Query returns the query entries: ValueKey plus optional per-field text.
func (p *Params) Query() map[string]string { return p.query }

// QueryFields returns the searched fields with their dash handling.
func (p *Params) QueryFields() map[field.Field]dash.Mode { return p.profile.QueryFields }

// QueryBoostFields returns the boosted fields with their weights.
func (p *Params) QueryBoostFields() map[field.Field]int { return p.profile.QueryBoostFields }

// QueryFuzzyFields returns the fuzzy-matched fields.
func (p *Params) QueryFuzzyFields() map[field.Field]Fuzzy { return p.profile.QueryFuzzyFields }

// FullQueryBoosts returns the whole-value boosts in application order.
func (p *Params) FullQueryBoosts() []Boost { return p.fullQueryBoosts }

// Categories returns business document category filters.
func (p *Params) Categories() map[field.Field][]string { return p.categories }

// ChildCategories returns party document category filters.
func (p *Params) ChildCategories() map[field.Field][]string { return p.childCategories }

// ChildQuery returns party document text filters.
func (p *Params) ChildQuery() map[string]string { return p.childQuery }

// Fields returns the stored fields to return.
func (p *Params) Fields() []string { return p.profile.Fields }

// Start returns the offset of the first hit.
func (p *Params) Start() int { return p.start }

// Rows returns the page size.
func (p *Params) Rows() int { return p.rows }
