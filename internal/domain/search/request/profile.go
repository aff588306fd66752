package request

import (
	"maps"

	"github.com/kailas-cloud/bizsearch/internal/domain/search/dash"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/field"
)

// DefaultFields are the stored business fields returned by a search.
var DefaultFields = []string{
	field.Identifier.String(),
	field.Name.String(),
	field.BN.String(),
	field.State.String(),
	field.Type.String(),
	field.GoodStanding.String(),
	field.ModifiedAt.String(),
}

// BusinessProfile is the matching profile used for business name/number search.
func BusinessProfile() Profile {
	return Profile{
		QueryFields: map[field.Field]dash.Mode{
			field.NameQ:        dash.Replace,
			field.NameStemAgro: dash.Replace,
			field.IdentifierQ:  dash.None,
			field.BNQ:          dash.Remove,
		},
		QueryBoostFields: map[field.Field]int{
			field.NameQExact:   3,
			field.NameStemAgro: 2,
		},
		QueryFuzzyFields: map[field.Field]Fuzzy{
			field.NameSingle: {Short: 1, Long: 2, ShortMaxChars: 5},
		},
		Fields: DefaultFields,
	}
}

// NameBoosts ranks exact and near-exact whole-name matches first.
// value must already be prepared for the engine.
func NameBoosts(value string) []Boost {
	if value == "" {
		return nil
	}
	return []Boost{
		{Field: field.NameQExact, Value: value, Boost: 5},
		{Field: field.NameSingle, Value: value, Boost: 2, Fuzzy: 1},
	}
}

// WithQueryFieldModes returns a copy of p with dash modes overridden per field.
// Overrides may add query fields.
func (p Profile) WithQueryFieldModes(modes map[field.Field]dash.Mode) Profile {
	if len(modes) == 0 {
		return p
	}
	fields := make(map[field.Field]dash.Mode, len(p.QueryFields)+len(modes))
	maps.Copy(fields, p.QueryFields)
	maps.Copy(fields, modes)
	p.QueryFields = fields
	return p
}
