// Package field lists the Solr schema fields of business and party documents.
package field

import (
	"fmt"

	"github.com/kailas-cloud/bizsearch/internal/domain"
)

// Field is a Solr document field name.
type Field string

// Business (parent) document fields.
const (
	Identifier   Field = "identifier"
	Name         Field = "name"
	BN           Field = "bn"
	State        Field = "status"
	Type         Field = "legalType"
	GoodStanding Field = "goodStanding"
	ModifiedAt   Field = "modifiedAt"

	// Query variants: tokenized copies of the stored fields.
	IdentifierQ  Field = "identifier_q"
	BNQ          Field = "bn_q"
	NameQ        Field = "name_q"
	NameQExact   Field = "name_q_exact"
	NameStemAgro Field = "name_stem_agro"
	NameSingle   Field = "name_single_term"
)

// Party (child) document fields.
const (
	PartyName        Field = "partyName"
	PartyNameQ       Field = "partyName_q"
	PartyRoles       Field = "partyRoles"
	PartyType        Field = "partyType"
	ParentIdentifier Field = "parentIdentifier"
	ParentName       Field = "parentName"
	ParentBN         Field = "parentBN"
	ParentState      Field = "parentStatus"
	ParentType       Field = "parentLegalType"
)

// categories are fields that can be faceted and filtered by exact value.
var categories = map[Field]bool{
	State:      true,
	Type:       true,
	PartyRoles: true,
	PartyType:  true,
}

var childFields = map[Field]bool{
	PartyName:        true,
	PartyNameQ:       true,
	PartyRoles:       true,
	PartyType:        true,
	ParentIdentifier: true,
	ParentName:       true,
	ParentBN:         true,
	ParentState:      true,
	ParentType:       true,
}

// IsCategory reports whether f supports category (facet) filtering.
func (f Field) IsCategory() bool { return categories[f] }

// IsChild reports whether f lives on party documents.
func (f Field) IsChild() bool { return childFields[f] }

func (f Field) String() string { return string(f) }

// ParseCategory validates a category name. nested selects party categories.
func ParseCategory(name string, nested bool) (Field, error) {
	f := Field(name)
	if !f.IsCategory() || f.IsChild() != nested {
		return "", fmt.Errorf("%w: unknown category %q", domain.ErrInvalidRequest, name)
	}
	return f, nil
}
