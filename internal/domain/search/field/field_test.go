package field

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/bizsearch/internal/domain"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		nested  bool
		want    Field
		wantErr bool
	}{
		{"status", false, State, false},
		{"legalType", false, Type, false},
		{"partyRoles", true, PartyRoles, false},
		{"partyType", true, PartyType, false},
		{"partyRoles", false, "", true},
		{"status", true, "", true},
		{"name", false, "", true},
		{"", false, "", true},
	}
	for _, tc := range tests {
		got, err := ParseCategory(tc.name, tc.nested)
		if tc.wantErr {
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("ParseCategory(%q, %v): expected ErrInvalidRequest, got %v", tc.name, tc.nested, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCategory(%q, %v): unexpected error %v", tc.name, tc.nested, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseCategory(%q, %v) = %q, want %q", tc.name, tc.nested, got, tc.want)
		}
	}
}

func TestField_IsChild(t *testing.T) {
	if Identifier.IsChild() {
		t.Error("identifier is a parent field")
	}
	if !PartyNameQ.IsChild() {
		t.Error("partyName_q is a child field")
	}
}
