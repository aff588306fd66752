// Package dash defines how literal hyphens are treated when a query string
// is prepared for Solr.
package dash

import (
	"errors"
	"fmt"
)

// ErrInvalidMode signals an unknown dash mode name.
var ErrInvalidMode = errors.New("invalid dash mode")

// Mode selects the hyphen rewrite applied by the query sanitizer.
type Mode string

// Dash mode constants. None leaves hyphens alone.
const (
	None    Mode = ""
	Replace Mode = "replace"
	Remove  Mode = "remove"
	// Pad turns "foo-bar" into "foo - bar".
	Pad Mode = "pad"
	// Tighten turns "foo - bar" into "foo-bar".
	Tighten Mode = "tighten"
	// TightenRemove turns "foo - bar" into "foobar".
	TightenRemove Mode = "tighten-remove"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	switch m {
	case None, Replace, Remove, Pad, Tighten, TightenRemove:
		return true
	}
	return false
}

func (m Mode) String() string {
	if m == None {
		return "none"
	}
	return string(m)
}

// Parse converts a mode name into a Mode. "none" and "" both map to None.
func Parse(s string) (Mode, error) {
	if s == "none" {
		return None, nil
	}
	m := Mode(s)
	if !m.IsValid() {
		return None, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}
