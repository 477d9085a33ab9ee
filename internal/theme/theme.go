// Package theme owns the light/dark/system preference: reading and
// persisting it, resolving it against the OS color scheme, and applying
// the result to the document root.
package theme

import (
	"errors"
	"fmt"
)

// Preference is the user's chosen theme setting.
type Preference string

const (
	Light  Preference = "light"
	Dark   Preference = "dark"
	System Preference = "system"
)

// Resolved is the concrete theme applied to the page.
type Resolved string

const (
	ResolvedLight Resolved = "light"
	ResolvedDark  Resolved = "dark"
)

// StorageKey is the key the preference is persisted under.
const StorageKey = "theme"

// DefaultPreference applies when nothing valid is stored.
const DefaultPreference = Dark

var ErrInvalidPreference = errors.New("invalid theme preference")

// Preferences lists the selectable values in display order.
var Preferences = []Preference{Light, Dark, System}

// Valid reports whether p is one of the known literals.
func (p Preference) Valid() bool {
	switch p {
	case Light, Dark, System:
		return true
	}
	return false
}

// ParsePreference validates a stored or submitted value.
func ParsePreference(s string) (Preference, error) {
	p := Preference(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPreference, s)
	}
	return p, nil
}

// Resolve maps a preference to the theme actually shown.
func Resolve(p Preference, prefersDark bool) Resolved {
	switch p {
	case Light:
		return ResolvedLight
	case Dark:
		return ResolvedDark
	case System:
		if prefersDark {
			return ResolvedDark
		}
		return ResolvedLight
	}
	return Resolve(DefaultPreference, prefersDark)
}

// Opposite returns the theme a toggle switches to.
func (r Resolved) Opposite() Resolved {
	if r == ResolvedDark {
		return ResolvedLight
	}
	return ResolvedDark
}

// State is what subscribers observe.
type State struct {
	Preference Preference `json:"preference"`
	Resolved   Resolved   `json:"resolved"`
}
