package backend

import (
	"errors"
	"strings"
)

// ErrUnknownFont rejects a font name the provider cannot serve.
var ErrUnknownFont = errors.New("backend: unknown font")

// FontProvider resolves and enumerates font names. Glyph data is out of
// scope; only the namespace is modeled.
type FontProvider interface {
	// Resolve maps a client-supplied name, possibly containing * and ?
	// wildcards, to the canonical name of one available font.
	Resolve(name string) (string, error)

	// List returns up to limit font names matching the pattern.
	List(pattern string, limit int) []string
}

// BuiltinFonts serves the small fixed set of names every display is
// expected to have.
type BuiltinFonts struct {
	names []string
}

// NewBuiltinFonts returns the built-in provider.
func NewBuiltinFonts() *BuiltinFonts {
	return &BuiltinFonts{
		names: []string{"fixed", "cursor", "6x13", "9x15"},
	}
}

func (p *BuiltinFonts) Resolve(name string) (string, error) {
	for _, candidate := range p.names {
		if matchFontName(name, candidate) {
			return candidate, nil
		}
	}

	return "", ErrUnknownFont
}

func (p *BuiltinFonts) List(pattern string, limit int) []string {
	var out []string
	for _, candidate := range p.names {
		if len(out) >= limit {
			break
		}
		if matchFontName(pattern, candidate) {
			out = append(out, candidate)
		}
	}

	return out
}

// matchFontName implements the protocol's font pattern language: names are
// matched case-insensitively, * matches any run of characters, ? matches
// exactly one.
func matchFontName(pattern, name string) bool {
	return matchFold(strings.ToLower(pattern), strings.ToLower(name))
}

func matchFold(pattern, name string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for skip := 0; skip <= len(name); skip++ {
				if matchFold(pattern[1:], name[skip:]) {
					return true
				}
			}
			return false
		case '?':
			if len(name) == 0 {
				return false
			}
		default:
			if len(name) == 0 || pattern[0] != name[0] {
				return false
			}
		}
		pattern = pattern[1:]
		name = name[1:]
	}

	return len(name) == 0
}
