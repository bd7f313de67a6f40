package models

import "strings"

// Generic names for the app's house model (en, ru, es/pt, ja). They are never
// valid selection targets even though "sonar" is a catalog identifier.
var defaultBannedPatterns = []string{
	"sonar",
	"сонар",
	"sónar",
	"ソナー",
}

// Policy rejects generic or ambiguous model names.
// Matching is exact on the trimmed, case-folded input; a banned word that only
// appears inside a longer name does not cause rejection.
type Policy struct {
	banned map[string]struct{}
}

// NewPolicy builds a policy from banned patterns.
func NewPolicy(patterns ...string) *Policy {
	p := &Policy{banned: make(map[string]struct{}, len(patterns))}
	for _, pat := range patterns {
		pat = normalize(pat)
		if pat != "" {
			p.banned[pat] = struct{}{}
		}
	}
	return p
}

// DefaultPolicy returns the policy with the built-in locale variants.
func DefaultPolicy() *Policy {
	return NewPolicy(defaultBannedPatterns...)
}

// IsAllowed reports whether raw may be used as a selection target.
func (p *Policy) IsAllowed(raw string) bool {
	_, banned := p.banned[normalize(raw)]
	return !banned
}

// Patterns returns the normalized banned patterns.
func (p *Policy) Patterns() []string {
	out := make([]string, 0, len(p.banned))
	for pat := range p.banned {
		out = append(out, pat)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
