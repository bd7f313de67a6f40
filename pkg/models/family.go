package models

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// FamilyMatcher recognizes UI text that names a model from a known family.
type FamilyMatcher struct {
	globs []glob.Glob
}

// NewFamilyMatcher compiles one "*family*" glob per catalog family.
func NewFamilyMatcher(c *Catalog) (*FamilyMatcher, error) {
	patterns := make([]string, 0, len(c.Families()))
	for _, f := range c.Families() {
		patterns = append(patterns, "*"+strings.ToLower(f)+"*")
	}
	return NewFamilyMatcherFromPatterns(patterns...)
}

// NewFamilyMatcherFromPatterns compiles explicit glob patterns.
func NewFamilyMatcherFromPatterns(patterns ...string) (*FamilyMatcher, error) {
	m := &FamilyMatcher{globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("invalid family pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether text mentions any known family.
func (m *FamilyMatcher) Match(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false
	}
	for _, g := range m.globs {
		if g.Match(text) {
			return true
		}
	}
	return false
}
