package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoDefaultModel is returned when a catalog has no entry marked as default.
// It is a build-time data error: callers must abort startup rather than recover.
var ErrNoDefaultModel = errors.New("model catalog has no default model")

// ModelConfig describes one model the target application can be switched to.
type ModelConfig struct {
	// Name is the canonical, lowercase identifier handed to downstream consumers.
	Name string `json:"name" yaml:"name"`

	// DisplayName is the label the target UI renders for this model.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// SelectorText is the literal text used to locate the model's UI element.
	// It must equal DisplayName.
	SelectorText string `json:"selector_text" yaml:"selector_text"`

	// Family groups models by vendor (claude, gemini, ...).
	Family string `json:"family" yaml:"family"`

	// SupportsReasoning reports whether the UI exposes a reasoning-mode toggle
	// next to the dropdown when this model is active.
	SupportsReasoning bool `json:"supports_reasoning" yaml:"supports_reasoning"`

	// IsDefault marks the single fallback entry.
	IsDefault bool `json:"is_default" yaml:"is_default"`
}

// Catalog is an immutable registry of known models.
type Catalog struct {
	entries []ModelConfig
	byName  map[string]int
	def     int
}

// NewCatalog validates entries and builds a catalog from them.
func NewCatalog(entries []ModelConfig) (*Catalog, error) {
	c := &Catalog{
		entries: make([]ModelConfig, len(entries)),
		byName:  make(map[string]int, len(entries)),
		def:     -1,
	}
	copy(c.entries, entries)

	displays := make(map[string]string, len(entries))
	for i, m := range c.entries {
		if m.Name == "" {
			return nil, fmt.Errorf("catalog entry %d has an empty name", i)
		}
		if m.Name != strings.ToLower(m.Name) {
			return nil, fmt.Errorf("model %q: name must be lowercase", m.Name)
		}
		if m.DisplayName == "" {
			return nil, fmt.Errorf("model %q has an empty display name", m.Name)
		}
		if m.SelectorText != m.DisplayName {
			return nil, fmt.Errorf("model %q: selector text %q differs from display name %q", m.Name, m.SelectorText, m.DisplayName)
		}

		key := strings.ToLower(m.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("duplicate model name %q", m.Name)
		}
		c.byName[key] = i

		dkey := strings.ToLower(m.DisplayName)
		if other, dup := displays[dkey]; dup {
			return nil, fmt.Errorf("models %q and %q share display name %q", other, m.Name, m.DisplayName)
		}
		displays[dkey] = m.Name

		if m.IsDefault {
			if c.def >= 0 {
				return nil, fmt.Errorf("models %q and %q are both marked default", c.entries[c.def].Name, m.Name)
			}
			c.def = i
		}
	}

	if c.def < 0 {
		return nil, ErrNoDefaultModel
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on an integrity fault.
func MustCatalog(entries []ModelConfig) *Catalog {
	c, err := NewCatalog(entries)
	if err != nil {
		panic(fmt.Sprintf("models: invalid catalog: %v", err))
	}
	return c
}

// All returns a copy of every entry in catalog order.
func (c *Catalog) All() []ModelConfig {
	out := make([]ModelConfig, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Default returns the default entry.
func (c *Catalog) Default() ModelConfig {
	return c.entries[c.def]
}

// ByName looks up an entry by canonical name, case-insensitively.
func (c *Catalog) ByName(name string) (ModelConfig, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ModelConfig{}, false
	}
	return c.entries[i], true
}

// Families returns the distinct model families in catalog order.
func (c *Catalog) Families() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range c.entries {
		if m.Family == "" || seen[m.Family] {
			continue
		}
		seen[m.Family] = true
		out = append(out, m.Family)
	}
	return out
}

func model(name, display, family string, reasoning, isDefault bool) ModelConfig {
	return ModelConfig{
		Name:              name,
		DisplayName:       display,
		SelectorText:      display,
		Family:            family,
		SupportsReasoning: reasoning,
		IsDefault:         isDefault,
	}
}

// builtin is constructed once at package init; an integrity fault aborts startup.
var builtin = MustCatalog([]ModelConfig{
	model("sonar", "Sonar", "sonar", false, false),
	model("claude-sonnet-4.6", "Claude Sonnet 4.6", "claude", true, true),
	model("claude-opus-4.6", "Claude Opus 4.6", "claude", true, false),
	model("gpt-5.1", "GPT-5.1", "gpt", true, false),
	model("gemini-3.1-pro", "Gemini 3.1 Pro", "gemini", false, false),
	model("grok-4.1", "Grok 4.1", "grok", true, false),
	model("kimi-k2.5", "Kimi K2.5", "kimi", false, false),
})

// Builtin returns the process-wide model catalog.
func Builtin() *Catalog {
	return builtin
}
