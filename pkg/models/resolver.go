package models

// Resolver maps free-form model names to catalog entries.
//
// Lookups run in order against the canonical name, the display label and the
// UI selector label. The last two are identical today but are kept as separate
// indexes so the catalog can diverge without changing resolution.
type Resolver struct {
	catalog    *Catalog
	byName     map[string]int
	byDisplay  map[string]int
	bySelector map[string]int
}

// NewResolver indexes the catalog.
func NewResolver(c *Catalog) *Resolver {
	r := &Resolver{
		catalog:    c,
		byName:     make(map[string]int, c.Len()),
		byDisplay:  make(map[string]int, c.Len()),
		bySelector: make(map[string]int, c.Len()),
	}
	for i, m := range c.entries {
		r.byName[normalize(m.Name)] = i
		r.byDisplay[normalize(m.DisplayName)] = i
		r.bySelector[normalize(m.SelectorText)] = i
	}
	return r
}

// Resolve returns the entry matching raw, case-insensitively.
func (r *Resolver) Resolve(raw string) (ModelConfig, bool) {
	key := normalize(raw)
	if key == "" {
		return ModelConfig{}, false
	}
	for _, index := range []map[string]int{r.byName, r.byDisplay, r.bySelector} {
		if i, ok := index[key]; ok {
			return r.catalog.entries[i], true
		}
	}
	return ModelConfig{}, false
}
