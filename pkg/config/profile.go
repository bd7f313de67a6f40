package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunProfile describes a scripted `pilot run`: which page to open and which
// models to select on it, in order.
type RunProfile struct {
	URL       string                 `yaml:"url"`
	Models    []string               `yaml:"models"`
	Browser   map[string]interface{} `yaml:"browser,omitempty"`
	Selection map[string]interface{} `yaml:"selection,omitempty"`
}

// LoadRunProfile reads a YAML run profile.
func LoadRunProfile(path string) (*RunProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run profile: %w", err)
	}

	var p RunProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse run profile: %w", err)
	}
	if len(p.Models) == 0 {
		return nil, fmt.Errorf("run profile %s lists no models", path)
	}
	return &p, nil
}

// Layer returns the profile's settings for Resolve.
func (p *RunProfile) Layer() Layer {
	l := Layer{
		SectionIDBrowser:   p.Browser,
		SectionIDSelection: p.Selection,
	}
	if p.URL != "" {
		if l[SectionIDBrowser] == nil {
			l[SectionIDBrowser] = map[string]interface{}{}
		} else {
			l[SectionIDBrowser] = cloneSection(p.Browser)
		}
		l[SectionIDBrowser]["base_url"] = p.URL
	}
	return l
}
