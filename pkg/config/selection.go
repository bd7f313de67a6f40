package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDSelection is the identifier for the model selection section
	SectionIDSelection = "selection"

	defaultSettleDelay     = 800 * time.Millisecond
	defaultExpandDelay     = 500 * time.Millisecond
	defaultWaitTimeout     = 5 * time.Second
	defaultEnableReasoning = true
	defaultModel           = ""
)

// SelectionSection holds the selection engine's timing and the default model.
type SelectionSection struct {
	SettleDelay     time.Duration `json:"settle_delay"`
	ExpandDelay     time.Duration `json:"expand_delay"`
	WaitTimeout     time.Duration `json:"wait_timeout"`
	EnableReasoning bool          `json:"enable_reasoning"`
	// Model is requested when none is given on the command line.
	Model string `json:"model"`
	mu    sync.RWMutex
}

// NewSelectionSection creates a selection section with default settings.
func NewSelectionSection() *SelectionSection {
	s := &SelectionSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *SelectionSection) ID() string {
	return SectionIDSelection
}

// Title returns the section title.
func (s *SelectionSection) Title() string {
	return "Model Selection"
}

// Description returns the section description.
func (s *SelectionSection) Description() string {
	return "Delays and waits used while switching the page's model, and whether to engage reasoning mode."
}

// Data returns the current configuration data.
func (s *SelectionSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"settle_delay":     s.SettleDelay.String(),
		"expand_delay":     s.ExpandDelay.String(),
		"wait_timeout":     s.WaitTimeout.String(),
		"enable_reasoning": s.EnableReasoning,
		"model":            s.Model,
	}
}

// SetData updates the configuration from the provided data.
func (s *SelectionSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "settle_delay":
			s.SettleDelay, err = durationValue(key, value)
		case "expand_delay":
			s.ExpandDelay, err = durationValue(key, value)
		case "wait_timeout":
			s.WaitTimeout, err = durationValue(key, value)
		case "enable_reasoning":
			s.EnableReasoning, err = boolValue(key, value)
		case "model":
			s.Model, err = stringValue(key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *SelectionSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range []struct {
		key      string
		value    time.Duration
		min, max time.Duration
	}{
		{"settle_delay", s.SettleDelay, 0, 10 * time.Second},
		{"expand_delay", s.ExpandDelay, 0, 10 * time.Second},
		{"wait_timeout", s.WaitTimeout, 100 * time.Millisecond, time.Minute},
	} {
		if d.value < d.min || d.value > d.max {
			return fmt.Errorf("%s must be between %v and %v, got %v", d.key, d.min, d.max, d.value)
		}
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *SelectionSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SettleDelay = defaultSettleDelay
	s.ExpandDelay = defaultExpandDelay
	s.WaitTimeout = defaultWaitTimeout
	s.EnableReasoning = defaultEnableReasoning
	s.Model = defaultModel
}

// Settings returns a consistent copy of the section's values.
func (s *SelectionSection) Settings() SelectionSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SelectionSettings{
		SettleDelay:     s.SettleDelay,
		ExpandDelay:     s.ExpandDelay,
		WaitTimeout:     s.WaitTimeout,
		EnableReasoning: s.EnableReasoning,
		Model:           s.Model,
	}
}

// SelectionSettings is a lock-free snapshot of SelectionSection.
type SelectionSettings struct {
	SettleDelay     time.Duration `yaml:"settle_delay"`
	ExpandDelay     time.Duration `yaml:"expand_delay"`
	WaitTimeout     time.Duration `yaml:"wait_timeout"`
	EnableReasoning bool          `yaml:"enable_reasoning"`
	Model           string        `yaml:"model"`
}
