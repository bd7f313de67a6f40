package config

import (
	"fmt"
	"net/url"
	"sync"
	"time"
)

const (
	// SectionIDBrowser is the identifier for the browser settings section
	SectionIDBrowser = "browser"

	// BackendPlaywright launches a browser through Playwright.
	BackendPlaywright = "playwright"
	// BackendCDP attaches to an already running Chrome over DevTools.
	BackendCDP = "cdp"

	defaultBackend           = BackendPlaywright
	defaultHeadless          = true
	defaultCDPURL            = "http://127.0.0.1:9222"
	defaultBaseURL           = ""
	defaultNavigationTimeout = 30 * time.Second
)

// BrowserSection configures how pages are opened.
type BrowserSection struct {
	Backend           string        `json:"backend"`
	Headless          bool          `json:"headless"`
	ProfileDir        string        `json:"profile_dir"`
	CDPURL            string        `json:"cdp_url"`
	BaseURL           string        `json:"base_url"`
	NavigationTimeout time.Duration `json:"navigation_timeout"`
	mu                sync.RWMutex
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

// Title returns the section title.
func (s *BrowserSection) Title() string {
	return "Browser"
}

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Browser backend, profile and target page used for model selection."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"backend":            s.Backend,
		"headless":           s.Headless,
		"profile_dir":        s.ProfileDir,
		"cdp_url":            s.CDPURL,
		"base_url":           s.BaseURL,
		"navigation_timeout": s.NavigationTimeout.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "backend":
			s.Backend, err = stringValue(key, value)
		case "headless":
			s.Headless, err = boolValue(key, value)
		case "profile_dir":
			s.ProfileDir, err = stringValue(key, value)
		case "cdp_url":
			s.CDPURL, err = stringValue(key, value)
		case "base_url":
			s.BaseURL, err = stringValue(key, value)
		case "navigation_timeout":
			s.NavigationTimeout, err = durationValue(key, value)
		default:
			// Ignore unknown keys for forward compatibility
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.Backend {
	case BackendPlaywright:
	case BackendCDP:
		if s.CDPURL == "" {
			return fmt.Errorf("cdp_url is required for the %s backend", BackendCDP)
		}
	default:
		return fmt.Errorf("unknown browser backend %q (want %s or %s)", s.Backend, BackendPlaywright, BackendCDP)
	}

	if s.BaseURL != "" {
		u, err := url.Parse(s.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base_url must be an absolute URL, got %q", s.BaseURL)
		}
	}
	if s.NavigationTimeout < time.Second || s.NavigationTimeout > 5*time.Minute {
		return fmt.Errorf("navigation_timeout must be between 1s and 5m, got %v", s.NavigationTimeout)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Backend = defaultBackend
	s.Headless = defaultHeadless
	s.ProfileDir = ""
	s.CDPURL = defaultCDPURL
	s.BaseURL = defaultBaseURL
	s.NavigationTimeout = defaultNavigationTimeout
}

// Settings returns a consistent copy of the section's values.
func (s *BrowserSection) Settings() BrowserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BrowserSettings{
		Backend:           s.Backend,
		Headless:          s.Headless,
		ProfileDir:        s.ProfileDir,
		CDPURL:            s.CDPURL,
		BaseURL:           s.BaseURL,
		NavigationTimeout: s.NavigationTimeout,
	}
}

// BrowserSettings is a lock-free snapshot of BrowserSection.
type BrowserSettings struct {
	Backend           string        `yaml:"backend"`
	Headless          bool          `yaml:"headless"`
	ProfileDir        string        `yaml:"profile_dir"`
	CDPURL            string        `yaml:"cdp_url"`
	BaseURL           string        `yaml:"base_url"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
}
