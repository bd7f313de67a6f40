package config

import (
	"fmt"
	"os"
	"time"
)

// Environment variables consulted by Resolve.
const (
	EnvBackend           = "PILOT_BACKEND"
	EnvHeadless          = "PILOT_HEADLESS"
	EnvProfileDir        = "PILOT_PROFILE_DIR"
	EnvCDPURL            = "PILOT_CDP_URL"
	EnvBaseURL           = "PILOT_BASE_URL"
	EnvNavigationTimeout = "PILOT_NAVIGATION_TIMEOUT"
	EnvSettleDelay       = "PILOT_SETTLE_DELAY"
	EnvExpandDelay       = "PILOT_EXPAND_DELAY"
	EnvWaitTimeout       = "PILOT_WAIT_TIMEOUT"
	EnvReasoning         = "PILOT_REASONING"
	EnvModel             = "PILOT_MODEL"
)

var browserEnv = map[string]string{
	EnvBackend:           "backend",
	EnvHeadless:          "headless",
	EnvProfileDir:        "profile_dir",
	EnvCDPURL:            "cdp_url",
	EnvBaseURL:           "base_url",
	EnvNavigationTimeout: "navigation_timeout",
}

var selectionEnv = map[string]string{
	EnvSettleDelay: "settle_delay",
	EnvExpandDelay: "expand_delay",
	EnvWaitTimeout: "wait_timeout",
	EnvReasoning:   "enable_reasoning",
	EnvModel:       "model",
}

// Settings is the fully resolved configuration for one command.
type Settings struct {
	Browser   BrowserSettings   `yaml:"browser"`
	Selection SelectionSettings `yaml:"selection"`
}

// Overrides carries command-line values. Zero values and nil pointers mean
// "not set on the command line".
type Overrides struct {
	Backend           string
	Headless          *bool
	ProfileDir        string
	CDPURL            string
	BaseURL           string
	NavigationTimeout time.Duration

	SettleDelay     time.Duration
	ExpandDelay     time.Duration
	WaitTimeout     time.Duration
	EnableReasoning *bool
	Model           string
}

// Layer is one source of section values, keyed by section ID.
type Layer map[string]map[string]interface{}

func (o Overrides) layer() Layer {
	browser := map[string]interface{}{}
	setString(browser, "backend", o.Backend)
	setString(browser, "profile_dir", o.ProfileDir)
	setString(browser, "cdp_url", o.CDPURL)
	setString(browser, "base_url", o.BaseURL)
	if o.Headless != nil {
		browser["headless"] = *o.Headless
	}
	if o.NavigationTimeout > 0 {
		browser["navigation_timeout"] = o.NavigationTimeout
	}

	selection := map[string]interface{}{}
	setString(selection, "model", o.Model)
	if o.SettleDelay > 0 {
		selection["settle_delay"] = o.SettleDelay
	}
	if o.ExpandDelay > 0 {
		selection["expand_delay"] = o.ExpandDelay
	}
	if o.WaitTimeout > 0 {
		selection["wait_timeout"] = o.WaitTimeout
	}
	if o.EnableReasoning != nil {
		selection["enable_reasoning"] = *o.EnableReasoning
	}

	return Layer{SectionIDBrowser: browser, SectionIDSelection: selection}
}

func setString(m map[string]interface{}, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// envLayer reads PILOT_* variables through getenv.
func envLayer(getenv func(string) string) Layer {
	read := func(names map[string]string) map[string]interface{} {
		out := map[string]interface{}{}
		for env, key := range names {
			if v := getenv(env); v != "" {
				out[key] = v
			}
		}
		return out
	}
	return Layer{SectionIDBrowser: read(browserEnv), SectionIDSelection: read(selectionEnv)}
}

// Resolve merges, lowest precedence first: defaults, the global config file,
// the extra layers (run profiles), PILOT_* environment variables, then cli.
func Resolve(cli Overrides, extra ...Layer) (Settings, error) {
	var file *Manager
	if IsInitialized() {
		file = Global()
	}
	return ResolveWith(file, os.Getenv, cli, extra...)
}

// ResolveWith is Resolve with explicit sources. file may be nil.
func ResolveWith(file *Manager, getenv func(string) string, cli Overrides, extra ...Layer) (Settings, error) {
	browser := NewBrowserSection()
	sel := NewSelectionSection()

	layers := make([]Layer, 0, len(extra)+3)
	if file != nil {
		fileLayer := Layer{}
		if b := browserSection(file); b != nil {
			fileLayer[SectionIDBrowser] = b.Data()
		}
		if s := selectionSection(file); s != nil {
			fileLayer[SectionIDSelection] = s.Data()
		}
		layers = append(layers, fileLayer)
	}
	layers = append(layers, extra...)
	if getenv != nil {
		layers = append(layers, envLayer(getenv))
	}
	layers = append(layers, cli.layer())

	for _, l := range layers {
		if err := browser.SetData(l[SectionIDBrowser]); err != nil {
			return Settings{}, fmt.Errorf("browser settings: %w", err)
		}
		if err := sel.SetData(l[SectionIDSelection]); err != nil {
			return Settings{}, fmt.Errorf("selection settings: %w", err)
		}
	}

	if err := browser.Validate(); err != nil {
		return Settings{}, fmt.Errorf("browser settings: %w", err)
	}
	if err := sel.Validate(); err != nil {
		return Settings{}, fmt.Errorf("selection settings: %w", err)
	}
	return Settings{Browser: browser.Settings(), Selection: sel.Settings()}, nil
}
