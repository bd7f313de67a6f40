package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func boolPtr(b bool) *bool { return &b }

func TestResolveWith_Precedence(t *testing.T) {
	store := newMockStore()
	store.sections[SectionIDBrowser] = map[string]interface{}{
		"backend":  "cdp",
		"cdp_url":  "http://file:9222",
		"base_url": "https://file.example/",
		"headless": false,
	}
	store.sections[SectionIDSelection] = map[string]interface{}{
		"settle_delay": "1s",
		"model":        "gpt-5.1",
	}
	file, err := NewDefaultManager(store)
	if err != nil {
		t.Fatal(err)
	}
	if err := file.LoadAll(); err != nil {
		t.Fatal(err)
	}

	profile := Layer{SectionIDSelection: {"expand_delay": "250ms", "model": "grok-4.1"}}
	env := envMap(map[string]string{
		EnvCDPURL:    "http://env:9222",
		EnvModel:     "kimi-k2.5",
		EnvReasoning: "false",
	})
	cli := Overrides{
		BaseURL:     "https://cli.example/",
		Model:       "gemini-3.1-pro",
		WaitTimeout: 2 * time.Second,
	}

	got, err := ResolveWith(file, env, cli, profile)
	if err != nil {
		t.Fatalf("ResolveWith failed: %v", err)
	}

	checks := []struct {
		name      string
		got, want interface{}
	}{
		{"backend from file", got.Browser.Backend, "cdp"},
		{"headless from file", got.Browser.Headless, false},
		{"cdp url from env", got.Browser.CDPURL, "http://env:9222"},
		{"base url from cli", got.Browser.BaseURL, "https://cli.example/"},
		{"navigation timeout default", got.Browser.NavigationTimeout, defaultNavigationTimeout},
		{"settle delay from file", got.Selection.SettleDelay, time.Second},
		{"expand delay from profile", got.Selection.ExpandDelay, 250 * time.Millisecond},
		{"wait timeout from cli", got.Selection.WaitTimeout, 2 * time.Second},
		{"reasoning from env", got.Selection.EnableReasoning, false},
		{"model from cli", got.Selection.Model, "gemini-3.1-pro"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestResolveWith_Defaults(t *testing.T) {
	got, err := ResolveWith(nil, nil, Overrides{})
	if err != nil {
		t.Fatalf("ResolveWith failed: %v", err)
	}
	if got.Browser != NewBrowserSection().Settings() || got.Selection != NewSelectionSection().Settings() {
		t.Errorf("Expected defaults, got %+v", got)
	}
}

func TestResolveWith_CLIBooleans(t *testing.T) {
	env := envMap(map[string]string{EnvHeadless: "false", EnvReasoning: "false"})
	got, err := ResolveWith(nil, env, Overrides{Headless: boolPtr(true), EnableReasoning: boolPtr(true)})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Browser.Headless || !got.Selection.EnableReasoning {
		t.Errorf("Explicit CLI booleans must win over the environment: %+v", got)
	}
}

func TestResolveWith_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		cli  Overrides
		want string
	}{
		{"bad env duration", map[string]string{EnvSettleDelay: "fast"}, Overrides{}, "settle_delay"},
		{"bad env bool", map[string]string{EnvHeadless: "sometimes"}, Overrides{}, "headless"},
		{"unknown backend", nil, Overrides{Backend: "webkit-remote"}, "unknown browser backend"},
		{"wait timeout out of range", nil, Overrides{WaitTimeout: time.Hour}, "wait_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWith(nil, envMap(tt.env), tt.cli)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestResolve_UsesGlobalConfig(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	configPath := filepath.Join(t.TempDir(), "config.json")
	writeConfig(t, configPath, map[string]map[string]interface{}{
		SectionIDSelection: {"model": "claude-opus-4.6"},
	})
	if err := Initialize(configPath); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvModel, "")

	got, err := Resolve(Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Selection.Model != "claude-opus-4.6" {
		t.Errorf("Expected model from config file, got %q", got.Selection.Model)
	}
}

func TestLoadRunProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	body := `url: https://app.example/
models:
  - gpt-5.1
  - Claude Opus 4.6
browser:
  headless: false
selection:
  settle_delay: 1500ms
  wait_timeout: 3s
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadRunProfile(path)
	if err != nil {
		t.Fatalf("LoadRunProfile failed: %v", err)
	}
	if len(p.Models) != 2 || p.Models[1] != "Claude Opus 4.6" {
		t.Errorf("Unexpected models: %v", p.Models)
	}

	got, err := ResolveWith(nil, nil, Overrides{}, p.Layer())
	if err != nil {
		t.Fatalf("ResolveWith failed: %v", err)
	}
	if got.Browser.BaseURL != "https://app.example/" || got.Browser.Headless {
		t.Errorf("Profile browser settings not applied: %+v", got.Browser)
	}
	if got.Selection.SettleDelay != 1500*time.Millisecond || got.Selection.WaitTimeout != 3*time.Second {
		t.Errorf("Profile selection settings not applied: %+v", got.Selection)
	}
	if _, ok := p.Browser["base_url"]; ok {
		t.Error("Layer must not modify the profile")
	}
}

func TestLoadRunProfile_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadRunProfile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for a missing file")
	}

	empty := filepath.Join(dir, "empty.yaml")
	os.WriteFile(empty, []byte("url: https://app.example/\n"), 0o644)
	if _, err := LoadRunProfile(empty); err == nil || !strings.Contains(err.Error(), "no models") {
		t.Errorf("Expected no-models error, got %v", err)
	}

	broken := filepath.Join(dir, "broken.yaml")
	os.WriteFile(broken, []byte("models: [unterminated"), 0o644)
	if _, err := LoadRunProfile(broken); err == nil {
		t.Error("Expected parse error")
	}
}
