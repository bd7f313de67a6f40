package config

import (
	"strings"
	"testing"
	"time"
)

func TestBrowserSection(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]interface{}
		setErr  bool
		invalid string
	}{
		{name: "defaults"},
		{name: "cdp backend", data: map[string]interface{}{"backend": "cdp", "cdp_url": "http://localhost:9222"}},
		{name: "env style strings", data: map[string]interface{}{"headless": "false", "navigation_timeout": "45s"}},
		{name: "json number timeout", data: map[string]interface{}{"navigation_timeout": float64(10 * time.Second)}},
		{name: "unknown keys ignored", data: map[string]interface{}{"future": 1}},
		{name: "bad headless", data: map[string]interface{}{"headless": 1.0}, setErr: true},
		{name: "bad timeout", data: map[string]interface{}{"navigation_timeout": "soon"}, setErr: true},
		{name: "unknown backend", data: map[string]interface{}{"backend": "selenium"}, invalid: "unknown browser backend"},
		{name: "cdp without url", data: map[string]interface{}{"backend": "cdp", "cdp_url": ""}, invalid: "cdp_url"},
		{name: "relative base url", data: map[string]interface{}{"base_url": "/search"}, invalid: "base_url"},
		{name: "timeout too short", data: map[string]interface{}{"navigation_timeout": "10ms"}, invalid: "navigation_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewBrowserSection()
			err := s.SetData(tt.data)
			if tt.setErr {
				if err == nil {
					t.Fatal("Expected SetData error")
				}
				return
			}
			if err != nil {
				t.Fatalf("SetData failed: %v", err)
			}

			err = s.Validate()
			if tt.invalid == "" {
				if err != nil {
					t.Errorf("Validate failed: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.invalid) {
				t.Errorf("Expected validation error containing %q, got %v", tt.invalid, err)
			}
		})
	}
}

func TestBrowserSection_DataRoundTrip(t *testing.T) {
	s := NewBrowserSection()
	if err := s.SetData(map[string]interface{}{"headless": false, "profile_dir": "/tmp/p", "navigation_timeout": "1m"}); err != nil {
		t.Fatal(err)
	}

	copied := NewBrowserSection()
	if err := copied.SetData(s.Data()); err != nil {
		t.Fatalf("SetData(Data()) failed: %v", err)
	}
	if copied.Settings() != s.Settings() {
		t.Errorf("Round trip mismatch: %+v vs %+v", copied.Settings(), s.Settings())
	}

	s.Reset()
	if got := s.Settings(); got.Headless != defaultHeadless || got.ProfileDir != "" || got.NavigationTimeout != defaultNavigationTimeout {
		t.Errorf("Reset did not restore defaults: %+v", got)
	}
}

func TestSelectionSection(t *testing.T) {
	s := NewSelectionSection()
	got := s.Settings()
	if got.SettleDelay != 800*time.Millisecond || got.ExpandDelay != 500*time.Millisecond || got.WaitTimeout != 5*time.Second || !got.EnableReasoning {
		t.Errorf("Unexpected defaults: %+v", got)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}

	if err := s.SetData(map[string]interface{}{"enable_reasoning": "no"}); err == nil {
		t.Error("Expected error for an unparsable boolean")
	}

	if err := s.SetData(map[string]interface{}{"wait_timeout": "2m"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Validate(); err == nil || !strings.Contains(err.Error(), "wait_timeout") {
		t.Errorf("Expected wait_timeout range error, got %v", err)
	}

	if err := s.SetData(map[string]interface{}{"settle_delay": "-1s", "wait_timeout": "1s"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Validate(); err == nil || !strings.Contains(err.Error(), "settle_delay") {
		t.Errorf("Expected settle_delay range error, got %v", err)
	}

	s.Reset()
	if s.Settings() != NewSelectionSection().Settings() {
		t.Error("Reset did not restore defaults")
	}
}
