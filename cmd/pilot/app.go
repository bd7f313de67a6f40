package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/logging"
	"github.com/entrhq/pilot/pkg/models"
	"github.com/entrhq/pilot/pkg/selection"
	"github.com/entrhq/pilot/pkg/tools/browser"
)

// browserFlags are shared by every command that opens a page.
type browserFlags struct {
	backend    string
	headless   bool
	profileDir string
	cdpURL     string
	url        string
	noReason   bool
}

func (f *browserFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.backend, "backend", "", "Browser backend: playwright or cdp")
	fs.BoolVar(&f.headless, "headless", true, "Run a launched browser without a window")
	fs.StringVar(&f.profileDir, "profile-dir", "", "Persistent browser profile directory")
	fs.StringVar(&f.cdpURL, "cdp-url", "", "DevTools endpoint of a running Chrome")
	fs.StringVar(&f.url, "url", "", "Page to open (default: configured base_url)")
	fs.BoolVar(&f.noReason, "no-reasoning", false, "Leave the reasoning toggle alone")
}

// overrides converts the flags the user actually set.
func (f *browserFlags) overrides(cmd *cobra.Command) config.Overrides {
	o := config.Overrides{
		Backend:    f.backend,
		ProfileDir: f.profileDir,
		CDPURL:     f.cdpURL,
		BaseURL:    f.url,
	}
	if cmd.Flags().Changed("headless") {
		o.Headless = &f.headless
	}
	if f.noReason {
		disabled := false
		o.EnableReasoning = &disabled
	}
	return o
}

// newEngine builds a selection engine from resolved settings.
func newEngine(s config.SelectionSettings, logger *logging.Logger, extra ...selection.Option) (*selection.Engine, error) {
	v := models.NewValidator(models.Builtin(), models.WithLogger(logger))
	opts := []selection.Option{
		selection.WithLogger(logger),
		selection.WithSettleDelay(s.SettleDelay),
		selection.WithExpandDelay(s.ExpandDelay),
		selection.WithWaitTimeout(s.WaitTimeout),
		selection.WithReasoning(s.EnableReasoning),
	}
	return selection.NewEngine(v, append(opts, extra...)...)
}

// openPage starts a browser session and navigates it to the configured page.
// The caller must Shutdown the returned manager.
func openPage(ctx context.Context, s config.Settings, logger *logging.Logger) (*browser.SessionManager, *browser.Session, error) {
	if s.Browser.BaseURL == "" {
		return nil, nil, fmt.Errorf("no page to open: pass --url or set browser.base_url")
	}

	manager := browser.NewSessionManager(browser.WithManagerLogger(logger), browser.WithMaxSessions(1))
	session, err := manager.StartSession(ctx, "pilot", browser.OptionsFromSettings(s))
	if err != nil {
		_ = manager.Shutdown()
		return nil, nil, err
	}
	if err := session.Navigate(ctx, s.Browser.BaseURL, s.Browser.NavigationTimeout); err != nil {
		_ = manager.Shutdown()
		return nil, nil, err
	}
	return manager, session, nil
}

// outputFormat selects how results are printed.
type outputFormat struct {
	json bool
	yaml bool
}

func (f *outputFormat) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.json, "json", false, "Print JSON")
	fs.BoolVar(&f.yaml, "yaml", false, "Print YAML")
}

// encode writes v as JSON or YAML, highlighted when w is a terminal. It
// reports false when neither was requested.
func (f *outputFormat) encode(w io.Writer, v interface{}) (bool, error) {
	var (
		buf      bytes.Buffer
		language string
	)
	switch {
	case f.json:
		language = "json"
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return true, err
		}
	case f.yaml:
		language = "yaml"
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		if err := enc.Close(); err != nil {
			return true, err
		}
	default:
		return false, nil
	}
	if colorOutput(w) {
		return true, highlight(w, buf.String(), language)
	}
	_, err := buf.WriteTo(w)
	return true, err
}

// printOutcome writes one selection result.
func printOutcome(w io.Writer, format *outputFormat, out selection.SelectionOutcome) error {
	if ok, err := format.encode(w, out); ok {
		return err
	}
	_, err := fmt.Fprintln(w, browser.FormatOutcome(out))
	return err
}
