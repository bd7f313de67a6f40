package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/selection"
	"github.com/entrhq/pilot/pkg/snapshot"
	"github.com/entrhq/pilot/pkg/tools/browser"
)

var inspectFlags struct {
	html   string
	model  string
	format outputFormat
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dry-run detection and selection against a saved page",
	Long: "inspect loads an HTML snapshot of the app (for example saved with the\n" +
		"browser's \"Save page as\") and reports which controls pilot detects.\n" +
		"With --model it also runs the selection and lists the clicks it would make.",
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&inspectFlags.html, "html", "", "Saved HTML page (required)")
	f.StringVarP(&inspectFlags.model, "model", "m", "", "Model to dry-run a selection for")
	inspectFlags.format.register(f)
	_ = inspectCmd.MarkFlagRequired("html")
	inspectCmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

// inspection is the printable result of inspect.
type inspection struct {
	Available          bool                        `json:"available" yaml:"available"`
	ActiveText         string                      `json:"active_text,omitempty" yaml:"active_text,omitempty"`
	MoreAffordance     bool                        `json:"more_affordance" yaml:"more_affordance"`
	HasReasoningToggle bool                        `json:"reasoning_toggle" yaml:"reasoning_toggle"`
	PortalMenu         bool                        `json:"portal_menu" yaml:"portal_menu"`
	Locale             string                      `json:"locale,omitempty" yaml:"locale,omitempty"`
	Outcome            *selection.SelectionOutcome `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Clicks             []string                    `json:"clicks,omitempty" yaml:"clicks,omitempty"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	page, err := snapshot.Load(inspectFlags.html)
	if err != nil {
		return err
	}

	settings, err := config.Resolve(config.Overrides{})
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer logger.Close()

	// A snapshot never changes on its own, so waiting is pointless.
	noWait := func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	engine, err := newEngine(settings.Selection, logger, selection.WithSleep(noWait))
	if err != nil {
		return err
	}

	caps := engine.Probe(ctx, page)
	res := inspection{
		Available:          caps.Available(),
		ActiveText:         caps.ActiveText,
		MoreAffordance:     caps.HasMoreAffordance(),
		HasReasoningToggle: caps.HasReasoningToggle,
		PortalMenu:         caps.PortalMenu,
		Locale:             caps.Locale,
	}
	if inspectFlags.model != "" {
		out := engine.Sync(ctx, page, inspectFlags.model)
		res.Outcome = &out
		res.Clicks = page.Clicks()
	}

	w := cmd.OutOrStdout()
	if ok, err := inspectFlags.format.encode(w, res); ok {
		return err
	}

	fmt.Fprintf(w, "Model selector:   %s\n", found(res.Available))
	if res.ActiveText != "" {
		fmt.Fprintf(w, "Active model:     %s\n", res.ActiveText)
	}
	fmt.Fprintf(w, "More affordance:  %s\n", found(res.MoreAffordance))
	fmt.Fprintf(w, "Reasoning toggle: %s\n", found(res.HasReasoningToggle))
	fmt.Fprintf(w, "Portal menu:      %s\n", found(res.PortalMenu))
	if res.Locale != "" {
		fmt.Fprintf(w, "Locale:           %s\n", res.Locale)
	}
	if res.Outcome != nil {
		fmt.Fprintf(w, "\n%s\n", browser.FormatOutcome(*res.Outcome))
		for i, c := range res.Clicks {
			fmt.Fprintf(w, "  click %d: %s\n", i+1, c)
		}
	}
	return nil
}

func found(b bool) string {
	if b {
		return "found"
	}
	return "not found"
}
