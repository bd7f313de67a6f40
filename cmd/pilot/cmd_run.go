package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/selection"
)

var runFlags struct {
	browser browserFlags
	format  outputFormat
	file    string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Select each model of a YAML run profile in turn",
	Long: `run opens the profile's page once and selects every listed model in order.

Example run.yaml:

  url: https://chat.example.com/
  models: [gpt-5.1, claude-opus-4.6]
  browser:
    backend: cdp
  selection:
    settle_delay: 1s`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.file, "file", "f", "", "Run profile (required)")
	runFlags.browser.register(f)
	runFlags.format.register(f)
	_ = runCmd.MarkFlagRequired("file")
	runCmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	profile, err := config.LoadRunProfile(runFlags.file)
	if err != nil {
		return err
	}
	settings, err := config.Resolve(runFlags.browser.overrides(cmd), profile.Layer())
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer logger.Close()

	engine, err := newEngine(settings.Selection, logger)
	if err != nil {
		return err
	}
	manager, session, err := openPage(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer manager.Shutdown()

	outcomes := make([]selection.SelectionOutcome, 0, len(profile.Models))
	failed := 0
	for _, name := range profile.Models {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := engine.Sync(ctx, session.Page(), name)
		if !out.Switched {
			failed++
		}
		outcomes = append(outcomes, out)
		if !runFlags.format.json && !runFlags.format.yaml {
			if err := printOutcome(cmd.OutOrStdout(), &runFlags.format, out); err != nil {
				return err
			}
		}
	}
	if _, err := runFlags.format.encode(cmd.OutOrStdout(), outcomes); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d selections did not switch", failed, len(outcomes))
	}
	return nil
}
