package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/pilot/pkg/config"
)

var selectFlags struct {
	browser browserFlags
	format  outputFormat
	model   string
	strict  bool
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Open the app and switch its model selector",
	Args:  cobra.NoArgs,
	RunE:  runSelect,
}

func init() {
	f := selectCmd.Flags()
	selectFlags.browser.register(f)
	selectFlags.format.register(f)
	f.StringVarP(&selectFlags.model, "model", "m", "", "Model to select (default: selection.model, then the catalog default)")
	f.BoolVar(&selectFlags.strict, "strict", false, "Exit non-zero when the switch is not verified")
	selectCmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

func runSelect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cli := selectFlags.browser.overrides(cmd)
	cli.Model = selectFlags.model

	settings, err := config.Resolve(cli)
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

	out := engine.Sync(ctx, session.Page(), settings.Selection.Model)
	if err := printOutcome(cmd.OutOrStdout(), &selectFlags.format, out); err != nil {
		return err
	}
	if selectFlags.strict && !out.Verified {
		return fmt.Errorf("model %s was not verified in the page", out.CanonicalName)
	}
	return nil
}
