package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/models"
	"github.com/entrhq/pilot/pkg/picker"
)

var pickFlags struct {
	browser browserFlags
	format  outputFormat
	copy    bool
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose a model interactively, then select it",
	Long: "pick shows the model catalog in a terminal list. Without a page to open\n" +
		"(--url or browser.base_url) it prints the chosen model name.",
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	f := pickCmd.Flags()
	pickFlags.browser.register(f)
	pickFlags.format.register(f)
	f.BoolVar(&pickFlags.copy, "copy", false, "Copy the chosen model name to the clipboard")
	pickCmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

func runPick(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	settings, err := config.Resolve(pickFlags.browser.overrides(cmd))
	if err != nil {
		return err
	}

	current := models.NewValidator(models.Builtin()).GetValidatedModel(settings.Selection.Model)
	// The list renders on stderr so stdout stays usable in pipes.
	chosen, ok, err := picker.Run(ctx, models.Builtin(), current,
		tea.WithOutput(cmd.ErrOrStderr()), tea.WithAltScreen())
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), "No model selected.")
		return nil
	}
	if pickFlags.copy {
		if err := clipboard.WriteAll(chosen.Name); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to copy to clipboard: %v\n", err)
		}
	}

	if settings.Browser.BaseURL == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), chosen.Name)
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

	return printOutcome(cmd.OutOrStdout(), &pickFlags.format, engine.Sync(ctx, session.Page(), chosen.Name))
}
