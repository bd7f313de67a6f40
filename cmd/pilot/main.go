// Package main provides the pilot command line: it validates model names and
// switches the model selector of a browser-driven search app.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/entrhq/pilot/pkg/config"
	"github.com/entrhq/pilot/pkg/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	verbose    bool
}

var rootCmd = &cobra.Command{
	Use:   "pilot",
	Short: "Keep a search app's model selector in sync with the model you ask for",
	Long: "pilot validates model names against a built-in catalog and drives the\n" +
		"model dropdown of a browser-based search app through Playwright or an\n" +
		"already running Chrome (CDP).",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Initialize(rootFlags.configPath); err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Config file (default $PILOT_CONFIG or ~/.pilot/config.json)")
	pf.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Log to stderr instead of ~/.pilot/logs")

	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.Version = version
}

// newLogger returns the command's logger: stderr in verbose mode, the
// session log file otherwise.
func newLogger(cmd *cobra.Command) *logging.Logger {
	if rootFlags.verbose {
		return logging.NewWriterLogger("pilot", cmd.ErrOrStderr())
	}
	logger, err := logging.NewLogger("pilot")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
