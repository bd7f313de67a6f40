package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/pilot/pkg/models"
)

var validateFlags outputFormat

var validateCmd = &cobra.Command{
	Use:   "validate <name>",
	Short: "Show which catalog model a name resolves to",
	Long: "validate prints the canonical model a name resolves to and why.\n" +
		"Unknown and generic names fall back to the default model.",
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateFlags.register(validateCmd.Flags())
	validateCmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

// validation is the printable result of one validate call.
type validation struct {
	Input     string        `json:"input" yaml:"input"`
	Canonical string        `json:"canonical_name" yaml:"canonical_name"`
	Reason    models.Reason `json:"reason" yaml:"reason"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	var raw string
	if len(args) == 1 {
		raw = args[0]
	}

	logger := newLogger(cmd)
	defer logger.Close()

	v := models.NewValidator(models.Builtin(), models.WithLogger(logger))
	m, reason := v.Validate(raw)
	res := validation{Input: raw, Canonical: m.Name, Reason: reason}

	out := cmd.OutOrStdout()
	if ok, err := validateFlags.encode(out, res); ok {
		return err
	}
	_, err := fmt.Fprintf(out, "%s (%s)\n", res.Canonical, res.Reason)
	return err
}
