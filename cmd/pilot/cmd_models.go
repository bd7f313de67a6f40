package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/entrhq/pilot/pkg/models"
)

var modelsFlags outputFormat

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the model catalog",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	modelsFlags.register(modelsCmd.Flags())
	modelsCmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

func runModels(cmd *cobra.Command, _ []string) error {
	all := models.Builtin().All()
	out := cmd.OutOrStdout()
	if ok, err := modelsFlags.encode(out, all); ok {
		return err
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "DISPLAY", "FAMILY", "REASONING", "DEFAULT").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, m := range all {
		t.Row(m.Name, m.DisplayName, m.Family, yesNo(m.SupportsReasoning), yesNo(m.IsDefault))
	}
	_, err := fmt.Fprintln(out, t.Render())
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
