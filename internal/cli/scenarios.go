package cli

import (
	"github.com/spf13/cobra"

	"dynapipe/internal/output"
	"dynapipe/internal/scenario"
)

func newScenariosCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the pipeline scenarios in build order",
		Long: `List the scenarios dynapipe can add to the pipeline.

Scenarios are always added in this order, whatever order the flags are given in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []output.Item
			for _, s := range scenario.Scenarios() {
				items = append(items, output.Item{Name: s.Name, Description: s.Description})
			}
			output.NewPrinterWithWriter(cmd.OutOrStdout()).ScenarioList(items)
			return nil
		},
	}
}
