package cli

import (
	"fmt"

	"github.com/felixgeelhaar/triage/internal/ranking/application/queries"
	"github.com/spf13/cobra"
)

var weightsOutput string

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show the effective strategy weights",
	Long: `Show the weights every ranking currently uses. The source is "stored"
when the weight store holds a configuration and "default" otherwise.

Examples:
  triage weights
  triage weights -o yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		if a.GetWeightsHandler == nil {
			return fmt.Errorf("weights handler not configured")
		}

		result, err := a.GetWeightsHandler.Handle(cmd.Context(), queries.GetWeightsQuery{})
		if err != nil {
			return fmt.Errorf("failed to load weights: %w", err)
		}

		if weightsOutput != OutputTable {
			return writeStructured(cmd.OutOrStdout(), weightsOutput, result)
		}
		renderWeights(cmd.OutOrStdout(), result.Source, result.Weights)
		return nil
	},
}

func init() {
	weightsCmd.Flags().StringVarP(&weightsOutput, "output", "o", OutputTable, "output format: table, json or yaml")
	rootCmd.AddCommand(weightsCmd)
}
