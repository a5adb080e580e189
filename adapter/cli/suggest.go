package cli

import (
	"fmt"

	"github.com/felixgeelhaar/triage/adapter/api"
	"github.com/felixgeelhaar/triage/internal/ranking/application/queries"
	"github.com/spf13/cobra"
)

var (
	suggestStrategy string
	suggestLimit    int
	suggestOutput   string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [file]",
	Short: "Suggest which tasks to work on next",
	Long: `Rank a batch of tasks and print only the top few.

Examples:
  triage suggest tasks.json
  triage suggest --limit 1 --strategy deadline_driven tasks.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		if a.SuggestTasksHandler == nil {
			return fmt.Errorf("suggest handler not configured")
		}

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		data, err := readInput(cmd, path)
		if err != nil {
			return err
		}
		req, err := api.ParseAnalyzeRequest(data, a.DefaultStrategy())
		if err != nil {
			return err
		}
		if suggestStrategy != "" {
			req.Strategy = suggestStrategy
		}

		suggestions, err := a.SuggestTasksHandler.Handle(cmd.Context(), queries.SuggestTasksQuery{
			Tasks:    req.Tasks,
			Strategy: req.Strategy,
			Limit:    suggestLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to suggest tasks: %w", err)
		}

		if suggestOutput != OutputTable {
			return writeStructured(cmd.OutOrStdout(), suggestOutput, map[string]any{
				"strategy":    req.Strategy,
				"suggestions": suggestions,
			})
		}
		renderSuggestions(cmd.OutOrStdout(), req.Strategy, suggestions)
		return nil
	},
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestStrategy, "strategy", "s", "", "weighting strategy (overrides the input)")
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "number of suggestions (default from TRIAGE_SUGGEST_LIMIT)")
	suggestCmd.Flags().StringVarP(&suggestOutput, "output", "o", OutputTable, "output format: table, json or yaml")
	rootCmd.AddCommand(suggestCmd)
}
