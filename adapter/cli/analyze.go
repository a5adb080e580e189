package cli

import (
	"fmt"

	"github.com/felixgeelhaar/triage/adapter/api"
	"github.com/felixgeelhaar/triage/internal/ranking/application/queries"
	"github.com/spf13/cobra"
)

var (
	analyzeStrategy string
	analyzeOutput   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Rank a batch of tasks",
	Long: `Rank a batch of tasks read from a JSON file or stdin.

The input is either an array of tasks or {"tasks": [...], "strategy": "..."}.
Each task may carry id, title, due_date (YYYY-MM-DD), estimated_hours,
importance (1-10) and dependencies (ids of tasks it waits on).

Strategies: smart_balance, fastest_wins, high_impact, deadline_driven.

Examples:
  triage analyze tasks.json
  triage analyze --strategy high_impact tasks.json
  cat tasks.json | triage analyze -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		if a.AnalyzeTasksHandler == nil {
			return fmt.Errorf("analyze handler not configured")
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
		if analyzeStrategy != "" {
			req.Strategy = analyzeStrategy
		}

		result, err := a.AnalyzeTasksHandler.Handle(cmd.Context(), queries.AnalyzeTasksQuery{
			Tasks:    req.Tasks,
			Strategy: req.Strategy,
		})
		if err != nil {
			return fmt.Errorf("failed to analyze tasks: %w", err)
		}

		if analyzeOutput != OutputTable {
			return writeStructured(cmd.OutOrStdout(), analyzeOutput, result)
		}
		renderAnalysis(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeStrategy, "strategy", "s", "", "weighting strategy (overrides the input)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", OutputTable, "output format: table, json or yaml")
	rootCmd.AddCommand(analyzeCmd)
}
