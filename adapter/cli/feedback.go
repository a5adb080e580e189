package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/triage/adapter/api"
	"github.com/felixgeelhaar/triage/internal/ranking/application/commands"
	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/spf13/cobra"
)

var (
	feedbackStrategy string
	feedbackJSON     string
	feedbackOutput   string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback [signal=delta ...]",
	Short: "Tune strategy weights with additive feedback",
	Long: `Add deltas to strategy weights. Each touched strategy is floored at
zero and renormalized to sum to 1.0; later rankings use the new weights.

Adjustments are signal=delta pairs for --strategy, or strategy.signal=delta
to address a strategy directly. --json accepts the HTTP feedback body.

Examples:
  triage feedback urgency=0.05 importance=-0.02
  triage feedback --strategy fastest_wins effort=0.1
  triage feedback high_impact.dependency=0.05
  triage feedback --json '{"adjustments": {"smart_balance": {"urgency": 0.05}}}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		if a.SubmitFeedbackHandler == nil {
			return fmt.Errorf("feedback handler not configured")
		}

		strategy := feedbackStrategy
		if strategy == "" {
			strategy = a.DefaultStrategy()
		}

		var adjustments domain.Adjustments
		switch {
		case feedbackJSON != "" && len(args) > 0:
			return errors.New("pass either --json or signal=delta arguments, not both")
		case feedbackJSON != "":
			adjustments, err = api.ParseFeedbackRequest([]byte(feedbackJSON), strategy)
		default:
			adjustments, err = ParseAdjustmentArgs(args, strategy)
		}
		if err != nil {
			return err
		}

		result, err := a.SubmitFeedbackHandler.Handle(cmd.Context(), commands.SubmitFeedbackCommand{
			Adjustments: adjustments,
		})
		if err != nil {
			return fmt.Errorf("failed to apply feedback: %w", err)
		}

		if feedbackOutput != OutputTable {
			return writeStructured(cmd.OutOrStdout(), feedbackOutput, result)
		}
		touched := make(map[string]domain.WeightVector, len(adjustments))
		for name := range adjustments {
			touched[name] = result.Weights[name]
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Weights updated.")
		renderWeights(cmd.OutOrStdout(), "", touched)
		return nil
	},
}

// ParseAdjustmentArgs turns signal=delta and strategy.signal=delta pairs
// into adjustments. Bare signals apply to strategy.
func ParseAdjustmentArgs(args []string, strategy string) (domain.Adjustments, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: at least one signal=delta is required", api.ErrInvalidPayload)
	}
	adjustments := make(domain.Adjustments)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not signal=delta", api.ErrInvalidPayload, arg)
		}
		target := strategy
		signal := key
		if s, sig, nested := strings.Cut(key, "."); nested {
			target, signal = s, sig
		}
		delta, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(delta) || math.IsInf(delta, 0) {
			return nil, fmt.Errorf("%w: %q is not a number", api.ErrInvalidPayload, value)
		}
		if adjustments[target] == nil {
			adjustments[target] = make(map[domain.Signal]float64)
		}
		adjustments[target][domain.Signal(strings.ToLower(strings.TrimSpace(signal)))] += delta
	}
	return adjustments, nil
}

func init() {
	feedbackCmd.Flags().StringVarP(&feedbackStrategy, "strategy", "s", "", "strategy for bare signal=delta pairs")
	feedbackCmd.Flags().StringVar(&feedbackJSON, "json", "", "feedback body as JSON")
	feedbackCmd.Flags().StringVarP(&feedbackOutput, "output", "o", OutputTable, "output format: table, json or yaml")
	rootCmd.AddCommand(feedbackCmd)
}
