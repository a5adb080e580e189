package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/triage/adapter/cli"
	"github.com/felixgeelhaar/triage/internal/ranking/application/commands"
	"github.com/felixgeelhaar/triage/internal/ranking/application/queries"
)

type analyzeInput struct {
	Tasks    []map[string]any `json:"tasks" jsonschema:"required"`
	Strategy string           `json:"strategy,omitempty"`
}

type suggestInput struct {
	Tasks    []map[string]any `json:"tasks" jsonschema:"required"`
	Strategy string           `json:"strategy,omitempty"`
	Limit    int              `json:"limit,omitempty"`
}

type feedbackInput struct {
	Strategy    string         `json:"strategy,omitempty"`
	Adjustments map[string]any `json:"adjustments" jsonschema:"required"`
}

type suggestOutput struct {
	Strategy    string                  `json:"strategy"`
	Suggestions []queries.SuggestionDTO `json:"suggestions"`
}

func registerRankingTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("ranking.analyze").
		Description("Score and rank a batch of tasks. Tasks carry id, title, due_date (YYYY-MM-DD), estimated_hours, importance (1-10) and dependencies. Strategies: smart_balance, fastest_wins, high_impact, deadline_driven").
		Handler(func(ctx context.Context, input analyzeInput) (*queries.AnalysisDTO, error) {
			return analyzeTasks(ctx, app, input)
		})

	srv.Tool("ranking.suggest").
		Description("Suggest the top tasks to work on next").
		Handler(func(ctx context.Context, input suggestInput) (*suggestOutput, error) {
			return suggestTasks(ctx, app, input)
		})

	srv.Tool("ranking.feedback").
		Description(`Adjust strategy weights. Adjustments are flat signal deltas ({"urgency": 0.05}) for strategy, or keyed by strategy ({"high_impact": {"importance": -0.1}})`).
		Handler(func(ctx context.Context, input feedbackInput) (*commands.SubmitFeedbackResult, error) {
			return submitFeedback(ctx, app, input)
		})

	srv.Tool("ranking.weights").
		Description("Show the effective weights for every strategy").
		Handler(func(ctx context.Context, input struct{}) (*queries.WeightsDTO, error) {
			if app == nil || app.GetWeightsHandler == nil {
				return nil, errors.New("weights handler not configured")
			}
			return app.GetWeightsHandler.Handle(ctx, queries.GetWeightsQuery{})
		})

	return nil
}

func analyzeTasks(ctx context.Context, app *cli.App, input analyzeInput) (*queries.AnalysisDTO, error) {
	if app == nil || app.AnalyzeTasksHandler == nil {
		return nil, errors.New("analyze handler not configured")
	}
	req, err := decodeTasks(input.Tasks, strings.TrimSpace(input.Strategy), app.DefaultStrategy())
	if err != nil {
		return nil, err
	}
	return app.AnalyzeTasksHandler.Handle(ctx, queries.AnalyzeTasksQuery{
		Tasks:    req.Tasks,
		Strategy: req.Strategy,
	})
}

func suggestTasks(ctx context.Context, app *cli.App, input suggestInput) (*suggestOutput, error) {
	if app == nil || app.SuggestTasksHandler == nil {
		return nil, errors.New("suggest handler not configured")
	}
	req, err := decodeTasks(input.Tasks, strings.TrimSpace(input.Strategy), app.DefaultStrategy())
	if err != nil {
		return nil, err
	}
	suggestions, err := app.SuggestTasksHandler.Handle(ctx, queries.SuggestTasksQuery{
		Tasks:    req.Tasks,
		Strategy: req.Strategy,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &suggestOutput{Strategy: req.Strategy, Suggestions: suggestions}, nil
}

func submitFeedback(ctx context.Context, app *cli.App, input feedbackInput) (*commands.SubmitFeedbackResult, error) {
	if app == nil || app.SubmitFeedbackHandler == nil {
		return nil, errors.New("feedback handler not configured")
	}
	strategy := strings.TrimSpace(input.Strategy)
	if strategy == "" {
		strategy = app.DefaultStrategy()
	}
	adjustments, err := decodeAdjustments(input.Adjustments, strategy)
	if err != nil {
		return nil, err
	}
	return app.SubmitFeedbackHandler.Handle(ctx, commands.SubmitFeedbackCommand{
		Adjustments: adjustments,
	})
}
