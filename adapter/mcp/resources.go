package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/triage/adapter/cli"
	"github.com/felixgeelhaar/triage/internal/ranking/application/queries"
	"github.com/felixgeelhaar/triage/internal/ranking/domain"
)

type strategyInfo struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Default     bool                `json:"default"`
	Weights     domain.WeightVector `json:"weights"`
}

var strategyDescriptions = map[string]string{
	domain.StrategySmartBalance:   "Balanced mix of urgency and importance with some weight on effort and blockers",
	domain.StrategyFastestWins:    "Favors low-effort tasks to clear quick wins",
	domain.StrategyHighImpact:     "Favors importance above everything else",
	domain.StrategyDeadlineDriven: "Favors tasks with the nearest due dates",
}

// RegisterResources registers MCP resources that expose ranking data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("triage://weights").
		Name("Weights").
		Description("Effective weights for every strategy and whether they are stored or default").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.GetWeightsHandler == nil {
				return nil, fmt.Errorf("weights require initialization")
			}
			weights, err := app.GetWeightsHandler.Handle(ctx, queries.GetWeightsQuery{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, weights)
		})

	srv.Resource("triage://strategies").
		Name("Strategies").
		Description("Built-in ranking strategies with their effective weights").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			strategies, err := listStrategies(ctx, app)
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, strategies)
		})

	return nil
}

func listStrategies(ctx context.Context, app *cli.App) ([]strategyInfo, error) {
	if app == nil || app.GetWeightsHandler == nil {
		return nil, fmt.Errorf("strategies require initialization")
	}
	weights, err := app.GetWeightsHandler.Handle(ctx, queries.GetWeightsQuery{})
	if err != nil {
		return nil, err
	}
	defaultStrategy := app.DefaultStrategy()
	out := make([]strategyInfo, 0, len(weights.Strategies))
	for _, name := range weights.Strategies {
		out = append(out, strategyInfo{
			Name:        name,
			Description: strategyDescriptions[name],
			Default:     name == defaultStrategy,
			Weights:     weights.Weights[name],
		})
	}
	return out, nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	text, err := marshalContent(v)
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     text,
	}, nil
}
