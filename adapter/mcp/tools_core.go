package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/triage/adapter/cli"
	"github.com/felixgeelhaar/triage/pkg/observability"
)

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("cli.health").
		Description("Check weight store and wiring health").
		Handler(func(ctx context.Context, input struct{}) (map[string]any, error) {
			return healthStatus(ctx, app)
		})

	srv.Tool("cli.version").
		Description("Get CLI version information").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			return map[string]string{
				"version":   cli.Version,
				"commit":    cli.Commit,
				"buildDate": cli.BuildDate,
			}, nil
		})

	return nil
}

func healthStatus(ctx context.Context, app *cli.App) (map[string]any, error) {
	if app == nil {
		return nil, errors.New("app not initialized")
	}
	if app.Health == nil {
		return map[string]any{"status": string(observability.HealthStatusHealthy)}, nil
	}
	health := app.Health.Check(ctx)
	checks := make(map[string]string, len(health.Checks))
	for name, check := range health.Checks {
		checks[name] = string(check.Status)
	}
	return map[string]any{
		"status": string(health.Status),
		"checks": checks,
	}, nil
}
