package mcp

import (
	"github.com/felixgeelhaar/triage/adapter/cli"
	"github.com/felixgeelhaar/triage/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container) *cli.App {
	cliApp := cli.NewApp(
		container.AnalyzeTasksHandler,
		container.SuggestTasksHandler,
		container.GetWeightsHandler,
		container.SubmitFeedbackHandler,
	)

	if container.Health != nil {
		cliApp.SetHealth(container.Health)
	}
	if container.Config != nil {
		cliApp.SetConfig(container.Config)
	}

	return cliApp
}
