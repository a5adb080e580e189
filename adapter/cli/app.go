package cli

import (
	"github.com/felixgeelhaar/triage/internal/ranking/application/commands"
	"github.com/felixgeelhaar/triage/internal/ranking/application/queries"
	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/felixgeelhaar/triage/pkg/config"
	"github.com/felixgeelhaar/triage/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	// Query Handlers
	AnalyzeTasksHandler *queries.AnalyzeTasksHandler
	SuggestTasksHandler *queries.SuggestTasksHandler
	GetWeightsHandler   *queries.GetWeightsHandler

	// Command Handlers
	SubmitFeedbackHandler *commands.SubmitFeedbackHandler

	// Health checks for the serve command
	Health *observability.HealthRegistry

	// Config the app was built from
	Config *config.Config
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	analyzeTasksHandler *queries.AnalyzeTasksHandler,
	suggestTasksHandler *queries.SuggestTasksHandler,
	getWeightsHandler *queries.GetWeightsHandler,
	submitFeedbackHandler *commands.SubmitFeedbackHandler,
) *App {
	return &App{
		AnalyzeTasksHandler:   analyzeTasksHandler,
		SuggestTasksHandler:   suggestTasksHandler,
		GetWeightsHandler:     getWeightsHandler,
		SubmitFeedbackHandler: submitFeedbackHandler,
	}
}

// SetHealth updates the health registry.
func (a *App) SetHealth(health *observability.HealthRegistry) {
	a.Health = health
}

// SetConfig updates the configuration.
func (a *App) SetConfig(cfg *config.Config) {
	a.Config = cfg
}

// DefaultStrategy returns the configured default strategy.
func (a *App) DefaultStrategy() string {
	if a.Config != nil && a.Config.DefaultStrategy != "" {
		return a.Config.DefaultStrategy
	}
	return domain.DefaultStrategy
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
