package mcp

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/triage/adapter/api"
	"github.com/felixgeelhaar/triage/adapter/cli"
	"github.com/felixgeelhaar/triage/internal/app"
	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/felixgeelhaar/triage/internal/ranking/infrastructure/persistence"
	"github.com/felixgeelhaar/triage/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*cli.App, *persistence.MemoryWeightStore) {
	t.Helper()
	store := persistence.NewMemoryWeightStore()
	cfg := &config.Config{
		AppEnv:          "test",
		WeightStore:     config.StoreMemory,
		DefaultStrategy: domain.StrategySmartBalance,
	}
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	container := app.NewContainerWithStore(cfg, store, nil,
		app.WithClock(func() time.Time { return now }))
	t.Cleanup(container.Close)

	cliApp := cli.NewApp(
		container.AnalyzeTasksHandler,
		container.SuggestTasksHandler,
		container.GetWeightsHandler,
		container.SubmitFeedbackHandler,
	)
	cliApp.SetHealth(container.Health)
	cliApp.SetConfig(cfg)
	return cliApp, store
}

func sampleTasks() []map[string]any {
	return []map[string]any{
		{"id": 1, "title": "Write report", "due_date": "2026-11-30", "importance": 3},
		{"id": 2, "title": "Fix outage", "due_date": "2026-10-20", "importance": "9"},
		{"id": 3, "title": "Deploy fix", "estimated_hours": 1, "dependencies": []any{2}},
	}
}

func TestRegisterCLITools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	cliApp, _ := newTestApp(t)
	require.NoError(t, RegisterCLITools(srv, ToolDependencies{App: cliApp}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[any]bool, len(tools))
	for _, tool := range tools {
		names[tool["name"]] = true
	}
	for _, want := range []string{"cli.health", "cli.version", "ranking.analyze", "ranking.suggest", "ranking.feedback", "ranking.weights"} {
		assert.True(t, names[want], "%s tool should be registered", want)
	}
}

func TestRegisterCLITools_RequiresDependencies(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})

	assert.Error(t, RegisterCLITools(nil, ToolDependencies{App: &cli.App{}}))
	assert.Error(t, RegisterCLITools(srv, ToolDependencies{}))
	assert.Error(t, RegisterResources(nil, ToolDependencies{}))
	assert.Error(t, RegisterPrompts(nil, ToolDependencies{}))
}

func TestAnalyzeTasks(t *testing.T) {
	cliApp, _ := newTestApp(t)

	result, err := analyzeTasks(context.Background(), cliApp, analyzeInput{Tasks: sampleTasks()})
	require.NoError(t, err)

	assert.Equal(t, domain.StrategySmartBalance, result.Strategy)
	assert.Equal(t, "2026-10-19", result.Today)
	require.Len(t, result.Tasks, 3)
	assert.Equal(t, "2", result.Tasks[0].ID)
	assert.Contains(t, result.Tasks[0].Reason, "Blocks:1 tasks")
}

func TestAnalyzeTasks_Cycle(t *testing.T) {
	cliApp, _ := newTestApp(t)

	result, err := analyzeTasks(context.Background(), cliApp, analyzeInput{
		Tasks: []map[string]any{
			{"id": "a", "dependencies": []any{"b"}},
			{"id": "b", "dependencies": []any{"a"}},
		},
		Strategy: domain.StrategyHighImpact,
	})
	require.NoError(t, err)

	assert.True(t, result.CycleDetected)
	for _, task := range result.Tasks {
		assert.Equal(t, 100.0, task.Score)
	}
}

func TestAnalyzeTasks_NotConfigured(t *testing.T) {
	_, err := analyzeTasks(context.Background(), &cli.App{}, analyzeInput{})
	assert.Error(t, err)
	_, err = suggestTasks(context.Background(), nil, suggestInput{})
	assert.Error(t, err)
	_, err = submitFeedback(context.Background(), &cli.App{}, feedbackInput{})
	assert.Error(t, err)
}

func TestSuggestTasks(t *testing.T) {
	cliApp, _ := newTestApp(t)

	out, err := suggestTasks(context.Background(), cliApp, suggestInput{
		Tasks:    sampleTasks(),
		Strategy: domain.StrategyDeadlineDriven,
		Limit:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyDeadlineDriven, out.Strategy)
	require.Len(t, out.Suggestions, 1)
	assert.Equal(t, "Fix outage", out.Suggestions[0].Title)
}

func TestSuggestTasks_EmptyBatch(t *testing.T) {
	cliApp, _ := newTestApp(t)

	out, err := suggestTasks(context.Background(), cliApp, suggestInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Suggestions)
}

func TestSubmitFeedback(t *testing.T) {
	cliApp, store := newTestApp(t)

	result, err := submitFeedback(context.Background(), cliApp, feedbackInput{
		Adjustments: map[string]any{"urgency": 0.1},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.45/1.1, result.Weights[domain.StrategySmartBalance][domain.SignalUrgency], 1e-9)

	_, err = submitFeedback(context.Background(), cliApp, feedbackInput{
		Adjustments: map[string]any{
			domain.StrategyHighImpact: map[string]any{"importance": "-0.2"},
		},
	})
	require.NoError(t, err)

	cfg, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.5/0.8, cfg.Weights[domain.StrategyHighImpact][domain.SignalImportance], 1e-9)
	assert.InDelta(t, 0.45/1.1, cfg.Weights[domain.StrategySmartBalance][domain.SignalUrgency], 1e-9)
}

func TestSubmitFeedback_Invalid(t *testing.T) {
	cliApp, store := newTestApp(t)

	_, err := submitFeedback(context.Background(), cliApp, feedbackInput{})
	assert.ErrorIs(t, err, api.ErrInvalidPayload)

	_, err = submitFeedback(context.Background(), cliApp, feedbackInput{
		Adjustments: map[string]any{"urgency": "soon"},
	})
	assert.ErrorIs(t, err, api.ErrInvalidPayload)

	_, err = submitFeedback(context.Background(), cliApp, feedbackInput{
		Adjustments: map[string]any{"urgency": 0.1, "mood": 0.1},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustment)

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestHealthStatus(t *testing.T) {
	cliApp, _ := newTestApp(t)

	status, err := healthStatus(context.Background(), cliApp)
	require.NoError(t, err)
	assert.Equal(t, "healthy", status["status"])
	assert.Equal(t, map[string]string{"weight_store": "healthy"}, status["checks"])

	_, err = healthStatus(context.Background(), nil)
	assert.Error(t, err)
}

func TestListStrategies(t *testing.T) {
	cliApp, _ := newTestApp(t)

	strategies, err := listStrategies(context.Background(), cliApp)
	require.NoError(t, err)
	require.Len(t, strategies, 4)

	defaults := 0
	for _, s := range strategies {
		assert.NotEmpty(t, s.Description, s.Name)
		assert.InDelta(t, 1.0, s.Weights.Sum(), 1e-9)
		if s.Default {
			defaults++
			assert.Equal(t, domain.StrategySmartBalance, s.Name)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestPrompts(t *testing.T) {
	prioritize := prioritizePrompt(map[string]string{"tasks": "ship release", "strategy": "high_impact"})
	require.Len(t, prioritize.Messages, 1)
	text := fmt.Sprintf("%v", prioritize.Messages[0].Content)
	assert.Contains(t, text, "ship release")
	assert.Contains(t, text, `strategy "high_impact"`)

	tune := tunePrompt(map[string]string{})
	require.Len(t, tune.Messages, 1)
	text = fmt.Sprintf("%v", tune.Messages[0].Content)
	assert.Contains(t, text, "triage://weights")
	assert.Contains(t, text, "ranking.feedback")
}
