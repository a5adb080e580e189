package queries

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/triage/internal/ranking/application/services"
	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/felixgeelhaar/triage/internal/shared/application"
	"github.com/felixgeelhaar/triage/pkg/observability"
)

// WeightResolver returns the weight vector for a strategy.
type WeightResolver interface {
	Resolve(ctx context.Context, strategy string) domain.WeightVector
}

// ScoredTaskDTO is a data transfer object for a ranked task.
type ScoredTaskDTO struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	DueDate        *string              `json:"due_date"`
	EstimatedHours float64              `json:"estimated_hours"`
	Importance     int                  `json:"importance"`
	Dependencies   []string             `json:"dependencies"`
	Score          float64              `json:"score"`
	Reason         string               `json:"reason"`
	Signals        *domain.SignalScores `json:"signals,omitempty"`
	Quadrant       string               `json:"quadrant,omitempty"`
	QuadrantLabel  string               `json:"quadrant_label,omitempty"`
}

// AnalysisDTO is the ranked batch.
type AnalysisDTO struct {
	Strategy      string              `json:"strategy"`
	Weights       domain.WeightVector `json:"weights"`
	Today         string              `json:"today"`
	CycleDetected bool                `json:"cycle_detected"`
	Cycle         []string            `json:"cycle,omitempty"`
	Tasks         []ScoredTaskDTO     `json:"tasks"`
}

// AnalyzeTasksQuery contains the parameters for ranking a batch.
type AnalyzeTasksQuery struct {
	Tasks    []domain.TaskInput
	Strategy string
}

// QueryName returns the query name.
func (AnalyzeTasksQuery) QueryName() string { return "ranking.analyze" }

var _ application.QueryHandler[AnalyzeTasksQuery, *AnalysisDTO] = (*AnalyzeTasksHandler)(nil)

// AnalyzeTasksHandler handles the AnalyzeTasksQuery.
type AnalyzeTasksHandler struct {
	weights WeightResolver
	engine  *services.ScoringEngine
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewAnalyzeTasksHandler creates a new AnalyzeTasksHandler.
func NewAnalyzeTasksHandler(
	weights WeightResolver,
	engine *services.ScoringEngine,
	logger *slog.Logger,
	metrics observability.Metrics,
) *AnalyzeTasksHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &AnalyzeTasksHandler{
		weights: weights,
		engine:  engine,
		logger:  observability.LogOperation(logger, AnalyzeTasksQuery{}.QueryName()),
		metrics: metrics,
	}
}

// Handle executes the AnalyzeTasksQuery.
func (h *AnalyzeTasksHandler) Handle(ctx context.Context, query AnalyzeTasksQuery) (*AnalysisDTO, error) {
	strategy := query.Strategy
	if strategy == "" {
		strategy = domain.DefaultStrategy
	}
	tags := []observability.Tag{observability.T(observability.StrategyKey, strategy)}
	timer := observability.StartTimer(observability.MetricAnalyzeDuration).
		WithMetrics(h.metrics).
		WithTags(tags...)
	defer timer.Stop()

	tasks := domain.Sanitize(query.Tasks)
	weights := h.weights.Resolve(ctx, strategy)
	result := h.engine.Rank(tasks, weights)

	h.metrics.Counter(observability.MetricAnalyzeTotal, 1, tags...)
	h.metrics.Counter(observability.MetricAnalyzeTasks, int64(len(tasks)), tags...)
	if result.CycleDetected {
		h.metrics.Counter(observability.MetricAnalyzeCycles, 1, tags...)
		h.logger.InfoContext(ctx, "dependency cycle detected",
			observability.StrategyKey, strategy,
			"cycle", result.Cycle,
		)
	}
	h.logger.DebugContext(ctx, "tasks ranked",
		observability.StrategyKey, strategy,
		"tasks", len(tasks),
	)

	return toAnalysisDTO(strategy, weights, result), nil
}

func toAnalysisDTO(strategy string, weights domain.WeightVector, result services.RankResult) *AnalysisDTO {
	dto := &AnalysisDTO{
		Strategy:      strategy,
		Weights:       weights,
		Today:         result.Today.Format(domain.DateLayout),
		CycleDetected: result.CycleDetected,
		Cycle:         result.Cycle,
		Tasks:         make([]ScoredTaskDTO, len(result.Tasks)),
	}
	for i, st := range result.Tasks {
		dto.Tasks[i] = toScoredTaskDTO(st)
	}
	return dto
}

func toScoredTaskDTO(st domain.ScoredTask) ScoredTaskDTO {
	dto := ScoredTaskDTO{
		ID:             st.ID,
		Title:          st.Title,
		EstimatedHours: st.EstimatedHours,
		Importance:     st.Importance,
		Dependencies:   st.Dependencies,
		Score:          st.Score,
		Reason:         st.Reason,
		Signals:        st.Signals,
	}
	if dto.Dependencies == nil {
		dto.Dependencies = []string{}
	}
	if st.DueDate != nil {
		due := st.DueDateString()
		dto.DueDate = &due
	}
	if st.Quadrant != domain.QuadrantUnknown {
		dto.Quadrant = st.Quadrant.String()
		dto.QuadrantLabel = st.Quadrant.Label()
	}
	return dto
}
