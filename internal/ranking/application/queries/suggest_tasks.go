package queries

import (
	"context"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/felixgeelhaar/triage/internal/shared/application"
)

// DefaultSuggestLimit is the number of suggestions returned when the query
// does not set one.
const DefaultSuggestLimit = 3

// SuggestionDTO is a data transfer object for a suggested task.
type SuggestionDTO struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// SuggestTasksQuery contains the parameters for suggesting what to work on.
type SuggestTasksQuery struct {
	Tasks    []domain.TaskInput
	Strategy string
	Limit    int
}

// QueryName returns the query name.
func (SuggestTasksQuery) QueryName() string { return "ranking.suggest" }

var _ application.QueryHandler[SuggestTasksQuery, []SuggestionDTO] = (*SuggestTasksHandler)(nil)

// SuggestTasksHandler handles the SuggestTasksQuery.
type SuggestTasksHandler struct {
	analyze      *AnalyzeTasksHandler
	defaultLimit int
}

// NewSuggestTasksHandler creates a new SuggestTasksHandler. A non-positive
// defaultLimit means DefaultSuggestLimit.
func NewSuggestTasksHandler(analyze *AnalyzeTasksHandler, defaultLimit int) *SuggestTasksHandler {
	if defaultLimit <= 0 {
		defaultLimit = DefaultSuggestLimit
	}
	return &SuggestTasksHandler{analyze: analyze, defaultLimit: defaultLimit}
}

// Handle executes the SuggestTasksQuery.
func (h *SuggestTasksHandler) Handle(ctx context.Context, query SuggestTasksQuery) ([]SuggestionDTO, error) {
	analysis, err := h.analyze.Handle(ctx, AnalyzeTasksQuery{
		Tasks:    query.Tasks,
		Strategy: query.Strategy,
	})
	if err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = h.defaultLimit
	}
	if limit > len(analysis.Tasks) {
		limit = len(analysis.Tasks)
	}

	suggestions := make([]SuggestionDTO, limit)
	for i, t := range analysis.Tasks[:limit] {
		suggestions[i] = SuggestionDTO{
			ID:     t.ID,
			Title:  t.Title,
			Score:  t.Score,
			Reason: t.Reason,
		}
	}
	return suggestions, nil
}
