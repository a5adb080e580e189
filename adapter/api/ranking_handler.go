package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/triage/internal/ranking/application/commands"
	"github.com/felixgeelhaar/triage/internal/ranking/application/queries"
	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/felixgeelhaar/triage/internal/ranking/infrastructure/persistence"
)

const maxBodyBytes = 1 << 20

// RankingHandler handles ranking API requests.
type RankingHandler struct {
	analyze         *queries.AnalyzeTasksHandler
	suggest         *queries.SuggestTasksHandler
	getWeights      *queries.GetWeightsHandler
	feedback        *commands.SubmitFeedbackHandler
	defaultStrategy string
	logger          *slog.Logger
}

// RankingHandlerConfig holds dependencies for the ranking handler.
type RankingHandlerConfig struct {
	Analyze         *queries.AnalyzeTasksHandler
	Suggest         *queries.SuggestTasksHandler
	GetWeights      *queries.GetWeightsHandler
	Feedback        *commands.SubmitFeedbackHandler
	DefaultStrategy string
	Logger          *slog.Logger
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(cfg RankingHandlerConfig) *RankingHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = domain.DefaultStrategy
	}
	return &RankingHandler{
		analyze:         cfg.Analyze,
		suggest:         cfg.Suggest,
		getWeights:      cfg.GetWeights,
		feedback:        cfg.Feedback,
		defaultStrategy: cfg.DefaultStrategy,
		logger:          cfg.Logger,
	}
}

// Analyze handles POST /api/v1/tasks/analyze
func (h *RankingHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	req, err := ParseAnalyzeRequest(body, h.defaultStrategy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.analyze.Handle(r.Context(), queries.AnalyzeTasksQuery{
		Tasks:    req.Tasks,
		Strategy: req.Strategy,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to analyze tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze tasks")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Suggest handles GET /api/v1/tasks/suggest
func (h *RankingHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	strategy := params.Get("strategy")
	if strategy == "" {
		strategy = h.defaultStrategy
	}

	tasks := ParseTaskSample(params.Get("sample"))
	suggestions := []queries.SuggestionDTO{}
	if len(tasks) > 0 {
		var err error
		suggestions, err = h.suggest.Handle(r.Context(), queries.SuggestTasksQuery{
			Tasks:    tasks,
			Strategy: strategy,
			Limit:    parseIntParam(r, "limit", 0),
		})
		if err != nil {
			h.logger.ErrorContext(r.Context(), "failed to suggest tasks", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to suggest tasks")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"strategy":    strategy,
		"suggestions": suggestions,
	})
}

// Feedback handles POST /api/v1/feedback
func (h *RankingHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	adjustments, err := ParseFeedbackRequest(body, h.defaultStrategy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.feedback.Handle(r.Context(), commands.SubmitFeedbackCommand{Adjustments: adjustments})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAdjustment):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, persistence.ErrStoreUnavailable):
			writeError(w, http.StatusServiceUnavailable, "Weight store unavailable")
		default:
			h.logger.ErrorContext(r.Context(), "failed to apply feedback", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to apply feedback")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"strategies": result.Strategies,
		"weights":    result.Weights,
	})
}

// Weights handles GET /api/v1/weights
func (h *RankingHandler) Weights(w http.ResponseWriter, r *http.Request) {
	result, err := h.getWeights.Handle(r.Context(), queries.GetWeightsQuery{})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load weights", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load weights")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}
