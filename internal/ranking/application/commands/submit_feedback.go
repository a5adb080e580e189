package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/triage/internal/ranking/application/services"
	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/felixgeelhaar/triage/internal/shared/application"
	"github.com/felixgeelhaar/triage/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/triage/pkg/observability"
)

// SubmitFeedbackCommand contains additive weight adjustments keyed by
// strategy then signal.
type SubmitFeedbackCommand struct {
	Adjustments domain.Adjustments
}

// CommandName returns the command name.
func (SubmitFeedbackCommand) CommandName() string { return "ranking.feedback" }

// SubmitFeedbackResult is the configuration after the feedback was applied.
type SubmitFeedbackResult struct {
	Strategies []string                       `json:"strategies"`
	Weights    map[string]domain.WeightVector `json:"weights"`
}

var _ application.CommandHandler[SubmitFeedbackCommand, *SubmitFeedbackResult] = (*SubmitFeedbackHandler)(nil)

// SubmitFeedbackHandler handles the SubmitFeedbackCommand.
type SubmitFeedbackHandler struct {
	service   *services.WeightService
	publisher eventbus.Publisher
	logger    *slog.Logger
	metrics   observability.Metrics
}

// NewSubmitFeedbackHandler creates a new SubmitFeedbackHandler.
func NewSubmitFeedbackHandler(
	service *services.WeightService,
	publisher eventbus.Publisher,
	logger *slog.Logger,
	metrics observability.Metrics,
) *SubmitFeedbackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	return &SubmitFeedbackHandler{
		service:   service,
		publisher: publisher,
		logger:    observability.LogOperation(logger, SubmitFeedbackCommand{}.CommandName()),
		metrics:   metrics,
	}
}

// Handle applies the adjustments and publishes a weights-updated event.
// The event is best effort: the new weights are already stored when
// publishing fails.
func (h *SubmitFeedbackHandler) Handle(ctx context.Context, cmd SubmitFeedbackCommand) (*SubmitFeedbackResult, error) {
	updated, err := h.service.ApplyFeedback(ctx, cmd.Adjustments)
	if err != nil {
		h.metrics.Counter(observability.MetricFeedbackErrors, 1)
		h.logger.WarnContext(ctx, "feedback rejected", "error", err)
		return nil, err
	}
	h.metrics.Counter(observability.MetricFeedbackTotal, 1)

	event := domain.NewWeightsUpdated(cmd.Adjustments, updated)
	if err := eventbus.PublishJSON(ctx, h.publisher, event.RoutingKey, event); err != nil {
		h.logger.ErrorContext(ctx, "failed to publish weights update",
			"event_id", event.EventID,
			"error", err,
		)
	} else {
		h.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", event.RoutingKey))
	}

	h.logger.InfoContext(ctx, "weights updated from feedback", "strategies", event.Strategies)

	return &SubmitFeedbackResult{
		Strategies: updated.Strategies(),
		Weights:    updated.Weights,
	}, nil
}
