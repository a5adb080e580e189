package queries

import (
	"context"

	"github.com/felixgeelhaar/triage/internal/ranking/application/services"
	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/felixgeelhaar/triage/internal/shared/application"
)

// WeightsDTO is the effective weight configuration.
type WeightsDTO struct {
	Source     string                         `json:"source"`
	Strategies []string                       `json:"strategies"`
	Weights    map[string]domain.WeightVector `json:"weights"`
}

// GetWeightsQuery asks for the effective configuration.
type GetWeightsQuery struct{}

// QueryName returns the query name.
func (GetWeightsQuery) QueryName() string { return "ranking.weights" }

var _ application.QueryHandler[GetWeightsQuery, *WeightsDTO] = (*GetWeightsHandler)(nil)

// GetWeightsHandler handles the GetWeightsQuery.
type GetWeightsHandler struct {
	service *services.WeightService
}

// NewGetWeightsHandler creates a new GetWeightsHandler.
func NewGetWeightsHandler(service *services.WeightService) *GetWeightsHandler {
	return &GetWeightsHandler{service: service}
}

// Handle executes the GetWeightsQuery.
func (h *GetWeightsHandler) Handle(ctx context.Context, _ GetWeightsQuery) (*WeightsDTO, error) {
	cfg, source := h.service.Current(ctx)
	return &WeightsDTO{
		Source:     string(source),
		Strategies: cfg.Strategies(),
		Weights:    cfg.Weights,
	}, nil
}
