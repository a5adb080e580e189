package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoutingKeyWeightsUpdated is published after feedback rewrites the store.
const RoutingKeyWeightsUpdated = "ranking.weights.updated"

// WeightsUpdated records a feedback submission.
type WeightsUpdated struct {
	EventID    uuid.UUID               `json:"event_id"`
	RoutingKey string                  `json:"routing_key"`
	OccurredAt time.Time               `json:"occurred_at"`
	Strategies []string                `json:"strategies"`
	Weights    map[string]WeightVector `json:"weights"`
}

// NewWeightsUpdated builds the event for the touched strategies.
func NewWeightsUpdated(adjustments Adjustments, cfg WeightConfig) WeightsUpdated {
	touched := make(map[string]WeightVector, len(adjustments))
	names := make([]string, 0, len(adjustments))
	for _, name := range cfg.Strategies() {
		if _, ok := adjustments[name]; !ok {
			continue
		}
		names = append(names, name)
		touched[name] = cfg.Weights[name].Clone()
	}
	return WeightsUpdated{
		EventID:    uuid.New(),
		RoutingKey: RoutingKeyWeightsUpdated,
		OccurredAt: time.Now().UTC(),
		Strategies: names,
		Weights:    touched,
	}
}
