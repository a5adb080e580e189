package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/triage/adapter/api"
	"github.com/felixgeelhaar/triage/internal/ranking/domain"
)

// decodeTasks runs tool task objects through the HTTP payload decoder so
// ids, dates and numbers are coerced the same way.
func decodeTasks(tasks []map[string]any, strategy, defaultStrategy string) (api.AnalyzeRequest, error) {
	if tasks == nil {
		tasks = []map[string]any{}
	}
	body := map[string]any{"tasks": tasks}
	if strategy != "" {
		body["strategy"] = strategy
	}
	data, err := json.Marshal(body)
	if err != nil {
		return api.AnalyzeRequest{}, fmt.Errorf("%w: %v", api.ErrInvalidPayload, err)
	}
	return api.ParseAnalyzeRequest(data, defaultStrategy)
}

func decodeAdjustments(adjustments map[string]any, strategy string) (domain.Adjustments, error) {
	if len(adjustments) == 0 {
		return nil, fmt.Errorf("%w: adjustments are required", api.ErrInvalidPayload)
	}
	data, err := json.Marshal(adjustments)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrInvalidPayload, err)
	}
	return api.ParseAdjustments(data, strategy)
}

func marshalContent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
