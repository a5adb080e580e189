package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
)

// ErrInvalidPayload is returned when a request body has the wrong shape.
var ErrInvalidPayload = errors.New("invalid payload")

// AnalyzeRequest is a batch of tasks and the strategy to rank them with.
type AnalyzeRequest struct {
	Tasks    []domain.TaskInput `json:"tasks"`
	Strategy string             `json:"strategy,omitempty"`
}

// ParseAnalyzeRequest accepts either {"tasks": [...], "strategy": "..."}
// or a bare task array. A missing strategy becomes defaultStrategy.
func ParseAnalyzeRequest(data []byte, defaultStrategy string) (AnalyzeRequest, error) {
	data = bytes.TrimSpace(data)
	req := AnalyzeRequest{Strategy: defaultStrategy}
	if len(data) == 0 {
		return req, fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}

	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &req.Tasks); err != nil {
			return req, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	case '{':
		var body struct {
			Tasks    json.RawMessage `json:"tasks"`
			Strategy *string         `json:"strategy"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return req, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if len(body.Tasks) == 0 || bytes.Equal(body.Tasks, []byte("null")) {
			return req, fmt.Errorf("%w: tasks array is required", ErrInvalidPayload)
		}
		if err := json.Unmarshal(body.Tasks, &req.Tasks); err != nil {
			return req, fmt.Errorf("%w: tasks must be an array of objects", ErrInvalidPayload)
		}
		if body.Strategy != nil && strings.TrimSpace(*body.Strategy) != "" {
			req.Strategy = strings.TrimSpace(*body.Strategy)
		}
	default:
		return req, fmt.Errorf("%w: expected an object or an array", ErrInvalidPayload)
	}

	if req.Tasks == nil {
		req.Tasks = []domain.TaskInput{}
	}
	return req, nil
}

// ParseTaskSample decodes the suggest endpoint's sample parameter. Anything
// that is not a task array or analyze body yields an empty batch.
func ParseTaskSample(sample string) []domain.TaskInput {
	if strings.TrimSpace(sample) == "" {
		return []domain.TaskInput{}
	}
	req, err := ParseAnalyzeRequest([]byte(sample), "")
	if err != nil {
		return []domain.TaskInput{}
	}
	return req.Tasks
}

// FeedbackRequest is the feedback body. Adjustments are either flat
// ({"urgency": 0.05}) and apply to Strategy, or keyed by strategy
// ({"smart_balance": {"urgency": 0.05}}).
type FeedbackRequest struct {
	Strategy    string          `json:"strategy,omitempty"`
	Adjustments json.RawMessage `json:"adjustments"`
}

// ParseFeedbackRequest decodes a feedback body into adjustments. The flat
// form is chosen when any key names a signal; a missing strategy becomes
// defaultStrategy.
func ParseFeedbackRequest(data []byte, defaultStrategy string) (domain.Adjustments, error) {
	var req FeedbackRequest
	if err := json.Unmarshal(bytes.TrimSpace(data), &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	strategy := strings.TrimSpace(req.Strategy)
	if strategy == "" {
		strategy = defaultStrategy
	}
	return ParseAdjustments(req.Adjustments, strategy)
}

// ParseAdjustments decodes a flat or nested adjustments object.
func ParseAdjustments(raw json.RawMessage, strategy string) (domain.Adjustments, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("%w: adjustments must be an object", ErrInvalidPayload)
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(top) == 0 {
		return nil, fmt.Errorf("%w: adjustments are empty", ErrInvalidPayload)
	}

	if isFlat(top) {
		if strategy == "" {
			strategy = domain.DefaultStrategy
		}
		deltas, err := parseDeltas(strategy, top)
		if err != nil {
			return nil, err
		}
		return domain.Adjustments{strategy: deltas}, nil
	}

	adjustments := make(domain.Adjustments, len(top))
	for name, value := range top {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(value, &inner); err != nil || inner == nil {
			return nil, fmt.Errorf("%w: adjustments for %q must be an object", ErrInvalidPayload, name)
		}
		deltas, err := parseDeltas(name, inner)
		if err != nil {
			return nil, err
		}
		adjustments[name] = deltas
	}
	return adjustments, nil
}

func isFlat(top map[string]json.RawMessage) bool {
	for key := range top {
		if domain.Signal(strings.ToLower(key)).IsValid() {
			return true
		}
	}
	return false
}

func parseDeltas(strategy string, raw map[string]json.RawMessage) (map[domain.Signal]float64, error) {
	deltas := make(map[domain.Signal]float64, len(raw))
	for key, value := range raw {
		delta, err := parseDelta(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidPayload, strategy, key, err)
		}
		signal := domain.Signal(strings.ToLower(key))
		if _, dup := deltas[signal]; dup {
			return nil, fmt.Errorf("%w: %s.%s: duplicate signal", ErrInvalidPayload, strategy, key)
		}
		deltas[signal] = delta
	}
	return deltas, nil
}

// parseDelta accepts a JSON number or a numeric string.
func parseDelta(value json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return 0, errors.New("delta must be a number")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("delta %q is not a number", s)
	}
	return f, nil
}
