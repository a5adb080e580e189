package api

import (
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalyzeRequest(t *testing.T) {
	t.Run("bare array uses default strategy", func(t *testing.T) {
		req, err := ParseAnalyzeRequest([]byte(`[{"id": 1, "title": "a"}, {"title": "b"}]`), domain.StrategySmartBalance)
		require.NoError(t, err)
		assert.Equal(t, domain.StrategySmartBalance, req.Strategy)
		require.Len(t, req.Tasks, 2)
		require.NotNil(t, req.Tasks[0].ID)
		assert.Equal(t, "1", *req.Tasks[0].ID)
		assert.Nil(t, req.Tasks[1].ID)
	})

	t.Run("object with strategy", func(t *testing.T) {
		req, err := ParseAnalyzeRequest([]byte(`{"tasks": [{"id": "x"}], "strategy": "high_impact"}`), domain.StrategySmartBalance)
		require.NoError(t, err)
		assert.Equal(t, domain.StrategyHighImpact, req.Strategy)
		assert.Len(t, req.Tasks, 1)
	})

	t.Run("blank strategy falls back", func(t *testing.T) {
		req, err := ParseAnalyzeRequest([]byte(`{"tasks": [], "strategy": "  "}`), domain.StrategyFastestWins)
		require.NoError(t, err)
		assert.Equal(t, domain.StrategyFastestWins, req.Strategy)
		assert.NotNil(t, req.Tasks)
		assert.Empty(t, req.Tasks)
	})

	errorCases := map[string]string{
		"empty body":       ``,
		"not json":         `tasks please`,
		"scalar":           `42`,
		"missing tasks":    `{"strategy": "smart_balance"}`,
		"null tasks":       `{"tasks": null}`,
		"tasks not array":  `{"tasks": {"id": 1}}`,
		"truncated object": `{"tasks": [`,
		"array of scalars": `[1, 2]`,
	}
	for name, body := range errorCases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAnalyzeRequest([]byte(body), domain.StrategySmartBalance)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestParseTaskSample(t *testing.T) {
	assert.Empty(t, ParseTaskSample(""))
	assert.Empty(t, ParseTaskSample("{not json"))
	assert.Empty(t, ParseTaskSample(`{"strategy": "x"}`))
	assert.Len(t, ParseTaskSample(`[{"id": "a"}, {"id": "b"}]`), 2)
	assert.Len(t, ParseTaskSample(`{"tasks": [{"id": "a"}]}`), 1)
}

func TestParseFeedbackRequest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected domain.Adjustments
	}{
		{
			name: "flat with strategy",
			body: `{"strategy": "fastest_wins", "adjustments": {"urgency": 0.05, "importance": -0.02}}`,
			expected: domain.Adjustments{
				domain.StrategyFastestWins: {domain.SignalUrgency: 0.05, domain.SignalImportance: -0.02},
			},
		},
		{
			name: "flat without strategy",
			body: `{"adjustments": {"effort": 0.1}}`,
			expected: domain.Adjustments{
				domain.StrategySmartBalance: {domain.SignalEffort: 0.1},
			},
		},
		{
			name: "nested",
			body: `{"adjustments": {"smart_balance": {"urgency": 0.05}, "custom": {"dependency": "0.2"}}}`,
			expected: domain.Adjustments{
				domain.StrategySmartBalance: {domain.SignalUrgency: 0.05},
				"custom":                    {domain.SignalDependency: 0.2},
			},
		},
		{
			name: "flat keys are case insensitive",
			body: `{"adjustments": {"Urgency": 0.1}}`,
			expected: domain.Adjustments{
				domain.StrategySmartBalance: {domain.SignalUrgency: 0.1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adjustments, err := ParseFeedbackRequest([]byte(tt.body), domain.StrategySmartBalance)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, adjustments)
		})
	}
}

func TestParseFeedbackRequest_Invalid(t *testing.T) {
	bodies := map[string]string{
		"not json":             `nope`,
		"missing adjustments":  `{"strategy": "smart_balance"}`,
		"adjustments is array": `{"adjustments": [0.1]}`,
		"empty adjustments":    `{"adjustments": {}}`,
		"non numeric delta":    `{"adjustments": {"urgency": "soon"}}`,
		"nested not object":    `{"adjustments": {"smart_balance": 0.1}}`,
		"mixed shapes":         `{"adjustments": {"urgency": 0.1, "smart_balance": {"effort": 0.1}}}`,
		"boolean delta":        `{"adjustments": {"smart_balance": {"effort": true}}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFeedbackRequest([]byte(body), domain.StrategySmartBalance)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestParseAdjustments_UnknownSignalPassesThrough(t *testing.T) {
	// Unknown signal names are rejected later by domain validation.
	adjustments, err := ParseAdjustments(json.RawMessage(`{"smart_balance": {"mood": 0.1}}`), "")
	require.NoError(t, err)
	assert.ErrorIs(t, adjustments.Validate(), domain.ErrInvalidAdjustment)
}

func TestParseAdjustments_RejectsCaseFoldedDuplicates(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"flat", `{"Urgency": 0.1, "urgency": 0.2}`},
		{"nested", `{"smart_balance": {"EFFORT": 0.1, "effort": -0.1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAdjustments(json.RawMessage(tt.body), "")
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}
