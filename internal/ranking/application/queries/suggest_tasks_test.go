package queries

import (
	"context"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestTasksHandler_Handle(t *testing.T) {
	ctx := context.Background()
	analyze := NewAnalyzeTasksHandler(&stubResolver{}, newTestEngine(), nil, nil)

	tasks := make([]domain.TaskInput, 0, 5)
	for i := 1; i <= 5; i++ {
		tasks = append(tasks, domain.TaskInput{
			ID:         domain.StringPtr(fmt.Sprintf("t%d", i)),
			Importance: domain.FloatPtr(float64(i * 2)),
		})
	}

	t.Run("default limit", func(t *testing.T) {
		handler := NewSuggestTasksHandler(analyze, 0)
		suggestions, err := handler.Handle(ctx, SuggestTasksQuery{Tasks: tasks})
		require.NoError(t, err)

		require.Len(t, suggestions, DefaultSuggestLimit)
		assert.Equal(t, "t5", suggestions[0].ID)
		assert.Equal(t, "t4", suggestions[1].ID)
		assert.Equal(t, "t3", suggestions[2].ID)
		assert.NotEmpty(t, suggestions[0].Reason)
	})

	t.Run("query limit", func(t *testing.T) {
		handler := NewSuggestTasksHandler(analyze, 3)
		suggestions, err := handler.Handle(ctx, SuggestTasksQuery{Tasks: tasks, Limit: 1})
		require.NoError(t, err)
		assert.Len(t, suggestions, 1)
	})

	t.Run("fewer tasks than limit", func(t *testing.T) {
		handler := NewSuggestTasksHandler(analyze, 10)
		suggestions, err := handler.Handle(ctx, SuggestTasksQuery{Tasks: tasks[:2]})
		require.NoError(t, err)
		assert.Len(t, suggestions, 2)
	})

	t.Run("empty batch", func(t *testing.T) {
		handler := NewSuggestTasksHandler(analyze, 3)
		suggestions, err := handler.Handle(ctx, SuggestTasksQuery{})
		require.NoError(t, err)
		assert.NotNil(t, suggestions)
		assert.Empty(t, suggestions)
	})
}
