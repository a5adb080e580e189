package services

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2026-10-19.
var fixedNow = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.Local)

func newTestEngine() *ScoringEngine {
	return NewScoringEngine(ScoringEngineConfig{
		Clock:    func() time.Time { return fixedNow },
		Calendar: domain.NewHolidayCalendar(nil),
	})
}

func dueIn(days int) *time.Time {
	d := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return &d
}

func task(id string, due *time.Time, importance int, hours float64, deps ...string) domain.Task {
	if deps == nil {
		deps = []string{}
	}
	return domain.Task{
		ID:             id,
		Title:          "Task " + id,
		DueDate:        due,
		EstimatedHours: hours,
		Importance:     importance,
		Dependencies:   deps,
	}
}

func weightsFor(t *testing.T, strategy string) domain.WeightVector {
	t.Helper()
	w, ok := domain.DefaultWeightsFor(strategy)
	require.True(t, ok)
	return w
}

func ids(tasks []domain.ScoredTask) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func byID(t *testing.T, tasks []domain.ScoredTask, id string) domain.ScoredTask {
	t.Helper()
	for _, st := range tasks {
		if st.ID == id {
			return st
		}
	}
	t.Fatalf("task %s not in result", id)
	return domain.ScoredTask{}
}

func TestScoringEngine_Rank_EarlierLowEffortVersusImportant(t *testing.T) {
	engine := newTestEngine()
	tasks := []domain.Task{
		task("a", dueIn(10), 5, 1),
		task("b", dueIn(20), 10, 5),
	}

	t.Run("smart_balance", func(t *testing.T) {
		result := engine.Rank(tasks, weightsFor(t, domain.StrategySmartBalance))
		require.False(t, result.CycleDetected)

		// a: 0.35*urgency(1) + 0.15*effort(1); b: 0.35*importance(1)
		assert.InDelta(t, 50.0, byID(t, result.Tasks, "a").Score, 1e-9)
		assert.InDelta(t, 35.0, byID(t, result.Tasks, "b").Score, 1e-9)
		assert.Equal(t, []string{"a", "b"}, ids(result.Tasks))
	})

	t.Run("high_impact", func(t *testing.T) {
		result := engine.Rank(tasks, weightsFor(t, domain.StrategyHighImpact))
		assert.Equal(t, []string{"b", "a"}, ids(result.Tasks))
		assert.InDelta(t, 70.0, result.Tasks[0].Score, 1e-9)
		assert.InDelta(t, 20.0, result.Tasks[1].Score, 1e-9)
	})
}

func TestScoringEngine_Rank_OverdueFirst(t *testing.T) {
	engine := newTestEngine()
	tasks := []domain.Task{
		task("y", dueIn(30), 5, 2),
		task("x", dueIn(-2), 5, 2),
	}

	result := engine.Rank(tasks, weightsFor(t, domain.StrategySmartBalance))

	assert.Equal(t, []string{"x", "y"}, ids(result.Tasks))
	x := result.Tasks[0]
	require.NotNil(t, x.Signals)
	// due on Saturday: -2 days, minus half a day for the weekend
	assert.Equal(t, -2.5, x.Raw.Days)
	assert.InDelta(t, 1+2.5/30, x.Signals.Urgency, 1e-9)
	assert.InDelta(t, 57.92, x.Score, 1e-9)
	assert.InDelta(t, 15.0, result.Tasks[1].Score, 1e-9)
}

func TestScoringEngine_Rank_OverdueUrgencyCap(t *testing.T) {
	engine := newTestEngine()
	tasks := []domain.Task{
		task("o45", dueIn(-45), 5, 2),
		task("o60", dueIn(-60), 5, 2),
	}

	result := engine.Rank(tasks, weightsFor(t, domain.StrategySmartBalance))

	o45 := byID(t, result.Tasks, "o45")
	o60 := byID(t, result.Tasks, "o60")
	require.NotNil(t, o45.Signals)
	require.NotNil(t, o60.Signals)
	assert.Equal(t, -45.0, o45.Raw.Days)
	assert.Equal(t, -60.0, o60.Raw.Days)
	assert.Equal(t, 2.0, o45.Signals.Urgency)
	assert.Equal(t, 2.0, o60.Signals.Urgency)

	// 0.35*urgency(2) + 0.15*effort(1), plus the overdue bonus
	assert.InDelta(t, 90.0, o45.Score, 1e-9)
	assert.Equal(t, o45.Score, o60.Score)
	assert.Equal(t, []string{"o45", "o60"}, ids(result.Tasks))
}

func TestScoringEngine_Rank_Cycle(t *testing.T) {
	engine := newTestEngine()
	tasks := []domain.Task{
		task("1", nil, 5, 1, "2"),
		task("2", nil, 9, 3, "1"),
		task("3", dueIn(-10), 10, 0.1),
	}

	result := engine.Rank(tasks, weightsFor(t, domain.StrategySmartBalance))

	require.True(t, result.CycleDetected)
	assert.Equal(t, []string{"1", "2", "1"}, result.Cycle)
	assert.Equal(t, []string{"1", "2", "3"}, ids(result.Tasks))
	for _, st := range result.Tasks {
		assert.Equal(t, 100.0, st.Score)
		assert.Equal(t, "Circular dependency detected; manual review required.", st.Reason)
		assert.Nil(t, st.Signals)
		assert.Equal(t, domain.QuadrantUnknown, st.Quadrant)
	}
}

func TestScoringEngine_Rank_SelfDependencyIsCycle(t *testing.T) {
	result := newTestEngine().Rank([]domain.Task{task("solo", dueIn(1), 5, 1, "solo")}, domain.DefaultWeights()[domain.StrategySmartBalance])

	assert.True(t, result.CycleDetected)
	assert.Equal(t, []string{"solo", "solo"}, result.Cycle)
}

func TestScoringEngine_Rank_ReasonAndDependents(t *testing.T) {
	engine := newTestEngine()
	tasks := []domain.Task{
		task("b", nil, 5, 1, "a"),
		task("a", nil, 5, 1),
		task("c", nil, 5, 1, "a", "a", "ghost"),
	}

	result := engine.Rank(tasks, weightsFor(t, domain.StrategySmartBalance))

	require.Len(t, result.Tasks, 3)
	top := result.Tasks[0]
	assert.Equal(t, "a", top.ID)
	assert.Equal(t, 2, top.Raw.Dependents)
	assert.Equal(t, "Urgency:1.00; Importance:0.00; EffortBenefit:1.00; Blocks:2 tasks", top.Reason)
	assert.InDelta(t, 65.0, top.Score, 1e-9)

	// ties keep input order
	assert.Equal(t, []string{"a", "b", "c"}, ids(result.Tasks))
	assert.Equal(t, "Urgency:1.00; Importance:0.00; EffortBenefit:1.00", result.Tasks[1].Reason)
}

func TestScoringEngine_Rank_PartialWeightsFallBack(t *testing.T) {
	engine := newTestEngine()
	result := engine.Rank(
		[]domain.Task{task("only", dueIn(3), 5, 1)},
		domain.WeightVector{domain.SignalUrgency: 0.5},
	)

	// urgency 1 with weight 0.5, effort 1 with the smart_balance weight 0.15
	assert.InDelta(t, 65.0, result.Tasks[0].Score, 1e-9)
}

func TestScoringEngine_Rank_Quadrant(t *testing.T) {
	result := newTestEngine().Rank([]domain.Task{
		task("urgent-important", dueIn(3), 8, 1),
		task("important", dueIn(14), 9, 1),
		task("urgent", dueIn(7), 3, 1),
		task("neither", nil, 2, 1),
	}, weightsFor(t, domain.StrategySmartBalance))

	assert.Equal(t, domain.QuadrantDoFirst, byID(t, result.Tasks, "urgent-important").Quadrant)
	assert.Equal(t, domain.QuadrantSchedule, byID(t, result.Tasks, "important").Quadrant)
	assert.Equal(t, domain.QuadrantDelegate, byID(t, result.Tasks, "urgent").Quadrant)
	assert.Equal(t, domain.QuadrantEliminate, byID(t, result.Tasks, "neither").Quadrant)
}

func TestScoringEngine_Rank_Empty(t *testing.T) {
	result := newTestEngine().Rank(nil, weightsFor(t, domain.StrategySmartBalance))

	assert.False(t, result.CycleDetected)
	assert.Empty(t, result.Tasks)
	assert.Equal(t, time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC), result.Today)
}

func TestScoringEngine_Rank_Properties(t *testing.T) {
	engine := newTestEngine()
	strategies := []string{
		domain.StrategySmartBalance,
		domain.StrategyFastestWins,
		domain.StrategyHighImpact,
		domain.StrategyDeadlineDriven,
	}

	batch := []domain.Task{
		task("t1", dueIn(2), 3, 4),
		task("t2", nil, 7, 0.5, "t1"),
		task("t3", dueIn(-40), 10, 8, "t1", "t2"),
		task("t4", dueIn(12), 1, 1),
		task("t5", dueIn(12), 1, 1),
	}

	for _, strategy := range strategies {
		t.Run(strategy+"/sorted and complete", func(t *testing.T) {
			result := engine.Rank(batch, weightsFor(t, strategy))
			require.Len(t, result.Tasks, len(batch))
			for i := 1; i < len(result.Tasks); i++ {
				assert.GreaterOrEqual(t, result.Tasks[i-1].Score, result.Tasks[i].Score)
			}
			// identical tasks keep input order
			pos := map[string]int{}
			for i, st := range result.Tasks {
				pos[st.ID] = i
			}
			assert.Less(t, pos["t4"], pos["t5"])
		})

		t.Run(strategy+"/earlier due date never ranks lower", func(t *testing.T) {
			result := engine.Rank([]domain.Task{
				task("late", dueIn(25), 5, 2),
				task("early", dueIn(3), 5, 2),
			}, weightsFor(t, strategy))
			assert.GreaterOrEqual(t, byID(t, result.Tasks, "early").Score, byID(t, result.Tasks, "late").Score)
		})

		t.Run(strategy+"/importance 10 never ranks lower than 1", func(t *testing.T) {
			result := engine.Rank([]domain.Task{
				task("low", dueIn(5), 1, 2),
				task("high", dueIn(5), 10, 2),
			}, weightsFor(t, strategy))
			assert.GreaterOrEqual(t, byID(t, result.Tasks, "high").Score, byID(t, result.Tasks, "low").Score)
		})
	}

	t.Run("overdue beats far future under default strategy", func(t *testing.T) {
		result := engine.Rank([]domain.Task{
			task("future", dueIn(300), 5, 1),
			task("overdue", dueIn(-1), 5, 1),
		}, weightsFor(t, domain.DefaultStrategy))
		assert.Greater(t, byID(t, result.Tasks, "overdue").Score, byID(t, result.Tasks, "future").Score)
	})
}

func TestNewScoringEngine_DefaultsClock(t *testing.T) {
	engine := NewScoringEngine(ScoringEngineConfig{})
	result := engine.Rank([]domain.Task{task("a", nil, 5, 1)}, nil)

	require.Len(t, result.Tasks, 1)
	// nil weights fall back to smart_balance: urgency 1 and effort 1
	assert.InDelta(t, 50.0, result.Tasks[0].Score, 1e-9)
}
