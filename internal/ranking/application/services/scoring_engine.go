package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
)

// overdueBonus is added after weighting to every task past its due date.
const overdueBonus = 5.0

// overdueHorizonDays is the number of overdue days at which urgency saturates.
const overdueHorizonDays = 30.0

// ScoringEngineConfig contains configuration for the scoring engine.
type ScoringEngineConfig struct {
	// Clock returns the current time; "today" is its calendar date.
	Clock func() time.Time
	// Calendar lists non-working days. Nil means weekends only.
	Calendar *domain.HolidayCalendar
}

// DefaultScoringEngineConfig returns a configuration using the wall clock
// and the built-in holiday list.
func DefaultScoringEngineConfig() ScoringEngineConfig {
	return ScoringEngineConfig{
		Clock:    time.Now,
		Calendar: domain.DefaultHolidayCalendar(),
	}
}

// RankResult is the outcome of ranking one batch.
type RankResult struct {
	Tasks         []domain.ScoredTask
	CycleDetected bool
	// Cycle is a closed witness path such as [a b a] when CycleDetected.
	Cycle []string
	Today time.Time
}

// ScoringEngine ranks a batch of tasks with a weight vector.
type ScoringEngine struct {
	config ScoringEngineConfig
}

// NewScoringEngine creates a new scoring engine.
func NewScoringEngine(config ScoringEngineConfig) *ScoringEngine {
	if config.Clock == nil {
		config.Clock = time.Now
	}
	return &ScoringEngine{config: config}
}

// Rank scores every task and sorts the batch by descending score. A batch
// containing a dependency cycle is returned in input order with every task
// flagged for manual review.
func (e *ScoringEngine) Rank(tasks []domain.Task, weights domain.WeightVector) RankResult {
	normalizer := domain.NewNormalizer(e.config.Calendar, e.config.Clock())
	result := RankResult{Today: normalizer.Today()}

	if cycle := domain.NewDependencyGraph(tasks).FindCycle(); cycle != nil {
		result.CycleDetected = true
		result.Cycle = cycle
		result.Tasks = make([]domain.ScoredTask, len(tasks))
		for i, t := range tasks {
			result.Tasks[i] = domain.ScoredTask{
				Task:   t,
				Score:  domain.CycleReviewScore,
				Reason: domain.CycleReviewReason,
			}
		}
		return result
	}

	raws, bounds := normalizer.Compute(tasks)
	scored := make([]domain.ScoredTask, len(tasks))
	for i, t := range tasks {
		raw := raws[i]
		signals := signalScores(raw, bounds)
		scored[i] = domain.ScoredTask{
			Task:     t,
			Score:    weightedScore(raw, signals, weights),
			Reason:   explain(raw, signals),
			Raw:      &raw,
			Signals:  &signals,
			Quadrant: domain.ClassifyQuadrant(raw.Days, raw.Importance),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	result.Tasks = scored
	return result
}

func signalScores(raw domain.RawSignals, b domain.SignalBounds) domain.SignalScores {
	var urgency float64
	if raw.IsOverdue() {
		urgency = 1 + math.Min(1, -raw.Days/overdueHorizonDays)
	} else {
		urgency = 1 - b.Days.Normalize(raw.Days)
	}
	return domain.SignalScores{
		Urgency:    urgency,
		Importance: b.Importance.Normalize(float64(raw.Importance)),
		Effort:     1 - b.Effort.Normalize(raw.Effort),
		Dependency: b.Dependents.Normalize(float64(raw.Dependents)),
	}
}

func weightedScore(raw domain.RawSignals, s domain.SignalScores, w domain.WeightVector) float64 {
	score := (w.Get(domain.SignalUrgency)*s.Urgency +
		w.Get(domain.SignalImportance)*s.Importance +
		w.Get(domain.SignalEffort)*s.Effort +
		w.Get(domain.SignalDependency)*s.Dependency) * 100
	if raw.IsOverdue() {
		score += overdueBonus
	}
	return roundTo(score, 2)
}

func explain(raw domain.RawSignals, s domain.SignalScores) string {
	reasons := []string{
		fmt.Sprintf("Urgency:%.2f", s.Urgency),
		fmt.Sprintf("Importance:%.2f", s.Importance),
		fmt.Sprintf("EffortBenefit:%.2f", s.Effort),
	}
	if raw.Dependents > 0 {
		reasons = append(reasons, fmt.Sprintf("Blocks:%d tasks", raw.Dependents))
	}
	return strings.Join(reasons, "; ")
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
