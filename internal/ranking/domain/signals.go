package domain

import (
	"math"
	"time"
)

// NoDueDateDays is the day distance assumed for tasks without a due date.
const NoDueDateDays = 365.0

// nonWorkingDayBoost is subtracted from the day distance when a task is
// due on a weekend or holiday: the work has to land on the previous
// working day.
const nonWorkingDayBoost = 0.5

const secondsPerDay = 24 * 60 * 60

// RawSignals are the per-task inputs to normalization.
type RawSignals struct {
	Days       float64 `json:"days"`
	Importance int     `json:"importance"`
	Effort     float64 `json:"effort"`
	Dependents int     `json:"dependents"`
}

// IsOverdue reports whether the due date has passed.
func (r RawSignals) IsOverdue() bool {
	return r.Days < 0
}

// Bounds is the closed range a signal spans across one batch.
type Bounds struct {
	Min float64
	Max float64
}

// Normalize maps v into [0,1] relative to the bounds. A zero-width range
// normalizes to 0.
func (b Bounds) Normalize(v float64) float64 {
	return Normalize(v, b.Min, b.Max)
}

// Normalize performs min-max scaling, returning 0 when min == max.
func Normalize(v, min, max float64) float64 {
	if max-min == 0 {
		return 0
	}
	return (v - min) / (max - min)
}

// SignalBounds holds the per-signal ranges of one batch.
type SignalBounds struct {
	Days       Bounds
	Importance Bounds
	Effort     Bounds
	Dependents Bounds
}

// Normalizer computes raw signals for a batch relative to a reference day.
type Normalizer struct {
	calendar *HolidayCalendar
	today    time.Time
}

// NewNormalizer creates a normalizer. now is truncated to its calendar date.
func NewNormalizer(calendar *HolidayCalendar, now time.Time) *Normalizer {
	return &Normalizer{
		calendar: calendar,
		today:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// Today returns the reference date.
func (n *Normalizer) Today() time.Time {
	return n.today
}

// DaysUntil returns the whole-day distance to a due date, adjusted for
// non-working days. A nil due date is NoDueDateDays away.
func (n *Normalizer) DaysUntil(due *time.Time) float64 {
	if due == nil {
		return NoDueDateDays
	}
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	days := float64((d.Unix() - n.today.Unix()) / secondsPerDay)
	if n.calendar.IsNonWorkingDay(d) {
		days -= nonWorkingDayBoost
	}
	return days
}

// Compute returns the raw signals for every task, in input order, and the
// batch bounds.
func (n *Normalizer) Compute(tasks []Task) ([]RawSignals, SignalBounds) {
	dependents := CountDependents(tasks)

	raws := make([]RawSignals, len(tasks))
	for i, t := range tasks {
		raws[i] = RawSignals{
			Days:       n.DaysUntil(t.DueDate),
			Importance: t.Importance,
			Effort:     math.Max(MinEstimatedHours, t.EstimatedHours),
			Dependents: dependents[t.ID],
		}
	}
	return raws, boundsOf(raws)
}

// CountDependents returns, per task id, how many distinct tasks in the
// batch list it as a dependency. References to ids outside the batch are
// ignored.
func CountDependents(tasks []Task) map[string]int {
	counts := make(map[string]int, len(tasks))
	for _, t := range tasks {
		counts[t.ID] = 0
	}
	for _, t := range tasks {
		seen := make(map[string]struct{}, len(t.Dependencies))
		for _, dep := range t.Dependencies {
			if _, dup := seen[dep]; dup {
				continue
			}
			seen[dep] = struct{}{}
			if _, ok := counts[dep]; ok {
				counts[dep]++
			}
		}
	}
	return counts
}

func boundsOf(raws []RawSignals) SignalBounds {
	if len(raws) == 0 {
		return SignalBounds{}
	}
	first := raws[0]
	b := SignalBounds{
		Days:       Bounds{Min: first.Days, Max: first.Days},
		Importance: Bounds{Min: float64(first.Importance), Max: float64(first.Importance)},
		Effort:     Bounds{Min: first.Effort, Max: first.Effort},
		Dependents: Bounds{Min: float64(first.Dependents), Max: float64(first.Dependents)},
	}
	for _, r := range raws[1:] {
		b.Days = b.Days.extend(r.Days)
		b.Importance = b.Importance.extend(float64(r.Importance))
		b.Effort = b.Effort.extend(r.Effort)
		b.Dependents = b.Dependents.extend(float64(r.Dependents))
	}
	return b
}

func (b Bounds) extend(v float64) Bounds {
	return Bounds{Min: math.Min(b.Min, v), Max: math.Max(b.Max, v)}
}
