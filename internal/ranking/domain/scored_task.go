package domain

// CycleReviewReason is attached to every task of a batch whose dependencies
// form a cycle.
const CycleReviewReason = "Circular dependency detected; manual review required."

// CycleReviewScore is the uniform score of a batch with a dependency cycle.
const CycleReviewScore = 100.0

// SignalScores are the per-signal values fed into the weighted sum. Urgency
// exceeds 1.0 for overdue tasks.
type SignalScores struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Effort     float64 `json:"effort"`
	Dependency float64 `json:"dependency"`
}

// ScoredTask is a task with its computed priority.
type ScoredTask struct {
	Task
	Score    float64
	Reason   string
	Raw      *RawSignals
	Signals  *SignalScores
	Quadrant Quadrant
}

// Quadrant is a cell of the Eisenhower matrix.
type Quadrant int

const (
	QuadrantUnknown Quadrant = iota
	// QuadrantDoFirst is urgent and important.
	QuadrantDoFirst
	// QuadrantSchedule is important but not urgent.
	QuadrantSchedule
	// QuadrantDelegate is urgent but not important.
	QuadrantDelegate
	// QuadrantEliminate is neither urgent nor important.
	QuadrantEliminate
)

const (
	urgentWithinDays   = 7
	importantThreshold = 7
)

// ClassifyQuadrant places a task by day distance and importance.
func ClassifyQuadrant(days float64, importance int) Quadrant {
	urgent := days <= urgentWithinDays
	important := importance >= importantThreshold
	switch {
	case urgent && important:
		return QuadrantDoFirst
	case important:
		return QuadrantSchedule
	case urgent:
		return QuadrantDelegate
	default:
		return QuadrantEliminate
	}
}

var quadrantNames = map[Quadrant]string{
	QuadrantDoFirst:   "urgent_important",
	QuadrantSchedule:  "not_urgent_important",
	QuadrantDelegate:  "urgent_not_important",
	QuadrantEliminate: "not_urgent_not_important",
}

// String returns the machine name of the quadrant.
func (q Quadrant) String() string {
	if name, ok := quadrantNames[q]; ok {
		return name
	}
	return "unknown"
}

// Label returns a human-readable description of the quadrant.
func (q Quadrant) Label() string {
	switch q {
	case QuadrantDoFirst:
		return "Do First (Urgent & Important)"
	case QuadrantSchedule:
		return "Schedule (Important, Not Urgent)"
	case QuadrantDelegate:
		return "Delegate (Urgent, Not Important)"
	case QuadrantEliminate:
		return "Eliminate (Not Urgent, Not Important)"
	default:
		return "Unknown"
	}
}
