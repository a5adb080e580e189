package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

const (
	DefaultEstimatedHours = 1.0
	MinEstimatedHours     = 0.1
	DefaultImportance     = 5
	MinImportance         = 1
	MaxImportance         = 10
)

// TaskInput is a task record as supplied by a caller. Every field is
// optional; Sanitize fills the gaps.
type TaskInput struct {
	ID             *string  `json:"id,omitempty"`
	Title          *string  `json:"title,omitempty"`
	DueDate        *string  `json:"due_date,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	Importance     *float64 `json:"importance,omitempty"`
	Dependencies   []string `json:"dependencies,omitempty"`
}

// UnmarshalJSON accepts numbers or strings for ids, dependencies,
// importance and hours. Values of the wrong shape are dropped so that
// Sanitize can default them.
func (t *TaskInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*t = TaskInput{}
	if v, ok := raw["id"]; ok {
		t.ID = scalarString(v)
	}
	if v, ok := raw["title"]; ok {
		t.Title = scalarString(v)
	}
	if v, ok := raw["due_date"]; ok {
		t.DueDate = scalarString(v)
	}
	if v, ok := raw["estimated_hours"]; ok {
		t.EstimatedHours = scalarFloat(v)
	}
	if v, ok := raw["importance"]; ok {
		t.Importance = scalarFloat(v)
	}
	if v, ok := raw["dependencies"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err == nil {
			for _, item := range items {
				if s := scalarString(item); s != nil {
					t.Dependencies = append(t.Dependencies, *s)
				}
			}
		}
	}
	return nil
}

func scalarString(v json.RawMessage) *string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return &s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		s = n.String()
		return &s
	}
	return nil
}

func scalarFloat(v json.RawMessage) *float64 {
	s := scalarString(v)
	if s == nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Task is a fully populated task record.
type Task struct {
	ID             string
	Title          string
	DueDate        *time.Time
	EstimatedHours float64
	Importance     int
	Dependencies   []string
}

// DueDateString returns the due date in DateLayout, or "" when unset.
func (t Task) DueDateString() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format(DateLayout)
}

// Sanitize converts caller input into canonical tasks. It never fails:
// missing or malformed fields receive their defaults.
func Sanitize(inputs []TaskInput) []Task {
	tasks := make([]Task, 0, len(inputs))
	for idx, in := range inputs {
		task := Task{
			ID:             strconv.Itoa(idx),
			Title:          fmt.Sprintf("Untitled %d", idx),
			EstimatedHours: DefaultEstimatedHours,
			Importance:     DefaultImportance,
			Dependencies:   []string{},
		}
		if in.ID != nil {
			task.ID = *in.ID
		}
		if in.Title != nil {
			task.Title = *in.Title
		}
		if in.DueDate != nil {
			task.DueDate = ParseDueDate(*in.DueDate)
		}
		if in.EstimatedHours != nil {
			task.EstimatedHours = math.Max(MinEstimatedHours, *in.EstimatedHours)
		}
		if in.Importance != nil {
			task.Importance = clampImportance(*in.Importance)
		}
		task.Dependencies = append(task.Dependencies, in.Dependencies...)
		tasks = append(tasks, task)
	}
	return tasks
}

// ParseDueDate parses an ISO date (or RFC 3339 timestamp, truncated to
// its date). Unparsable values yield nil.
func ParseDueDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if d, err := time.Parse(DateLayout, value); err == nil {
		return &d
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	return nil
}

func clampImportance(v float64) int {
	if v < MinImportance {
		return MinImportance
	}
	if v > MaxImportance {
		return MaxImportance
	}
	return int(v)
}

// StringPtr is a convenience for building TaskInput values.
func StringPtr(s string) *string { return &s }

// FloatPtr is a convenience for building TaskInput values.
func FloatPtr(f float64) *float64 { return &f }
