package observability

import (
	"log/slog"
	"time"
)

// Timer measures one operation and reports it on Stop.
type Timer struct {
	name    string
	start   time.Time
	logger  *slog.Logger
	metrics Metrics
	tags    []Tag
}

// StartTimer starts timing a metric.
func StartTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// WithLogger logs the duration at debug level on Stop.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// WithMetrics records the duration as a timing on Stop.
func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// WithTags labels the recorded timing.
func (t *Timer) WithTags(tags ...Tag) *Timer {
	t.tags = append(t.tags, tags...)
	return t
}

// Stop records and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	if t.logger != nil {
		t.logger.Debug("operation timed", OperationKey, t.name, DurationKey, d.Milliseconds())
	}
	if t.metrics != nil {
		t.metrics.Timing(t.name, d, t.tags...)
	}
	return d
}
