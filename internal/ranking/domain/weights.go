package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Signal is one dimension that contributes to a task's score.
type Signal string

const (
	SignalUrgency    Signal = "urgency"
	SignalImportance Signal = "importance"
	SignalEffort     Signal = "effort"
	SignalDependency Signal = "dependency"
)

// Strategy names shipped with the compiled-in weight table.
const (
	StrategySmartBalance   = "smart_balance"
	StrategyFastestWins    = "fastest_wins"
	StrategyHighImpact     = "high_impact"
	StrategyDeadlineDriven = "deadline_driven"
)

// DefaultStrategy is used when a caller does not name one.
const DefaultStrategy = StrategySmartBalance

const weightSumTolerance = 1e-6

var (
	ErrInvalidSignal     = errors.New("invalid signal")
	ErrInvalidAdjustment = errors.New("invalid weight adjustment")
	ErrConfigNotFound    = errors.New("weight configuration not found")
	ErrConfigCorrupt     = errors.New("weight configuration is malformed")
)

var signals = []Signal{SignalUrgency, SignalImportance, SignalEffort, SignalDependency}

// Signals returns the four scoring signals in a stable order.
func Signals() []Signal {
	out := make([]Signal, len(signals))
	copy(out, signals)
	return out
}

// ParseSignal creates a Signal from a string.
func ParseSignal(s string) (Signal, error) {
	sig := Signal(strings.ToLower(strings.TrimSpace(s)))
	if !sig.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSignal, s)
	}
	return sig, nil
}

// IsValid returns true if the signal is one of the four known signals.
func (s Signal) IsValid() bool {
	for _, known := range signals {
		if s == known {
			return true
		}
	}
	return false
}

func (s Signal) String() string {
	return string(s)
}

// WeightVector maps each signal to a non-negative weight.
type WeightVector map[Signal]float64

// Clone returns an independent copy of the vector.
func (w WeightVector) Clone() WeightVector {
	out := make(WeightVector, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Sum returns the total of all weights.
func (w WeightVector) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Normalize scales the weights to sum to 1.0. A zero total leaves the
// vector untouched.
func (w WeightVector) Normalize() WeightVector {
	out := w.Clone()
	total := out.Sum()
	if total == 0 {
		return out
	}
	for k, v := range out {
		out[k] = v / total
	}
	return out
}

// Get returns the weight for a signal, falling back to the smart_balance
// default when the vector does not carry it.
func (w WeightVector) Get(s Signal) float64 {
	if v, ok := w[s]; ok {
		return v
	}
	return defaultWeights[StrategySmartBalance][s]
}

// Validate checks that weights are non-negative and sum to 1.0.
func (w WeightVector) Validate() error {
	for k, v := range w {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidAdjustment, k, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", sum)
	}
	return nil
}

var defaultWeights = map[string]WeightVector{
	StrategySmartBalance: {
		SignalUrgency: 0.35, SignalImportance: 0.35, SignalEffort: 0.15, SignalDependency: 0.15,
	},
	StrategyFastestWins: {
		SignalUrgency: 0.1, SignalImportance: 0.2, SignalEffort: 0.6, SignalDependency: 0.1,
	},
	StrategyHighImpact: {
		SignalUrgency: 0.1, SignalImportance: 0.7, SignalEffort: 0.1, SignalDependency: 0.1,
	},
	StrategyDeadlineDriven: {
		SignalUrgency: 0.6, SignalImportance: 0.2, SignalEffort: 0.1, SignalDependency: 0.1,
	},
}

// DefaultWeights returns a copy of the compiled-in strategy table.
func DefaultWeights() map[string]WeightVector {
	out := make(map[string]WeightVector, len(defaultWeights))
	for name, vec := range defaultWeights {
		out[name] = vec.Clone()
	}
	return out
}

// DefaultWeightsFor returns the compiled-in vector for a strategy and
// whether one exists. Unknown strategies receive smart_balance.
func DefaultWeightsFor(strategy string) (WeightVector, bool) {
	if vec, ok := defaultWeights[strategy]; ok {
		return vec.Clone(), true
	}
	return defaultWeights[StrategySmartBalance].Clone(), false
}

// WeightConfig is the persisted weight document.
type WeightConfig struct {
	Weights map[string]WeightVector `json:"weights" yaml:"weights"`
}

// DefaultWeightConfig returns a configuration holding the compiled-in table.
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{Weights: DefaultWeights()}
}

// Clone returns a deep copy of the configuration.
func (c WeightConfig) Clone() WeightConfig {
	out := WeightConfig{Weights: make(map[string]WeightVector, len(c.Weights))}
	for name, vec := range c.Weights {
		out.Weights[name] = vec.Clone()
	}
	return out
}

// Strategies returns the configured strategy names, sorted.
func (c WeightConfig) Strategies() []string {
	names := make([]string, 0, len(c.Weights))
	for name := range c.Weights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Adjustments are additive weight deltas keyed by strategy then signal.
type Adjustments map[string]map[Signal]float64

// Validate rejects unknown signals, empty strategy names and non-finite deltas.
func (a Adjustments) Validate() error {
	if len(a) == 0 {
		return fmt.Errorf("%w: no adjustments provided", ErrInvalidAdjustment)
	}
	for strategy, deltas := range a {
		if strings.TrimSpace(strategy) == "" {
			return fmt.Errorf("%w: strategy name is required", ErrInvalidAdjustment)
		}
		for sig, delta := range deltas {
			if !sig.IsValid() {
				return fmt.Errorf("%w: unknown signal %q for %s", ErrInvalidAdjustment, sig, strategy)
			}
			if math.IsNaN(delta) || math.IsInf(delta, 0) {
				return fmt.Errorf("%w: %s.%s is not a finite number", ErrInvalidAdjustment, strategy, sig)
			}
		}
	}
	return nil
}

// Apply adds the deltas to cfg and returns the result. Unknown strategies
// are seeded from the default table, each weight is floored at zero and
// every touched strategy is renormalized to sum to 1.0.
func (a Adjustments) Apply(cfg WeightConfig) WeightConfig {
	out := cfg.Clone()
	if out.Weights == nil {
		out.Weights = make(map[string]WeightVector)
	}

	strategies := make([]string, 0, len(a))
	for name := range a {
		strategies = append(strategies, name)
	}
	sort.Strings(strategies)

	for _, strategy := range strategies {
		vec, ok := out.Weights[strategy]
		if !ok || vec == nil {
			vec, _ = DefaultWeightsFor(strategy)
		}
		for sig, delta := range a[strategy] {
			vec[sig] = math.Max(0, vec[sig]+delta)
		}
		out.Weights[strategy] = vec.Normalize()
	}
	return out
}

// WeightStore persists the weight configuration.
type WeightStore interface {
	// Load returns the stored configuration, or ErrConfigNotFound.
	Load(ctx context.Context) (WeightConfig, error)
	// Save replaces the whole stored configuration.
	Save(ctx context.Context, cfg WeightConfig) error
}

// AtomicWeightStore is implemented by stores that can run a
// read-modify-write cycle without interleaving other writers.
type AtomicWeightStore interface {
	WeightStore
	// Update loads the configuration (ErrConfigNotFound is passed to fn as
	// found=false), applies fn and saves the result atomically.
	Update(ctx context.Context, fn func(current WeightConfig, found bool) (WeightConfig, error)) (WeightConfig, error)
}
