// Package fsrstask adapts the FSRS scheduler to the deck item contract.
//
// A Task stores only its review history; its next due time is recomputed by
// replaying that history through a scheduler built from the shared Model at
// the deck's target retention. Refitting the Model's parameters therefore
// reschedules every task without touching them.
package fsrstask

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sky-flux/deck/fsrs"
	"github.com/sky-flux/deck/fsrs/optimizer"
)

// Model is the state shared by every task of a deck.
type Model struct {
	Parameters      [21]float64               `json:"parameters"`
	LearningSteps   []time.Duration           `json:"learning_steps"`
	RelearningSteps []time.Duration           `json:"relearning_steps"`
	MaximumInterval int                       `json:"maximum_interval"`
	DisableFuzzing  bool                      `json:"disable_fuzzing"`
	Optimizer       optimizer.OptimizerConfig `json:"optimizer"`

	// Logs accumulates every review of every task, for refitting.
	Logs []fsrs.ReviewLog `json:"logs"`

	// NextCardID is the last card ID handed out.
	NextCardID int64 `json:"next_card_id"`

	now   func() time.Time
	cache map[float64]*fsrs.Scheduler
}

// SetDefaults fills in the FSRS v6 defaults.
func (m *Model) SetDefaults() {
	m.Parameters = fsrs.DefaultParameters
	m.LearningSteps = slices.Clone(fsrs.DefaultLearningSteps)
	m.RelearningSteps = slices.Clone(fsrs.DefaultRelearningSteps)
	m.MaximumInterval = fsrs.DefaultMaximumInterval
	m.cache = nil
}

// SetClock replaces the clock used to timestamp reviews.
func (m *Model) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Model) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// Clone returns a deep copy of the model. The scheduler cache is not shared.
func (m Model) Clone() Model {
	out := m
	out.LearningSteps = slices.Clone(m.LearningSteps)
	out.RelearningSteps = slices.Clone(m.RelearningSteps)
	out.Logs = slices.Clone(m.Logs)
	out.Optimizer.RetentionCandidates = slices.Clone(m.Optimizer.RetentionCandidates)
	out.cache = nil
	return out
}

// Validate reports whether a scheduler can be built from the model.
func (m *Model) Validate() error {
	_, err := fsrs.NewScheduler(m.config(fsrs.DefaultDesiredRetention))
	return err
}

// Optimize refits the parameters to the accumulated logs. On failure the
// parameters are left as they were.
func (m *Model) Optimize(ctx context.Context) error {
	params, err := optimizer.NewOptimizer(m.Optimizer).ComputeOptimalParameters(ctx, m.Logs)
	if err != nil {
		return fmt.Errorf("fsrstask: fit parameters from %d logs: %w", len(m.Logs), err)
	}
	m.Parameters = params
	m.cache = nil
	return nil
}

// OptimalRetention returns the retention that minimizes simulated review
// cost under the current parameters. Every log needs a review duration.
func (m *Model) OptimalRetention(ctx context.Context) (float64, error) {
	r, err := optimizer.NewOptimizer(m.Optimizer).ComputeOptimalRetention(ctx, m.Parameters, m.Logs)
	if err != nil {
		return 0, fmt.Errorf("fsrstask: optimal retention: %w", err)
	}
	return r, nil
}

func (m *Model) config(retention float64) fsrs.SchedulerConfig {
	return fsrs.SchedulerConfig{
		Parameters:       m.Parameters,
		DesiredRetention: retention,
		LearningSteps:    m.LearningSteps,
		RelearningSteps:  m.RelearningSteps,
		MaximumInterval:  m.MaximumInterval,
		DisableFuzzing:   m.DisableFuzzing,
	}
}

// scheduler returns the scheduler for retention, building it on first use.
// An invalid model falls back to default parameters so due times stay
// computable; Validate surfaces the problem.
func (m *Model) scheduler(retention float64) *fsrs.Scheduler {
	if s, ok := m.cache[retention]; ok {
		return s
	}
	s, err := fsrs.NewScheduler(m.config(retention))
	if err != nil {
		s, _ = fsrs.NewScheduler(fsrs.SchedulerConfig{DesiredRetention: retention})
	}
	if m.cache == nil {
		m.cache = make(map[float64]*fsrs.Scheduler)
	}
	m.cache[retention] = s
	return s
}

func (m *Model) nextCardID() int64 {
	m.NextCardID++
	return m.NextCardID
}
