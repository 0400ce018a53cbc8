package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sky-flux/deck"
	"github.com/sky-flux/deck/content"
	"github.com/sky-flux/deck/fsrstask"
	"github.com/sky-flux/deck/leitner"
	"github.com/sky-flux/deck/store"
)

const (
	algoFSRS    = "fsrs"
	algoLeitner = "leitner"
)

var algorithms = []string{algoFSRS, algoLeitner}

// row is one item as shown by "deck show".
type row struct {
	ID     deck.ID
	Due    time.Time
	Prompt string
}

// deckHandle erases the item and state types of a facade so commands can
// work on a deck whose algorithm is only known at run time.
type deckHandle interface {
	Name() string
	Len() int
	DueCount() int
	TargetRetention() float64
	SetTargetRetention(float64) error
	Create(content.Template) deck.ID
	Remove(deck.ID) bool
	AdvanceDue()
	CompleteOne(deck.Interaction) error
	TimeUntilNextReview() (time.Duration, bool)
	Optimize(context.Context) error

	algorithm() string
	rows() []row
	templates() map[deck.ID]content.Template
	optimalRetention(context.Context) (float64, error)
	save(context.Context, *store.Store) error
	migrate(target string, a *app) (deckHandle, error)
}

type handle[T deck.Item[T, S], S any] struct {
	*deck.Facade[T, S]
	algo string
}

func (h *handle[T, S]) algorithm() string { return h.algo }

func (h *handle[T, S]) rows() []row {
	var out []row
	for id, item := range h.All() {
		out = append(out, row{
			ID:     id,
			Due:    item.NextRepetition(h.SharedState(), h.TargetRetention()),
			Prompt: item.Template().Prompt.Render(),
		})
	}
	slices.SortFunc(out, func(a, b row) int { return a.Due.Compare(b.Due) })
	return out
}

func (h *handle[T, S]) templates() map[deck.ID]content.Template {
	out := make(map[deck.ID]content.Template, h.Len())
	for id, item := range h.All() {
		out[id] = item.Template()
	}
	return out
}

type retentionAdvisor interface {
	OptimalRetention(ctx context.Context) (float64, error)
}

func (h *handle[T, S]) optimalRetention(ctx context.Context) (float64, error) {
	adv, ok := any(h.SharedState()).(retentionAdvisor)
	if !ok {
		return 0, fmt.Errorf("%s decks cannot suggest a retention", h.algo)
	}
	return adv.OptimalRetention(ctx)
}

func (h *handle[T, S]) save(ctx context.Context, st *store.Store) error {
	return store.SaveDeck(ctx, st, h.algo, h.Facade)
}

func (h *handle[T, S]) migrate(target string, a *app) (deckHandle, error) {
	switch target {
	case algoFSRS:
		dst, err := deck.Migrate[*fsrstask.Task, fsrstask.Model](h.Facade, fsrstask.NewTask, a.deckOptions()...)
		if err != nil {
			return nil, err
		}
		if err := a.seedFSRS(dst.SharedState()); err != nil {
			return nil, err
		}
		return fsrsHandle(dst), nil
	case algoLeitner:
		dst, err := deck.Migrate[*leitner.Card, leitner.Schedule](h.Facade, leitner.NewCard, a.deckOptions()...)
		if err != nil {
			return nil, err
		}
		a.seedLeitner(dst.SharedState())
		return leitnerHandle(dst), nil
	default:
		return nil, unknownAlgorithm(target)
	}
}

func fsrsHandle(f *deck.Facade[*fsrstask.Task, fsrstask.Model]) deckHandle {
	return &handle[*fsrstask.Task, fsrstask.Model]{Facade: f, algo: algoFSRS}
}

func leitnerHandle(f *deck.Facade[*leitner.Card, leitner.Schedule]) deckHandle {
	return &handle[*leitner.Card, leitner.Schedule]{Facade: f, algo: algoLeitner}
}

func unknownAlgorithm(name string) error {
	return fmt.Errorf("unknown algorithm %q (want one of %v)", name, algorithms)
}

// newHandle creates an empty deck seeded from the configuration.
func (a *app) newHandle(name, algo string, retention float64) (deckHandle, error) {
	switch algo {
	case algoFSRS:
		f, err := deck.New[*fsrstask.Task, fsrstask.Model](name, retention, fsrstask.NewTask, a.deckOptions()...)
		if err != nil {
			return nil, err
		}
		if err := a.seedFSRS(f.SharedState()); err != nil {
			return nil, err
		}
		return fsrsHandle(f), nil
	case algoLeitner:
		f, err := deck.New[*leitner.Card, leitner.Schedule](name, retention, leitner.NewCard, a.deckOptions()...)
		if err != nil {
			return nil, err
		}
		a.seedLeitner(f.SharedState())
		return leitnerHandle(f), nil
	default:
		return nil, unknownAlgorithm(algo)
	}
}

// decode restores a deck saved by the given algorithm.
func (a *app) decode(algo string, payload []byte) (deckHandle, error) {
	switch algo {
	case algoFSRS:
		f, err := deck.Load[*fsrstask.Task, fsrstask.Model](payload, fsrstask.NewTask, a.deckOptions()...)
		if err != nil {
			return nil, err
		}
		m := f.SharedState()
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("fsrs model: %w", err)
		}
		m.SetClock(a.now)
		return fsrsHandle(f), nil
	case algoLeitner:
		f, err := deck.Load[*leitner.Card, leitner.Schedule](payload, leitner.NewCard, a.deckOptions()...)
		if err != nil {
			return nil, err
		}
		f.SharedState().SetClock(a.now)
		return leitnerHandle(f), nil
	default:
		return nil, unknownAlgorithm(algo)
	}
}

// seedFSRS applies the configured FSRS settings to a fresh model.
func (a *app) seedFSRS(m *fsrstask.Model) error {
	c := a.cfg.FSRS
	if c.LearningSteps != nil {
		m.LearningSteps = slices.Clone(c.LearningSteps)
	}
	if c.RelearningSteps != nil {
		m.RelearningSteps = slices.Clone(c.RelearningSteps)
	}
	if c.MaximumInterval > 0 {
		m.MaximumInterval = c.MaximumInterval
	}
	m.DisableFuzzing = c.DisableFuzzing
	m.Optimizer = c.Optimizer
	m.SetClock(a.now)
	if err := m.Validate(); err != nil {
		return fmt.Errorf("fsrs settings: %w", err)
	}
	return nil
}

func (a *app) seedLeitner(s *leitner.Schedule) {
	if len(a.cfg.Leitner.Intervals) > 0 {
		s.Intervals = slices.Clone(a.cfg.Leitner.Intervals)
	}
	s.SetClock(a.now)
}

func (a *app) deckOptions() []deck.Option {
	return []deck.Option{
		deck.WithClock(a.now),
		deck.WithLookahead(a.cfg.Lookahead),
		deck.WithLogger(a.logger),
	}
}
