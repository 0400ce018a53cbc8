package deck

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sky-flux/deck/content"
)

// Facade schedules the items of one deck under a single algorithm.
//
// Every item is in exactly one of two partitions: the pool, holding items
// due after now+lookahead as of the last advance, and the recall set,
// holding items eligible for review. Reviews are drawn from the recall set
// only.
type Facade[T Item[T, S], S any] struct {
	name      string
	pool      *pool[T]
	recall    []entry[T]
	retention float64
	state     S
	factory   Factory[T]
	opts      options
	log       zerolog.Logger
}

// New creates an empty facade. The shared state starts from its zero value,
// filled in by SetDefaults when S implements StateDefaulter.
// Returns ErrInvalidRetention unless 0 < retention <= 1.
func New[T Item[T, S], S any](name string, retention float64, factory Factory[T], opts ...Option) (*Facade[T, S], error) {
	if err := validateRetention(retention); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, fmt.Errorf("deck: nil factory")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	f := &Facade[T, S]{
		name:      name,
		retention: retention,
		state:     defaultState[S](),
		factory:   factory,
		opts:      o,
		log:       o.logger.With().Str("deck", name).Logger(),
	}
	f.pool = newPool(f.due)
	return f, nil
}

func (f *Facade[T, S]) due(t T) time.Time {
	return t.NextRepetition(&f.state, f.retention)
}

// Name returns the deck name.
func (f *Facade[T, S]) Name() string { return f.name }

// TargetRetention returns the current target retention.
func (f *Facade[T, S]) TargetRetention() float64 { return f.retention }

// SharedState returns a pointer to the live shared state. Callers that
// mutate it should follow up with Reconcile.
func (f *Facade[T, S]) SharedState() *S { return &f.state }

// Len returns the number of items in both partitions.
func (f *Facade[T, S]) Len() int { return f.pool.Len() + len(f.recall) }

// DueCount returns the size of the recall set as of the last advance.
func (f *Facade[T, S]) DueCount() int { return len(f.recall) }

// Insert adds an existing item under a fresh ID and returns the ID.
func (f *Facade[T, S]) Insert(item T) ID {
	id := f.newID()
	f.pool.push(entry[T]{ID: id, Task: item})
	return id
}

// Create builds a fresh item from tmpl with the facade's factory and inserts it.
func (f *Facade[T, S]) Create(tmpl content.Template) ID {
	return f.Insert(f.factory(tmpl))
}

// Remove deletes the item with the given ID from whichever partition holds
// it. It reports whether anything was removed.
func (f *Facade[T, S]) Remove(id ID) bool {
	if i := slices.IndexFunc(f.recall, func(e entry[T]) bool { return e.ID == id }); i >= 0 {
		last := len(f.recall) - 1
		f.recall[i] = f.recall[last]
		f.recall[last] = entry[T]{}
		f.recall = f.recall[:last]
		return true
	}
	_, ok := f.pool.remove(id)
	return ok
}

// Get returns the item with the given ID.
func (f *Facade[T, S]) Get(id ID) (T, bool) {
	if i, ok := f.pool.index[id]; ok {
		return f.pool.entries[i].Task, true
	}
	for _, e := range f.recall {
		if e.ID == id {
			return e.Task, true
		}
	}
	var zero T
	return zero, false
}

// All yields every item, pool first then recall. The sequence iterates a
// snapshot taken when ranging starts, so the facade may be modified inside
// the loop.
func (f *Facade[T, S]) All() iter.Seq2[ID, T] {
	return func(yield func(ID, T) bool) {
		snapshot := slices.Concat(f.pool.entries, f.recall)
		for _, e := range snapshot {
			if !yield(e.ID, e.Task) {
				return
			}
		}
	}
}

// AdvanceDue moves every pool item due at or before now+lookahead into the
// recall set.
func (f *Facade[T, S]) AdvanceDue() {
	threshold := f.opts.now().Add(f.opts.lookahead)
	moved := 0
	for {
		e, ok := f.pool.peek()
		if !ok || f.due(e.Task).After(threshold) {
			break
		}
		f.recall = append(f.recall, f.pool.popMin())
		moved++
	}
	if moved > 0 {
		f.log.Debug().Int("moved", moved).Int("due", len(f.recall)).Msg("advanced due items")
	}
}

// Reconcile re-partitions after the ordering key changed. Recall items no
// longer due move back to the pool, pool items now due move to recall, and
// the heap is rebuilt. The lookahead is not applied here.
func (f *Facade[T, S]) Reconcile() {
	now := f.opts.now()
	isDue := func(e entry[T]) bool { return !f.due(e.Task).After(now) }

	recall := make([]entry[T], 0, len(f.recall))
	var back []entry[T]
	for _, e := range f.recall {
		if isDue(e) {
			recall = append(recall, e)
			continue
		}
		back = append(back, e)
	}

	moved := f.pool.extract(isDue)
	recall = append(recall, moved...)
	for _, e := range back {
		f.pool.push(e)
	}
	f.recall = recall

	f.log.Debug().
		Int("to_pool", len(back)).
		Int("to_recall", len(moved)).
		Msg("reconciled partitions")
}

// CompleteOne advances due items, draws one at random from the recall set
// and reviews it through interact.
//
// With nothing to review it returns ErrNoItems for an empty deck or a
// *NothingDueError carrying the wait until the next item comes due.
//
// On success the item returns to the pool and the pool is re-keyed, since
// the review may have changed the shared state.
//
// If the review fails, the item goes back to the recall set exactly as it
// was, the shared state is rolled back when S implements StateCloner, and
// the failure is returned as an *InteractionError.
func (f *Facade[T, S]) CompleteOne(interact Interaction) error {
	f.AdvanceDue()

	e, ok := f.takeRandom()
	if !ok {
		return f.idleError()
	}

	backup := e.Task.Clone()
	var (
		stateBackup S
		canRestore  bool
	)
	if c, ok := any(&f.state).(StateCloner[S]); ok {
		stateBackup, canRestore = c.Clone(), true
	}

	err := e.Task.Complete(&f.state, f.retention, func(p content.Prompt) (content.Response, error) {
		return interact(e.ID, p)
	})
	if err != nil {
		if canRestore {
			f.state = stateBackup
		}
		f.recall = append(f.recall, entry[T]{ID: e.ID, Task: backup})
		f.log.Debug().Err(err).Stringer("id", e.ID).Msg("review failed, item requeued")
		return &InteractionError{ID: e.ID, Err: err}
	}

	// Complete may have changed the shared state the pool is keyed on.
	f.pool.rekey()
	f.pool.push(e)
	f.log.Debug().
		Stringer("id", e.ID).
		Time("next", f.due(e.Task)).
		Msg("review completed")
	return nil
}

func (f *Facade[T, S]) idleError() error {
	e, ok := f.pool.peek()
	if !ok {
		return ErrNoItems
	}
	return &NothingDueError{Wait: max(f.due(e.Task).Sub(f.opts.now()), 0)}
}

// TimeUntilNextReview reports how long until a review is available. It is
// zero when the recall set is non-empty, and ok is false when the deck is
// empty.
func (f *Facade[T, S]) TimeUntilNextReview() (wait time.Duration, ok bool) {
	if len(f.recall) > 0 {
		return 0, true
	}
	e, ok := f.pool.peek()
	if !ok {
		return 0, false
	}
	return max(f.due(e.Task).Sub(f.opts.now()), 0), true
}

// SetTargetRetention changes the retention and reconciles both partitions
// under the new key. Returns ErrInvalidRetention unless 0 < r <= 1.
func (f *Facade[T, S]) SetTargetRetention(r float64) error {
	if err := validateRetention(r); err != nil {
		return err
	}
	f.retention = r
	f.Reconcile()
	return nil
}

// Optimize refits the shared state from its accumulated history and
// reconciles. Returns ErrNotOptimizable when S does not implement
// StateOptimizer. A failed refit leaves the partitions untouched.
func (f *Facade[T, S]) Optimize(ctx context.Context) error {
	o, ok := any(&f.state).(StateOptimizer)
	if !ok {
		return ErrNotOptimizable
	}
	if err := o.Optimize(ctx); err != nil {
		return fmt.Errorf("deck: optimize %q: %w", f.name, err)
	}
	f.Reconcile()
	return nil
}

// newID mints an ID from the facade's random source, retrying on the
// vanishingly rare collision with an existing item.
func (f *Facade[T, S]) newID() ID {
	for {
		id, err := uuid.NewRandomFromReader(f.opts.rng)
		if err != nil {
			id = uuid.New()
		}
		if !f.contains(id) {
			return id
		}
	}
}

func (f *Facade[T, S]) contains(id ID) bool {
	if f.pool.contains(id) {
		return true
	}
	return slices.ContainsFunc(f.recall, func(e entry[T]) bool { return e.ID == id })
}
