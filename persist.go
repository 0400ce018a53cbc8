package deck

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// snapshot is the persisted form of a Facade. Pool entries are written in
// due order; recall entries in their current order.
type snapshot[T any, S any] struct {
	Name            string     `json:"name"`
	Pool            []entry[T] `json:"pool"`
	Recall          []entry[T] `json:"recall"`
	TargetRetention float64    `json:"target_retention"`
	SharedState     S          `json:"shared_state"`
}

// MarshalJSON implements json.Marshaler. IDs are written verbatim and
// survive a round trip through Load.
func (f *Facade[T, S]) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot[T, S]{
		Name:            f.name,
		Pool:            f.pool.sorted(),
		Recall:          lo.Ternary(f.recall == nil, []entry[T]{}, f.recall),
		TargetRetention: f.retention,
		SharedState:     f.state,
	})
}

// Load restores a facade written by MarshalJSON. Fields missing from the
// shared state keep their defaults. Entries keep their partition; call
// AdvanceDue or Reconcile to bring the partitions up to date.
//
// Returns ErrInvalidRetention for a stored retention outside (0, 1] and
// ErrDuplicateID when two entries share an ID.
func Load[T Item[T, S], S any](data []byte, factory Factory[T], opts ...Option) (*Facade[T, S], error) {
	snap := snapshot[T, S]{SharedState: defaultState[S]()}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("deck: decode: %w", err)
	}

	all := append(append([]entry[T]{}, snap.Pool...), snap.Recall...)
	if i := slices.IndexFunc(all, func(e entry[T]) bool { return lo.IsNil(e.Task) }); i >= 0 {
		return nil, fmt.Errorf("deck: decode: entry %s has no task", all[i].ID)
	}
	if dups := lo.FindDuplicatesBy(all, func(e entry[T]) ID { return e.ID }); len(dups) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, dups[0].ID)
	}

	f, err := New[T, S](snap.Name, snap.TargetRetention, factory, opts...)
	if err != nil {
		return nil, err
	}
	f.state = snap.SharedState
	for _, e := range snap.Pool {
		f.pool.push(e)
	}
	f.recall = snap.Recall
	return f, nil
}
