package deck

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Sentinel errors for the deck package.
// Use errors.Is to check: errors.Is(err, deck.ErrNoItems)
var (
	ErrNoItems          = errors.New("deck: no items")
	ErrNothingDue       = errors.New("deck: nothing due yet")
	ErrInvalidRetention = errors.New("deck: target retention out of range (0, 1]")
	ErrNotOptimizable   = errors.New("deck: shared state does not support optimization")
	ErrDuplicateID      = errors.New("deck: duplicate item id")
)

// NothingDueError reports that items exist but none is due. Wait is the time
// until the earliest item comes due; it is never negative.
// It matches ErrNothingDue under errors.Is.
type NothingDueError struct {
	Wait time.Duration
}

func (e *NothingDueError) Error() string {
	return fmt.Sprintf("%s: next review in %s", ErrNothingDue, e.Wait)
}

// Is reports whether target is ErrNothingDue.
func (e *NothingDueError) Is(target error) bool {
	return target == ErrNothingDue
}

// InteractionError wraps a failed review of item ID. The item is back in the
// recall set exactly as it was before the review started.
type InteractionError struct {
	ID  ID
	Err error
}

func (e *InteractionError) Error() string {
	return fmt.Sprintf("deck: review of %s failed: %v", e.ID, e.Err)
}

func (e *InteractionError) Unwrap() error {
	return e.Err
}

func validateRetention(r float64) error {
	if math.IsNaN(r) || r <= 0 || r > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidRetention, r)
	}
	return nil
}
