package deck

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sky-flux/deck/content"
)

// ID addresses one item for the lifetime of a Facade. IDs are minted only on
// insertion and serialize as fixed-width UUID text.
type ID = uuid.UUID

// ParseID decodes the text form of an ID.
func ParseID(s string) (ID, error) {
	return uuid.Parse(s)
}

// Interact exchanges one prompt for the reviewer's response.
type Interact func(content.Prompt) (content.Response, error)

// Interaction is the caller-supplied review callback. It receives the ID of
// the item under review along with its prompt.
type Interaction func(ID, content.Prompt) (content.Response, error)

// Item is the contract a review algorithm implements for its items.
// T is the item type itself (normally a pointer, since Complete mutates the
// item in place) and S is the algorithm's shared state.
type Item[T any, S any] interface {
	// NextRepetition returns when the item should next be reviewed.
	// It must be a pure function of the item, state and retention.
	NextRepetition(state *S, retention float64) time.Time

	// Complete performs one review through interact and records the outcome
	// in the item and state. If interact fails, Complete returns its error.
	Complete(state *S, retention float64, interact Interact) error

	// Template returns the item's content without any review history.
	Template() content.Template

	// Clone returns an independent copy of the item.
	Clone() T
}

// Factory builds a fresh, never-reviewed item from a template.
type Factory[T any] func(content.Template) T

// StateDefaulter is implemented by shared state whose zero value needs
// filling in before use.
type StateDefaulter interface {
	SetDefaults()
}

// StateOptimizer is implemented by shared state that can refit itself from
// the review history it has accumulated.
type StateOptimizer interface {
	Optimize(ctx context.Context) error
}

// StateCloner is implemented by shared state that can be snapshotted, which
// lets a failed review roll the state back.
type StateCloner[S any] interface {
	Clone() S
}

func defaultState[S any]() S {
	var s S
	if d, ok := any(&s).(StateDefaulter); ok {
		d.SetDefaults()
	}
	return s
}
