package fsrs

import (
	"fmt"
	"time"
)

// State is where a card sits in the learning cycle.
type State int

const (
	Learning   State = iota + 1 // new, working through the learning steps
	Review                      // scheduled by interval
	Relearning                  // lapsed, working through the relearning steps
)

var states = [...]State{Learning, Review, Relearning}

func (s State) String() string {
	switch s {
	case Learning:
		return "Learning"
	case Review:
		return "Review"
	case Relearning:
		return "Relearning"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes s by name.
func (s State) MarshalText() ([]byte, error) {
	if s < Learning || s > Relearning {
		return nil, fmt.Errorf("fsrs: invalid state: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for _, v := range states {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("fsrs: invalid state: %q", text)
}

// Card is the memory and scheduling state of one item. Stability,
// Difficulty and LastReview stay nil until the first review; Step is nil
// once the card is in Review.
type Card struct {
	CardID     int64      `json:"card_id"`
	State      State      `json:"state"`
	Step       *int       `json:"step"`
	Stability  *float64   `json:"stability"`
	Difficulty *float64   `json:"difficulty"`
	Due        time.Time  `json:"due"`
	LastReview *time.Time `json:"last_review"`
}

// NewCard returns an unreviewed Learning card. Its zero Due makes it
// immediately reviewable.
func NewCard(id int64) Card {
	c := Card{CardID: id, State: Learning}
	c.setStep(0)
	return c
}

// Reviewed reports whether the card has been reviewed at least once.
func (c Card) Reviewed() bool { return c.LastReview != nil }

// ReviewLog is one review of a card. ReviewDuration, in milliseconds, is
// only needed by retention optimization.
type ReviewLog struct {
	CardID         int64     `json:"card_id"`
	Rating         Rating    `json:"rating"`
	ReviewDatetime time.Time `json:"review_datetime"`
	ReviewDuration *int      `json:"review_duration,omitempty"`
}

func (c Card) clone() Card {
	c.Step = clonePtr(c.Step)
	c.Stability = clonePtr(c.Stability)
	c.Difficulty = clonePtr(c.Difficulty)
	c.LastReview = clonePtr(c.LastReview)
	return c
}

func clonePtr[V any](p *V) *V {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (c *Card) setStability(s float64)  { c.Stability = &s }
func (c *Card) setDifficulty(d float64) { c.Difficulty = &d }
func (c *Card) setStep(step int)        { c.Step = &step }
func (c *Card) clearStep()              { c.Step = nil }
