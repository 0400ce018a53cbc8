// Package leitner is a Leitner-box item algorithm for the deck scheduler.
//
// Each card sits in a numbered box. A correct answer moves it one box up, a
// wrong answer sends it back to box 1. The review interval grows with the
// box and is scaled by the deck's target retention, so it plugs into the
// same facade as FSRS and can be migrated to and from it.
package leitner

import (
	"math"
	"slices"
	"time"

	"github.com/sky-flux/deck"
	"github.com/sky-flux/deck/content"
)

var _ deck.Item[*Card, Schedule] = (*Card)(nil)

// DefaultIntervals are the base intervals of boxes 1 through 5 at a target
// retention of 0.9.
var DefaultIntervals = []time.Duration{
	24 * time.Hour,
	2 * 24 * time.Hour,
	4 * 24 * time.Hour,
	8 * 24 * time.Hour,
	16 * 24 * time.Hour,
}

const baseRetention = 0.9

// Schedule is the shared state: one base interval per box.
type Schedule struct {
	Intervals []time.Duration `json:"intervals"`

	now func() time.Time
}

// SetDefaults installs DefaultIntervals.
func (s *Schedule) SetDefaults() {
	s.Intervals = slices.Clone(DefaultIntervals)
}

// SetClock replaces the clock used to timestamp reviews.
func (s *Schedule) SetClock(now func() time.Time) {
	s.now = now
}

// Clone returns a copy with its own interval table.
func (s Schedule) Clone() Schedule {
	s.Intervals = slices.Clone(s.Intervals)
	return s
}

// Boxes returns the number of boxes.
func (s *Schedule) Boxes() int {
	return len(s.intervals())
}

func (s *Schedule) intervals() []time.Duration {
	if len(s.Intervals) == 0 {
		return DefaultIntervals
	}
	return s.Intervals
}

func (s *Schedule) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Interval returns the wait after a review that left a card in box.
// Intervals shrink as retention rises; at retention 1 a card is always due.
func (s *Schedule) Interval(box int, retention float64) time.Duration {
	ivls := s.intervals()
	base := ivls[min(max(box, 1), len(ivls))-1]
	scale := math.Log(retention) / math.Log(baseRetention)
	if d := float64(base) * scale; d < math.MaxInt64 {
		return time.Duration(d)
	}
	return math.MaxInt64
}

// Card is one Leitner-scheduled item.
type Card struct {
	Tmpl       content.Template `json:"template"`
	Box        int              `json:"box"`
	LastReview *time.Time       `json:"last_review,omitempty"`
}

// NewCard returns an unreviewed card in box 1. It satisfies deck.Factory.
func NewCard(tmpl content.Template) *Card {
	return &Card{Tmpl: tmpl, Box: 1}
}

// NextRepetition is the last review plus the box interval. An unreviewed
// card is due immediately.
func (c *Card) NextRepetition(s *Schedule, retention float64) time.Time {
	if c.LastReview == nil {
		return time.Time{}
	}
	return c.LastReview.Add(s.Interval(c.Box, retention))
}

// Complete asks the prompt, then promotes the card on a correct answer or
// resets it to box 1 on a wrong one.
func (c *Card) Complete(s *Schedule, _ float64, interact deck.Interact) error {
	now := s.clock()
	resp, err := interact(c.Tmpl.Prompt)
	if err != nil {
		return err
	}
	if c.Tmpl.Check(resp) {
		c.Box = min(max(c.Box, 1)+1, s.Boxes())
	} else {
		c.Box = 1
	}
	c.LastReview = &now
	return nil
}

// Template returns the card's content.
func (c *Card) Template() content.Template { return c.Tmpl }

// Clone returns an independent copy.
func (c *Card) Clone() *Card {
	out := *c
	if c.LastReview != nil {
		t := *c.LastReview
		out.LastReview = &t
	}
	return &out
}
