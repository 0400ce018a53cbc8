package fsrstask

import (
	"slices"
	"time"

	"github.com/sky-flux/deck"
	"github.com/sky-flux/deck/content"
	"github.com/sky-flux/deck/fsrs"
)

var _ deck.Item[*Task, Model] = (*Task)(nil)

// Task is one FSRS-scheduled item. CardID is assigned on the first review.
type Task struct {
	CardID  int64            `json:"card_id"`
	Tmpl    content.Template `json:"template"`
	History []fsrs.ReviewLog `json:"history"`
}

// NewTask returns an unreviewed task for tmpl. It satisfies deck.Factory.
func NewTask(tmpl content.Template) *Task {
	return &Task{Tmpl: tmpl}
}

// Card rebuilds the FSRS card by replaying the task's history.
func (t *Task) Card(m *Model, retention float64) fsrs.Card {
	card := fsrs.NewCard(t.CardID)
	replayed, err := m.scheduler(retention).RescheduleCard(card, t.History)
	if err != nil {
		return card
	}
	return replayed
}

// Retrievability returns the estimated probability of recall at now.
func (t *Task) Retrievability(m *Model, retention float64, now time.Time) float64 {
	return m.scheduler(retention).Retrievability(t.Card(m, retention), now)
}

// NextRepetition returns the replayed due time. An unreviewed task is due
// at the zero time, that is immediately.
func (t *Task) NextRepetition(m *Model, retention float64) time.Time {
	return t.Card(m, retention).Due
}

// Complete asks the prompt and grades the response: Good when every blank
// is answered correctly, Again otherwise. The review is appended to the
// task history and the model logs only after interact succeeds.
func (t *Task) Complete(m *Model, _ float64, interact deck.Interact) error {
	start := m.clock()
	resp, err := interact(t.Tmpl.Prompt)
	if err != nil {
		return err
	}
	ms := int(m.clock().Sub(start).Milliseconds())

	rating := fsrs.Again
	if t.Tmpl.Check(resp) {
		rating = fsrs.Good
	}
	if t.CardID == 0 {
		t.CardID = m.nextCardID()
	}

	log := fsrs.ReviewLog{
		CardID:         t.CardID,
		Rating:         rating,
		ReviewDatetime: start,
		ReviewDuration: &ms,
	}
	t.History = append(t.History, log)
	m.Logs = append(m.Logs, log)
	return nil
}

// Template returns the task's content.
func (t *Task) Template() content.Template { return t.Tmpl }

// Clone returns a copy whose history can grow independently.
func (t *Task) Clone() *Task {
	c := *t
	c.History = slices.Clone(t.History)
	return &c
}
