package deck

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sky-flux/deck/content"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var errOptimize = errors.New("optimize failed")

type fakeState struct {
	Scale   float64 `json:"scale"`
	Reviews int     `json:"reviews"`

	failOptimize bool
	optimizeTo   float64
}

func (s *fakeState) SetDefaults() { s.Scale = 1 }

func (s fakeState) Clone() fakeState { return s }

func (s *fakeState) Optimize(context.Context) error {
	if s.failOptimize {
		return errOptimize
	}
	s.Scale = s.optimizeTo
	return nil
}

// fakeItem is due at Base+Offset, stretched by the shared scale and by
// retention. A correct review pushes it a day out; a wrong one a minute.
type fakeItem struct {
	Tmpl    content.Template `json:"template"`
	Base    time.Time        `json:"base"`
	Offset  time.Duration    `json:"offset"`
	Reviews int              `json:"reviews"`
}

func (i *fakeItem) NextRepetition(s *fakeState, retention float64) time.Time {
	factor := s.Scale * math.Round((1-retention)*1000) / 100
	return i.Base.Add(time.Duration(float64(i.Offset) * factor))
}

func (i *fakeItem) Complete(s *fakeState, _ float64, interact Interact) error {
	// State is touched before the exchange so rollback is observable.
	s.Reviews++
	resp, err := interact(i.Tmpl.Prompt)
	if err != nil {
		return err
	}
	i.Reviews++
	if i.Tmpl.Check(resp) {
		i.Offset += 24 * time.Hour
	} else {
		i.Offset = time.Minute
	}
	return nil
}

func (i *fakeItem) Template() content.Template { return i.Tmpl }

func (i *fakeItem) Clone() *fakeItem {
	c := *i
	return &c
}

func fakeFactory(base time.Time) Factory[*fakeItem] {
	return func(tmpl content.Template) *fakeItem {
		return &fakeItem{Tmpl: tmpl, Base: base}
	}
}

// staticItem has a plain state with no optional capabilities.
type staticState struct {
	Seen int `json:"seen"`
}

type staticItem struct {
	Tmpl content.Template `json:"template"`
	Due  time.Time        `json:"due"`
}

func (i *staticItem) NextRepetition(*staticState, float64) time.Time { return i.Due }

func (i *staticItem) Complete(s *staticState, _ float64, interact Interact) error {
	if _, err := interact(i.Tmpl.Prompt); err != nil {
		return err
	}
	s.Seen++
	i.Due = i.Due.Add(time.Hour)
	return nil
}

func (i *staticItem) Template() content.Template { return i.Tmpl }

func (i *staticItem) Clone() *staticItem {
	c := *i
	return &c
}

func newStaticItem(tmpl content.Template) *staticItem {
	return &staticItem{Tmpl: tmpl}
}

// rankItem is due Hours after Base, or at Base while the shared state
// promotes its Hours. Reviewing it promotes another item and moves it out
// of the way, so the pool order depends on state the review changes.
type rankState struct {
	Promoted int `json:"promoted"`
}

type rankItem struct {
	Tmpl    content.Template `json:"template"`
	Base    time.Time        `json:"base"`
	Hours   int              `json:"hours"`
	Promote int              `json:"promote"`
}

func (i *rankItem) NextRepetition(s *rankState, _ float64) time.Time {
	if i.Hours != 0 && s.Promoted == i.Hours {
		return i.Base
	}
	return i.Base.Add(time.Duration(i.Hours) * time.Hour)
}

func (i *rankItem) Complete(s *rankState, _ float64, interact Interact) error {
	if _, err := interact(i.Tmpl.Prompt); err != nil {
		return err
	}
	s.Promoted = i.Promote
	i.Hours += 10
	return nil
}

func (i *rankItem) Template() content.Template { return i.Tmpl }

func (i *rankItem) Clone() *rankItem {
	c := *i
	return &c
}

func tmpl(t *testing.T, text string, answer ...string) content.Template {
	t.Helper()
	tm, err := content.NewTemplate(text, answer...)
	require.NoError(t, err)
	return tm
}

func newFakeFacade(t *testing.T, clock *fakeClock) *Facade[*fakeItem, fakeState] {
	t.Helper()
	f, err := New[*fakeItem, fakeState]("test", 0.9, fakeFactory(clock.t),
		WithClock(clock.now),
		WithRand(rand.New(rand.NewSource(1))),
	)
	require.NoError(t, err)
	return f
}

func answer(resp ...string) Interaction {
	return func(ID, content.Prompt) (content.Response, error) {
		return resp, nil
	}
}
