package leitner

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sky-flux/deck"
	"github.com/sky-flux/deck/content"
	"github.com/sky-flux/deck/fsrstask"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newCard(t *testing.T) *Card {
	t.Helper()
	tmpl, err := content.NewTemplate("2 + 2 = {}", "4")
	require.NoError(t, err)
	return NewCard(tmpl)
}

func reply(resp ...string) deck.Interact {
	return func(content.Prompt) (content.Response, error) { return resp, nil }
}

func TestIntervalScalesWithRetention(t *testing.T) {
	var s Schedule
	s.SetDefaults()

	assert.Equal(t, 24*time.Hour, s.Interval(1, 0.9))
	assert.Equal(t, 16*24*time.Hour, s.Interval(5, 0.9))
	assert.Equal(t, 16*24*time.Hour, s.Interval(9, 0.9), "boxes past the last use its interval")
	assert.Equal(t, 24*time.Hour, s.Interval(0, 0.9))
	assert.Zero(t, s.Interval(3, 1))
	assert.Greater(t, s.Interval(1, 0.8), s.Interval(1, 0.9))
	assert.Less(t, s.Interval(1, 0.95), s.Interval(1, 0.9))
}

func TestIntervalSaturatesInsteadOfOverflowing(t *testing.T) {
	var s Schedule
	s.SetDefaults()

	got := s.Interval(5, math.SmallestNonzeroFloat64)
	assert.Equal(t, time.Duration(math.MaxInt64), got)
	assert.Positive(t, s.Interval(1, math.SmallestNonzeroFloat64))
}

func TestCompletePromotesAndResets(t *testing.T) {
	var s Schedule
	s.SetDefaults()
	now := t0
	s.SetClock(func() time.Time { return now })

	c := newCard(t)
	assert.True(t, c.NextRepetition(&s, 0.9).IsZero())

	for want := 2; want <= 5; want++ {
		require.NoError(t, c.Complete(&s, 0.9, reply("4")))
		assert.Equal(t, want, c.Box)
	}
	require.NoError(t, c.Complete(&s, 0.9, reply("4")))
	assert.Equal(t, 5, c.Box, "top box is sticky")
	assert.Equal(t, t0.Add(16*24*time.Hour), c.NextRepetition(&s, 0.9))

	now = t0.Add(time.Hour)
	require.NoError(t, c.Complete(&s, 0.9, reply("5")))
	assert.Equal(t, 1, c.Box)
	assert.Equal(t, now.Add(24*time.Hour), c.NextRepetition(&s, 0.9))
}

func TestCompleteFailureLeavesCard(t *testing.T) {
	var s Schedule
	s.SetDefaults()
	c := newCard(t)
	boom := errors.New("closed")
	err := c.Complete(&s, 0.9, func(content.Prompt) (content.Response, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.Box)
	assert.Nil(t, c.LastReview)
}

func TestCloneIsIndependent(t *testing.T) {
	var s Schedule
	s.SetDefaults()
	s.SetClock(func() time.Time { return t0 })
	c := newCard(t)
	require.NoError(t, c.Complete(&s, 0.9, reply("4")))

	cc := c.Clone()
	*cc.LastReview = t0.Add(time.Hour)
	cc.Box = 4
	assert.Equal(t, t0, *c.LastReview)
	assert.Equal(t, 2, c.Box)

	sc := s.Clone()
	sc.Intervals[0] = time.Minute
	assert.Equal(t, 24*time.Hour, s.Intervals[0])
}

func TestFacadeIsNotOptimizable(t *testing.T) {
	f, err := deck.New[*Card, Schedule]("math", 0.9, NewCard)
	require.NoError(t, err)
	assert.Equal(t, DefaultIntervals, f.SharedState().Intervals)
	assert.ErrorIs(t, f.Optimize(context.Background()), deck.ErrNotOptimizable)
}

func TestMigrateFromFSRS(t *testing.T) {
	now := t0
	clock := func() time.Time { return now }
	src, err := deck.New[*fsrstask.Task, fsrstask.Model]("vocab", 0.85, fsrstask.NewTask,
		deck.WithClock(clock), deck.WithRand(rand.New(rand.NewSource(2))))
	require.NoError(t, err)
	src.SharedState().SetClock(clock)
	for _, w := range []string{"uno", "dos", "tres"} {
		tmpl, err := content.NewTemplate(w+" {}", w)
		require.NoError(t, err)
		src.Create(tmpl)
	}
	require.NoError(t, src.CompleteOne(func(deck.ID, content.Prompt) (content.Response, error) {
		return content.Response{"x"}, nil
	}))

	dst, err := deck.Migrate[*Card, Schedule](src, NewCard)
	require.NoError(t, err)
	assert.Equal(t, "vocab", dst.Name())
	assert.Equal(t, 0.85, dst.TargetRetention())
	assert.Equal(t, 3, dst.Len())
	for _, c := range dst.All() {
		assert.Equal(t, 1, c.Box)
		assert.Nil(t, c.LastReview)
	}

	back, err := deck.Migrate[*fsrstask.Task, fsrstask.Model](dst, fsrstask.NewTask)
	require.NoError(t, err)
	assert.Equal(t, 3, back.Len())
	assert.Empty(t, back.SharedState().Logs)
}
