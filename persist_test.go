package deck

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalLoadRoundTrip(t *testing.T) {
	clock := &fakeClock{t: t0}
	f := newFakeFacade(t, clock)
	q := tmpl(t, "{} is blue", "sky")
	for range 4 {
		f.Create(q)
	}
	f.Insert(&fakeItem{Tmpl: q, Base: t0.Add(3 * time.Hour)})
	require.NoError(t, f.CompleteOne(answer("sky")))
	require.NoError(t, f.CompleteOne(answer("sea")))
	require.NoError(t, f.SetTargetRetention(0.8))

	data, err := json.Marshal(f)
	require.NoError(t, err)

	g, err := Load[*fakeItem, fakeState](data, fakeFactory(t0), WithClock(clock.now))
	require.NoError(t, err)

	assert.Equal(t, f.Name(), g.Name())
	assert.Equal(t, f.TargetRetention(), g.TargetRetention())
	assert.Equal(t, f.SharedState().Scale, g.SharedState().Scale)
	assert.Equal(t, f.SharedState().Reviews, g.SharedState().Reviews)
	assert.Equal(t, f.Len(), g.Len())
	assert.Equal(t, f.DueCount(), g.DueCount())

	for id, want := range f.All() {
		got, ok := g.Get(id)
		require.True(t, ok, "id %s survives", id)
		assert.Equal(t, want, got)
	}

	again, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestMarshalWritesPoolInDueOrder(t *testing.T) {
	f := newFakeFacade(t, &fakeClock{t: t0})
	q := tmpl(t, "{}", "a")
	rng := rand.New(rand.NewSource(7))
	for range 30 {
		f.Insert(&fakeItem{Tmpl: q, Base: t0.Add(time.Duration(rng.Intn(1000)+1) * time.Minute)})
	}

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var snap snapshot[*fakeItem, fakeState]
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Len(t, snap.Pool, 30)
	assert.Empty(t, snap.Recall)
	for i := 1; i < len(snap.Pool); i++ {
		prev := snap.Pool[i-1].Task.NextRepetition(&snap.SharedState, snap.TargetRetention)
		cur := snap.Pool[i].Task.NextRepetition(&snap.SharedState, snap.TargetRetention)
		assert.False(t, cur.Before(prev), "pool entry %d out of order", i)
	}
	assert.Equal(t, "test", snap.Name)
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	f := newFakeFacade(t, &fakeClock{t: t0})
	q := tmpl(t, "{}", "a")
	f.Create(q)
	f.Insert(&fakeItem{Tmpl: q, Base: t0.Add(time.Hour)})
	f.AdvanceDue()

	data, err := json.Marshal(f)
	require.NoError(t, err)
	var snap snapshot[*fakeItem, fakeState]
	require.NoError(t, json.Unmarshal(data, &snap))
	snap.Recall[0].ID = snap.Pool[0].ID
	data, err = json.Marshal(snap)
	require.NoError(t, err)

	_, err = Load[*fakeItem, fakeState](data, fakeFactory(t0))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestLoadValidates(t *testing.T) {
	_, err := Load[*fakeItem, fakeState]([]byte(`{"name":"x","pool":[],"recall":[],"target_retention":0}`), fakeFactory(t0))
	assert.ErrorIs(t, err, ErrInvalidRetention)

	_, err = Load[*fakeItem, fakeState]([]byte(`{"name":`), fakeFactory(t0))
	assert.Error(t, err)
}

func TestLoadRejectsMissingTasks(t *testing.T) {
	for _, part := range []string{"pool", "recall"} {
		data := `{"name":"x","target_retention":0.9,"` + part + `":[` +
			`{"id":"6f1c2a8e-9d4b-4c3e-8a2f-1b7d5e9c0a41","task":null},` +
			`{"id":"0b5e7d21-3c9a-4f6e-b1d8-2a4c6e8f0b13","task":null}]}`
		_, err := Load[*fakeItem, fakeState]([]byte(data), fakeFactory(t0))
		assert.ErrorContains(t, err, "has no task", part)
	}
}

func TestLoadKeepsStateDefaults(t *testing.T) {
	f, err := Load[*fakeItem, fakeState]([]byte(`{"name":"x","target_retention":0.9}`), fakeFactory(t0))
	require.NoError(t, err)
	assert.Equal(t, 1.0, f.SharedState().Scale)
	assert.Zero(t, f.Len())
}
