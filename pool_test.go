package deck

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyed struct{ at time.Duration }

func TestPoolOrdersByLiveKey(t *testing.T) {
	scale := time.Duration(1)
	p := newPool(func(k *keyed) time.Time { return t0.Add(k.at * scale) })

	rng := rand.New(rand.NewSource(3))
	ids := make([]ID, 50)
	for i := range ids {
		ids[i] = uuid.New()
		p.push(entry[*keyed]{ID: ids[i], Task: &keyed{at: time.Duration(rng.Intn(100)-50) * time.Minute}})
	}

	require.True(t, p.contains(ids[10]))
	_, ok := p.remove(ids[10])
	require.True(t, ok)
	assert.False(t, p.contains(ids[10]))
	_, ok = p.remove(ids[10])
	assert.False(t, ok)

	// Flipping the key's sign reverses the order once the heap is rebuilt.
	scale = -1
	moved := p.extract(func(e entry[*keyed]) bool { return e.Task.at == 0 })

	var prev time.Time
	n := 0
	for p.Len() > 0 {
		e := p.popMin()
		at := p.due(e.Task)
		if n > 0 {
			assert.False(t, at.Before(prev), "pop %d out of order", n)
		}
		prev = at
		n++
	}
	assert.Equal(t, 49, n+len(moved))
	assert.Empty(t, p.index)
}
