package fsrs

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// minFuzzInterval is the shortest interval, in days, that gets fuzzed.
const minFuzzInterval = 2.5

// fuzzBands widen the fuzz range by rate for every day an interval spends
// inside [from, to).
var fuzzBands = [...]struct{ from, to, rate float64 }{
	{minFuzzInterval, 7, 0.15},
	{7, 20, 0.10},
	{20, math.Inf(1), 0.05},
}

// fuzzDelta is the half-width of the fuzz range around interval days.
func fuzzDelta(interval float64) float64 {
	delta := 1.0
	for _, b := range fuzzBands {
		if interval > b.from {
			delta += b.rate * (min(interval, b.to) - b.from)
		}
	}
	return delta
}

// fuzzSource seeds a generator from the card and review time so a replayed
// review draws the same fuzz.
func fuzzSource(cardID int64, at time.Time) *rand.Rand {
	h := fnv.New64a()
	var seed [16]byte
	binary.LittleEndian.PutUint64(seed[:8], uint64(cardID))
	binary.LittleEndian.PutUint64(seed[8:], uint64(at.UnixNano()))
	h.Write(seed[:])
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// applyFuzz draws an interval near days from rng, never below 2 days nor
// above maxDays. Intervals shorter than minFuzzInterval are returned as is.
func applyFuzz(days, maxDays int, rng *rand.Rand) int {
	ivl := float64(days)
	if ivl < minFuzzInterval {
		return days
	}
	delta := fuzzDelta(ivl)
	hi := min(int(math.Round(ivl+delta)), maxDays)
	lo := min(max(2, int(math.Round(ivl-delta))), hi)
	return min(lo+int(math.Round(rng.Float64()*float64(hi-lo+1))), maxDays)
}
