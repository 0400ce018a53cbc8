package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/sky-flux/deck/fsrs"
)

var (
	// ErrInsufficientLogs is returned when fewer than MinRetentionLogs review logs are provided.
	ErrInsufficientLogs = errors.New("optimizer: not enough review logs for optimal retention")

	// ErrMissingDuration is returned when any ReviewDuration is nil.
	ErrMissingDuration = errors.New("optimizer: ReviewDuration must not be nil for optimal retention")
)

const (
	simulatedCards = 1000
	simulatedDays  = 365
)

var recalled = []fsrs.Rating{fsrs.Hard, fsrs.Good, fsrs.Easy}

// outcomes is an observed rating distribution with the mean time spent per rating.
type outcomes struct {
	prob [fsrs.Easy + 1]float64
	cost [fsrs.Easy + 1]float64
}

// pick maps a uniform draw u onto one of ratings. The last rating absorbs
// whatever probability mass the others leave.
func (o *outcomes) pick(u float64, ratings []fsrs.Rating) fsrs.Rating {
	for _, r := range ratings[:len(ratings)-1] {
		if u < o.prob[r] {
			return r
		}
		u -= o.prob[r]
	}
	return ratings[len(ratings)-1]
}

// reviewProfile summarizes how a reviewer behaves: the rating mix on a card's
// first review, and on later reviews the mix among successful ratings.
type reviewProfile struct {
	first outcomes
	later outcomes
}

// computeProbsAndCosts builds a reviewProfile from logs. Later-review
// probabilities ignore Again, since the simulation decides recall from the
// target retention itself.
func computeProbsAndCosts(logs []fsrs.ReviewLog) reviewProfile {
	var (
		prof                 reviewProfile
		firstN, recallN      float64
		firstSeen, laterSeen [fsrs.Easy + 1]float64
	)

	for _, history := range lo.GroupBy(logs, func(l fsrs.ReviewLog) int64 { return l.CardID }) {
		slices.SortStableFunc(history, func(a, b fsrs.ReviewLog) int {
			return a.ReviewDatetime.Compare(b.ReviewDatetime)
		})
		for i, l := range history {
			var secs float64
			if l.ReviewDuration != nil {
				secs = float64(*l.ReviewDuration)
			}
			if i == 0 {
				firstN++
				firstSeen[l.Rating]++
				prof.first.cost[l.Rating] += secs
				continue
			}
			laterSeen[l.Rating]++
			prof.later.cost[l.Rating] += secs
			if l.Rating != fsrs.Again {
				recallN++
			}
		}
	}

	for _, r := range fsrs.Ratings {
		if firstSeen[r] > 0 {
			prof.first.prob[r] = firstSeen[r] / firstN
			prof.first.cost[r] /= firstSeen[r]
		}
		if laterSeen[r] > 0 {
			prof.later.cost[r] /= laterSeen[r]
		}
	}
	for _, r := range recalled {
		if recallN == 0 {
			prof.later.prob[r] = 1.0 / float64(len(recalled))
			continue
		}
		prof.later.prob[r] = laterSeen[r] / recallN
	}
	return prof
}

// simulateCost estimates the review time spent per remembered card when
// studying simulatedCards new cards for a year at the given retention.
// The simulation is seeded, so equal inputs give equal costs.
func simulateCost(retention float64, params [21]float64, prof reviewProfile) float64 {
	s, err := fsrs.NewScheduler(fsrs.SchedulerConfig{
		Parameters:       params,
		DesiredRetention: retention,
		DisableFuzzing:   true,
	})
	if err != nil {
		return math.Inf(1)
	}

	rng := rand.New(rand.NewSource(42))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, simulatedDays)

	var spent float64
	for id := range int64(simulatedCards) {
		card := fsrs.NewCard(id + 1)
		rating := prof.first.pick(rng.Float64(), fsrs.Ratings[:])
		spent += prof.first.cost[rating]
		card, _ = s.ReviewCard(card, rating, start)

		for at := card.Due; !at.After(end); at = card.Due {
			rating = fsrs.Again
			if rng.Float64() < retention {
				rating = prof.later.pick(rng.Float64(), recalled)
			}
			spent += prof.later.cost[rating]
			card, _ = s.ReviewCard(card, rating, at)
		}
	}
	return spent / (retention * simulatedCards)
}

// ComputeOptimalRetention returns the candidate retention with the lowest
// simulated cost. Every log must carry a ReviewDuration.
func (o *Optimizer) ComputeOptimalRetention(ctx context.Context, params [21]float64, logs []fsrs.ReviewLog) (float64, error) {
	if len(logs) < o.minRetentionLogs {
		return 0, fmt.Errorf("%w: have %d, need %d", ErrInsufficientLogs, len(logs), o.minRetentionLogs)
	}
	if lo.SomeBy(logs, func(l fsrs.ReviewLog) bool { return l.ReviewDuration == nil }) {
		return 0, ErrMissingDuration
	}

	prof := computeProbsAndCosts(logs)
	best, bestCost := o.candidates[0], math.Inf(1)
	for _, c := range o.candidates {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if cost := simulateCost(c, params, prof); cost < bestCost {
			best, bestCost = c, cost
		}
	}
	return best, nil
}
