package optimizer

import (
	"math"

	"github.com/sky-flux/deck/fsrs"
)

const (
	// predictions are kept this far from 0 and 1 so the log stays finite
	bceClamp = 1e-7
	// step used for central differences
	gradEps = 1e-5
)

// bceLoss is the binary cross-entropy of predicting recall probability p
// for outcome y.
func bceLoss(p, y float64) float64 {
	p = min(max(p, bceClamp), 1-bceClamp)
	return -(y*math.Log(p) + (1-y)*math.Log1p(-p))
}

// computeBatchLoss replays every card's history under params and averages
// the loss over reviews at least a day after the previous one. Same-day
// reviews carry no signal about long-term forgetting and are skipped.
func computeBatchLoss(params weights, data map[int64][]review) float64 {
	s, err := fsrs.NewScheduler(fsrs.SchedulerConfig{Parameters: params, DisableFuzzing: true})
	if err != nil {
		return 0
	}

	var sum float64
	var n int
	for id, history := range data {
		card := fsrs.NewCard(id)
		card.Due = history[0].reviewTime
		for _, r := range history {
			if card.Reviewed() && r.elapsedDays >= 1 {
				sum += bceLoss(s.Retrievability(card, r.reviewTime), r.label)
				n++
			}
			card, _ = s.ReviewCard(card, r.rating, r.reviewTime)
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// numericalGradient estimates the loss gradient one weight at a time with
// central differences.
func numericalGradient(params weights, data map[int64][]review) weights {
	var grad weights
	for i := range params {
		up, down := params, params
		up[i] += gradEps
		down[i] -= gradEps
		grad[i] = (computeBatchLoss(up, data) - computeBatchLoss(down, data)) / (2 * gradEps)
	}
	return grad
}
