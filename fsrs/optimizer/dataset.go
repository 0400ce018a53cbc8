package optimizer

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/sky-flux/deck/fsrs"
)

// review is one training sample derived from a ReviewLog.
type review struct {
	rating      fsrs.Rating
	elapsedDays float64 // 0 for a card's first review
	label       float64 // 0 for Again, 1 for any recall
	reviewTime  time.Time
}

// formatRevlogs groups logs per card in chronological order.
func formatRevlogs(logs []fsrs.ReviewLog) map[int64][]review {
	if len(logs) == 0 {
		return nil
	}

	byCard := lo.GroupBy(logs, func(l fsrs.ReviewLog) int64 { return l.CardID })
	return lo.MapValues(byCard, func(history []fsrs.ReviewLog, _ int64) []review {
		slices.SortStableFunc(history, func(a, b fsrs.ReviewLog) int {
			return a.ReviewDatetime.Compare(b.ReviewDatetime)
		})
		out := make([]review, len(history))
		prev := history[0].ReviewDatetime
		for i, l := range history {
			out[i] = review{
				rating:      l.Rating,
				elapsedDays: l.ReviewDatetime.Sub(prev).Hours() / 24,
				label:       lo.Ternary(l.Rating == fsrs.Again, 0.0, 1.0),
				reviewTime:  l.ReviewDatetime,
			}
			prev = l.ReviewDatetime
		}
		return out
	})
}

// countCrossDayReviews returns how many samples would contribute to the loss.
func countCrossDayReviews(data map[int64][]review) int {
	n := 0
	for _, history := range data {
		n += crossDay(history)
	}
	return n
}

func crossDay(history []review) int {
	return lo.CountBy(history, func(r review) bool { return r.elapsedDays >= 1 })
}
