package deck

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLookahead is how far ahead of now an item may be due and still be
// drawn for review.
const DefaultLookahead = 10 * time.Second

type options struct {
	now       func() time.Time
	rng       *rand.Rand
	lookahead time.Duration
	logger    zerolog.Logger
}

func defaultOptions() options {
	return options{
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		lookahead: DefaultLookahead,
		logger:    zerolog.Nop(),
	}
}

// Option configures a Facade.
type Option func(*options)

// WithClock replaces the wall clock. Tests use it to step time by hand.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRand sets the source used for random selection and ID minting.
// A seeded source makes a session reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// WithLookahead sets the due-time tolerance. Negative values are treated as zero.
func WithLookahead(d time.Duration) Option {
	return func(o *options) {
		o.lookahead = max(d, 0)
	}
}

// WithLogger attaches a logger for debug tracing of partition moves.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func inheritOptions(src options) Option {
	return func(o *options) {
		*o = src
	}
}
