package fsrs

import (
	"cmp"
	"fmt"
	"time"
)

// Defaults applied by NewScheduler to zero-valued SchedulerConfig fields.
var (
	DefaultDesiredRetention = 0.9
	DefaultLearningSteps    = []time.Duration{time.Minute, 10 * time.Minute}
	DefaultRelearningSteps  = []time.Duration{10 * time.Minute}
	DefaultMaximumInterval  = 36500
)

const day = 24 * time.Hour

// SchedulerConfig configures a Scheduler. Zero fields take the defaults above.
// A nil step list means the default steps; an empty one means none.
type SchedulerConfig struct {
	Parameters       [21]float64     `json:"parameters"`
	DesiredRetention float64         `json:"desired_retention"`
	LearningSteps    []time.Duration `json:"learning_steps"`
	RelearningSteps  []time.Duration `json:"relearning_steps"`
	MaximumInterval  int             `json:"maximum_interval"` // days
	DisableFuzzing   bool            `json:"disable_fuzzing"`
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.Parameters == ([21]float64{}) {
		c.Parameters = DefaultParameters
	}
	c.DesiredRetention = cmp.Or(c.DesiredRetention, DefaultDesiredRetention)
	c.MaximumInterval = cmp.Or(c.MaximumInterval, DefaultMaximumInterval)
	if c.LearningSteps == nil {
		c.LearningSteps = DefaultLearningSteps
	}
	if c.RelearningSteps == nil {
		c.RelearningSteps = DefaultRelearningSteps
	}
	return c
}

func (c SchedulerConfig) validate() error {
	if err := ValidateParameters(c.Parameters); err != nil {
		return err
	}
	if c.DesiredRetention <= 0 || c.DesiredRetention > 1 {
		return fmt.Errorf("%w: desired retention %g outside (0, 1]", ErrInvalidConfig, c.DesiredRetention)
	}
	if c.MaximumInterval < 1 {
		return fmt.Errorf("%w: maximum interval %d days", ErrInvalidConfig, c.MaximumInterval)
	}
	return nil
}

// Scheduler computes FSRS v6 review outcomes. It is immutable and safe for
// concurrent use.
type Scheduler struct {
	algo algo
	cfg  SchedulerConfig
}

// NewScheduler fills defaults into cfg and validates it.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Scheduler{algo: newAlgo(cfg.Parameters), cfg: cfg}, nil
}

// ReviewCard applies one review at now and returns the updated card and its
// log. The input card is left untouched. Fuzz is derived from the card ID
// and now, so replaying the same review gives the same due time.
func (s *Scheduler) ReviewCard(card Card, rating Rating, now time.Time) (Card, ReviewLog) {
	c := card.clone()
	s.remember(&c, rating, elapsedDays(c, now))

	var wait time.Duration
	if c.State == Review {
		wait = s.reviewStep(&c, rating)
	} else {
		wait = s.learningStep(&c, rating)
	}
	if c.State == Review && !s.cfg.DisableFuzzing && wait >= day {
		wait = day * time.Duration(applyFuzz(int(wait/day), s.cfg.MaximumInterval, fuzzSource(c.CardID, now)))
	}

	c.Due = now.Add(wait)
	c.LastReview = &now
	return c, ReviewLog{CardID: c.CardID, Rating: rating, ReviewDatetime: now}
}

// RescheduleCard rebuilds card by replaying logs in order. Every log must
// belong to the card; otherwise ErrCardIDMismatch is returned.
func (s *Scheduler) RescheduleCard(card Card, logs []ReviewLog) (Card, error) {
	c := card.clone()
	for _, l := range logs {
		if l.CardID != c.CardID {
			return Card{}, fmt.Errorf("%w: card %d, log %d", ErrCardIDMismatch, c.CardID, l.CardID)
		}
		c, _ = s.ReviewCard(c, l.Rating, l.ReviewDatetime)
	}
	return c, nil
}

// Retrievability is the recall probability of card at now, or 0 for a card
// that has never been reviewed.
func (s *Scheduler) Retrievability(card Card, now time.Time) float64 {
	if !card.Reviewed() || card.Stability == nil {
		return 0
	}
	return s.algo.retrievability(elapsedDays(card, now), *card.Stability)
}

func elapsedDays(c Card, now time.Time) float64 {
	if c.LastReview == nil {
		return 0
	}
	return float64(now.Sub(*c.LastReview)) / float64(day)
}

// remember updates stability and difficulty for a review elapsed days after
// the previous one.
func (s *Scheduler) remember(c *Card, rating Rating, elapsed float64) {
	if c.Stability == nil {
		c.setStability(s.algo.initStability(rating))
		c.setDifficulty(s.algo.initDifficulty(rating, true))
		return
	}
	st, d := *c.Stability, *c.Difficulty
	if elapsed < 1 {
		c.setStability(s.algo.shortTermStability(st, rating))
	} else {
		c.setStability(s.algo.nextStability(d, st, s.algo.retrievability(elapsed, st), rating))
	}
	c.setDifficulty(s.algo.nextDifficulty(d, rating))
}

// learningStep moves a Learning or Relearning card through its steps.
func (s *Scheduler) learningStep(c *Card, rating Rating) time.Duration {
	steps := s.cfg.LearningSteps
	if c.State == Relearning {
		steps = s.cfg.RelearningSteps
	}
	step := 0
	if c.Step != nil {
		step = *c.Step
	}

	switch {
	case len(steps) == 0, rating == Easy, step >= len(steps) && rating != Again:
		return s.graduate(c)
	case rating == Again:
		c.setStep(0)
		return steps[0]
	case rating == Hard && step == 0 && len(steps) == 1:
		return steps[0] * 3 / 2
	case rating == Hard && step == 0:
		return (steps[0] + steps[1]) / 2
	case rating == Hard:
		return steps[step]
	case step+1 >= len(steps):
		return s.graduate(c)
	default:
		c.setStep(step + 1)
		return steps[step+1]
	}
}

// reviewStep handles a card already in Review. A lapse sends it back through
// the relearning steps when there are any.
func (s *Scheduler) reviewStep(c *Card, rating Rating) time.Duration {
	if rating == Again && len(s.cfg.RelearningSteps) > 0 {
		c.State = Relearning
		c.setStep(0)
		return s.cfg.RelearningSteps[0]
	}
	return s.graduate(c)
}

// graduate puts c in Review and returns its next interval.
func (s *Scheduler) graduate(c *Card) time.Duration {
	c.State = Review
	c.clearStep()
	return day * time.Duration(s.algo.nextInterval(*c.Stability, s.cfg.DesiredRetention, s.cfg.MaximumInterval))
}
