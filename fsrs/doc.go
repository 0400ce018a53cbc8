// Package fsrs implements the FSRS v6 memory model used to schedule reviews.
//
// A Scheduler turns a card's review history into a memory state (stability
// and difficulty) and a due time for a chosen desired retention:
//
//	s, err := fsrs.NewScheduler(fsrs.SchedulerConfig{DesiredRetention: 0.9})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	card, _ := s.ReviewCard(fsrs.NewCard(1), fsrs.Good, time.Now())
//
// Interval fuzz is derived from the card ID and review time, so replaying the
// same history with RescheduleCard always reproduces the same due time.
// Parameter fitting lives in the fsrs/optimizer subpackage.
package fsrs
