package fsrs

import "errors"

// Sentinel errors for the fsrs package.
// Use errors.Is to check: errors.Is(err, fsrs.ErrInvalidRating)
var (
	ErrInvalidRating     = errors.New("fsrs: invalid rating")
	ErrInvalidParameters = errors.New("fsrs: parameters out of bounds")
	ErrInvalidConfig     = errors.New("fsrs: invalid scheduler config")
	ErrCardIDMismatch    = errors.New("fsrs: card ID mismatch in review log")
)
