package fsrs

import "fmt"

// Rating grades how well a card was recalled.
type Rating int

const (
	Again Rating = iota + 1 // forgotten
	Hard                    // recalled with serious difficulty
	Good                    // recalled after some hesitation
	Easy                    // recalled instantly
)

// Ratings holds every valid rating from worst to best.
var Ratings = [...]Rating{Again, Hard, Good, Easy}

// IsValid reports whether r is one of Again, Hard, Good or Easy.
func (r Rating) IsValid() bool { return Again <= r && r <= Easy }

func (r Rating) String() string {
	switch r {
	case Again:
		return "Again"
	case Hard:
		return "Hard"
	case Good:
		return "Good"
	case Easy:
		return "Easy"
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// MarshalText encodes r by name, so JSON carries "Good" rather than 3.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (r *Rating) UnmarshalText(text []byte) error {
	for _, v := range Ratings {
		if v.String() == string(text) {
			*r = v
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidRating, text)
}
