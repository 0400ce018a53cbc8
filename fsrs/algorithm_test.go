package fsrs

import (
	"math"
	"testing"
)

const epsilon = 1e-4

func assertFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %.6f, want %.6f (diff %.6f)", name, got, want, math.Abs(got-want))
	}
}

func TestNewAlgo(t *testing.T) {
	a := newAlgo(DefaultParameters)
	assertFloat(t, "decay", a.decay, -0.1542)
	assertFloat(t, "factor", a.factor, math.Pow(0.9, 1.0/a.decay)-1.0)
}

// --- retrievability ---

func TestRetrievability(t *testing.T) {
	a := newAlgo(DefaultParameters)
	assertFloat(t, "R(0, 5)", a.retrievability(0, 5), 1.0)
	// Stability is defined as the elapsed time at which R drops to 0.9.
	assertFloat(t, "R(S, S)", a.retrievability(5, 5), 0.9)
	if r1, r10 := a.retrievability(1, 5), a.retrievability(10, 5); r1 <= r10 {
		t.Errorf("R(1, 5) = %.4f should be > R(10, 5) = %.4f", r1, r10)
	}
}

// --- initial state ---

func TestInitStabilityAndDifficulty(t *testing.T) {
	a := newAlgo(DefaultParameters)
	for _, r := range Ratings {
		assertFloat(t, "S0("+r.String()+")", a.initStability(r), DefaultParameters[r-1])

		// D₀(G) = w[4] - e^(w[5]*(G-1)) + 1
		raw := DefaultParameters[4] - math.Exp(DefaultParameters[5]*float64(r-1)) + 1
		assertFloat(t, "D0("+r.String()+")", a.initDifficulty(r, true), clampD(raw))
		assertFloat(t, "D0 unclamped("+r.String()+")", a.initDifficulty(r, false), raw)
	}
}

// --- nextInterval ---

func TestNextInterval(t *testing.T) {
	a := newAlgo(DefaultParameters)
	if got := a.nextInterval(5, 0.9, 36500); got != 5 {
		t.Errorf("nextInterval(5, 0.9) = %d, want 5", got)
	}
	if got := a.nextInterval(0.001, 0.9, 36500); got != 1 {
		t.Errorf("nextInterval(0.001, 0.9) = %d, want 1", got)
	}
	if got := a.nextInterval(100000, 0.9, 365); got != 365 {
		t.Errorf("nextInterval should clamp to 365, got %d", got)
	}
	if ivl80, ivl90 := a.nextInterval(10, 0.8, 36500), a.nextInterval(10, 0.9, 36500); ivl80 <= ivl90 {
		t.Errorf("lower retention should give a longer interval: 0.8→%d, 0.9→%d", ivl80, ivl90)
	}
}

// --- stability and difficulty updates ---

func TestShortTermStability(t *testing.T) {
	a := newAlgo(DefaultParameters)
	for _, r := range Ratings {
		sInc := math.Exp(DefaultParameters[17]*(float64(r)-3+DefaultParameters[18])) *
			math.Pow(5, -DefaultParameters[19])
		if r == Good || r == Easy {
			sInc = math.Max(sInc, 1)
		}
		assertFloat(t, "shortTerm("+r.String()+")", a.shortTermStability(5, r), clampS(5*sInc))
	}
}

func TestNextDifficultyDirection(t *testing.T) {
	a := newAlgo(DefaultParameters)
	if got := a.nextDifficulty(5, Again); got <= 5 {
		t.Errorf("Again should raise difficulty, got %.4f", got)
	}
	if got := a.nextDifficulty(5, Easy); got >= 5 {
		t.Errorf("Easy should lower difficulty, got %.4f", got)
	}
	if got := a.nextDifficulty(10, Again); got > 10 {
		t.Errorf("difficulty must stay <= 10, got %.4f", got)
	}
}

func TestNextStabilityDispatch(t *testing.T) {
	a := newAlgo(DefaultParameters)
	d, s, r := 5.0, 5.0, 0.9

	assertFloat(t, "Again", a.nextStability(d, s, r, Again), a.nextForgetStability(d, s, r))
	for _, g := range []Rating{Hard, Good, Easy} {
		assertFloat(t, g.String(), a.nextStability(d, s, r, g), a.nextRecallStability(d, s, r, g))
	}
	if got := a.nextRecallStability(d, s, r, Good); got <= s {
		t.Errorf("recall should grow stability: %.4f <= %.4f", got, s)
	}
	if got := a.nextForgetStability(d, s, r); got >= s {
		t.Errorf("forgetting should shrink stability: %.4f >= %.4f", got, s)
	}
	hard := a.nextRecallStability(d, s, r, Hard)
	easy := a.nextRecallStability(d, s, r, Easy)
	if hard >= easy {
		t.Errorf("hard penalty and easy bonus: hard %.4f should be < easy %.4f", hard, easy)
	}
}

func TestClamps(t *testing.T) {
	assertFloat(t, "clampS(-1)", clampS(-1), 0.001)
	assertFloat(t, "clampS(5)", clampS(5), 5)
	assertFloat(t, "clampD(0.5)", clampD(0.5), 1)
	assertFloat(t, "clampD(11)", clampD(11), 10)
}

func TestClampParameters(t *testing.T) {
	p := DefaultParameters
	p[0] = -5
	p[20] = 9
	got := ClampParameters(p)
	if got[0] != LowerBounds[0] || got[20] != UpperBounds[20] {
		t.Errorf("ClampParameters = %v, %v; want bounds %v, %v", got[0], got[20], LowerBounds[0], UpperBounds[20])
	}
	if err := ValidateParameters(got); err != nil {
		t.Errorf("clamped parameters should validate: %v", err)
	}
}
