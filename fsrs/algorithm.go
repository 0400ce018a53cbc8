package fsrs

import "math"

// Positions of the FSRS v6 weights. Weights 0-3 are the initial stability
// for Again through Easy.
const (
	wDifficultyBase    = 4
	wDifficultyScale   = 5
	wDifficultyStep    = 6
	wMeanReversion     = 7
	wRecallGrowth      = 8
	wRecallSaturation  = 9
	wRecallDesirable   = 10
	wForgetScale       = 11
	wForgetDifficulty  = 12
	wForgetStability   = 13
	wForgetDesirable   = 14
	wHardPenalty       = 15
	wEasyBonus         = 16
	wSameDayScale      = 17
	wSameDayOffset     = 18
	wSameDaySaturation = 19
	wDecay             = 20
)

const (
	minStability  = 0.001
	minDifficulty = 1.0
	maxDifficulty = 10.0
)

// algo evaluates the memory model for one parameter vector. decay and
// factor are fixed by the vector and shape the forgetting curve so that
// retrievability is exactly 0.9 after S days.
type algo struct {
	w      [21]float64
	decay  float64
	factor float64
}

func newAlgo(p [21]float64) algo {
	decay := -p[wDecay]
	return algo{
		w:      p,
		decay:  decay,
		factor: math.Pow(0.9, 1/decay) - 1,
	}
}

// retrievability is the probability of recall after elapsedDays at the
// given stability.
func (a *algo) retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+a.factor*elapsedDays/stability, a.decay)
}

func (a *algo) initStability(r Rating) float64 {
	return clampS(a.w[r-1])
}

// initDifficulty is the difficulty after a first review rated r. The mean
// reversion target uses the unclamped value for Easy.
func (a *algo) initDifficulty(r Rating, clamp bool) float64 {
	d := a.w[wDifficultyBase] + 1 - math.Exp(a.w[wDifficultyScale]*float64(r-1))
	if !clamp {
		return d
	}
	return clampD(d)
}

// nextInterval is the whole number of days until retrievability falls to
// desiredRetention, at least 1 and at most maxIvl.
func (a *algo) nextInterval(stability, desiredRetention float64, maxIvl int) int {
	days := stability / a.factor * (math.Pow(desiredRetention, 1/a.decay) - 1)
	return min(max(int(math.Round(days)), 1), maxIvl)
}

// shortTermStability updates stability for a second review on the same day.
// A passing grade never lowers it.
func (a *algo) shortTermStability(stability float64, r Rating) float64 {
	growth := math.Exp(a.w[wSameDayScale]*(float64(r)-3+a.w[wSameDayOffset])) *
		math.Pow(stability, -a.w[wSameDaySaturation])
	if r >= Good {
		growth = math.Max(growth, 1)
	}
	return clampS(stability * growth)
}

// nextDifficulty moves difficulty by the grade, damped as it nears the
// maximum, then pulls it toward the Easy starting point.
func (a *algo) nextDifficulty(difficulty float64, r Rating) float64 {
	step := -a.w[wDifficultyStep] * (float64(r) - 3)
	damped := difficulty + step*(maxDifficulty-difficulty)/9
	target := a.initDifficulty(Easy, false)
	reverted := a.w[wMeanReversion]*target + (1-a.w[wMeanReversion])*damped
	return clampD(reverted)
}

func (a *algo) nextStability(d, s, r float64, rating Rating) float64 {
	if rating == Again {
		return a.nextForgetStability(d, s, r)
	}
	return a.nextRecallStability(d, s, r, rating)
}

// nextRecallStability is the stability after a passing review at
// retrievability r.
func (a *algo) nextRecallStability(d, s, r float64, rating Rating) float64 {
	modifier := 1.0
	switch rating {
	case Hard:
		modifier = a.w[wHardPenalty]
	case Easy:
		modifier = a.w[wEasyBonus]
	}
	growth := math.Exp(a.w[wRecallGrowth]) *
		(11 - d) *
		math.Pow(s, -a.w[wRecallSaturation]) *
		(math.Exp((1-r)*a.w[wRecallDesirable]) - 1)
	return s * (1 + growth*modifier)
}

// nextForgetStability is the stability after a lapse. It never exceeds what
// a same-day Again would leave.
func (a *algo) nextForgetStability(d, s, r float64) float64 {
	longTerm := a.w[wForgetScale] *
		math.Pow(d, -a.w[wForgetDifficulty]) *
		(math.Pow(s+1, a.w[wForgetStability]) - 1) *
		math.Exp((1-r)*a.w[wForgetDesirable])
	sameDay := s / math.Exp(a.w[wSameDayScale]*a.w[wSameDayOffset])
	return math.Min(longTerm, sameDay)
}

func clampS(s float64) float64 {
	return math.Max(s, minStability)
}

func clampD(d float64) float64 {
	return math.Min(math.Max(d, minDifficulty), maxDifficulty)
}
