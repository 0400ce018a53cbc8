package optimizer

import "math"

const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// weights is the FSRS parameter vector being fitted.
type weights = [21]float64

// Adam keeps first and second moment estimates per weight and applies
// bias-corrected steps scaled by the current learning rate.
type Adam struct {
	lr     float64
	t      int
	first  weights
	second weights
}

// NewAdam returns an Adam optimizer with β1=0.9, β2=0.999 and ε=1e-8.
func NewAdam(lr float64) *Adam {
	return &Adam{lr: lr}
}

// Update returns params moved one step against grads. Weights whose gradient
// is exactly zero keep both their value and their moments.
func (a *Adam) Update(params, grads weights) weights {
	a.t++
	c1 := 1 - math.Pow(adamBeta1, float64(a.t))
	c2 := 1 - math.Pow(adamBeta2, float64(a.t))

	for i, g := range grads {
		if g == 0 {
			continue
		}
		a.first[i] = adamBeta1*a.first[i] + (1-adamBeta1)*g
		a.second[i] = adamBeta2*a.second[i] + (1-adamBeta2)*g*g
		step := (a.first[i] / c1) / (math.Sqrt(a.second[i]/c2) + adamEpsilon)
		params[i] -= a.lr * step
	}
	return params
}

// SetLR replaces the learning rate used by subsequent updates.
func (a *Adam) SetLR(lr float64) { a.lr = lr }

// CosineAnnealing decays a learning rate from its peak to zero along half a
// cosine period of length total steps.
type CosineAnnealing struct {
	peak  float64
	total int
	done  int
}

// NewCosineAnnealing starts a schedule at peak that reaches zero after total steps.
func NewCosineAnnealing(peak float64, total int) *CosineAnnealing {
	return &CosineAnnealing{peak: peak, total: total}
}

// LR returns the learning rate for the current step.
func (c *CosineAnnealing) LR() float64 {
	progress := float64(c.done) / float64(c.total)
	return c.peak * (1 + math.Cos(math.Pi*progress)) / 2
}

// Step advances one step and returns the new rate.
func (c *CosineAnnealing) Step() float64 {
	c.done++
	return c.LR()
}
