package optimizer

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"math/rand"
	"slices"

	"github.com/sky-flux/deck/fsrs"
)

var (
	// ErrEmptyLogs is returned when no review logs are provided.
	ErrEmptyLogs = errors.New("optimizer: no review logs provided")

	// ErrInsufficientData is returned when cross-day reviews are fewer than MiniBatchSize.
	ErrInsufficientData = errors.New("optimizer: insufficient cross-day reviews for optimization")
)

// DefaultRetentionCandidates are the retentions tried by ComputeOptimalRetention
// when none are configured.
var DefaultRetentionCandidates = []float64{0.70, 0.75, 0.80, 0.85, 0.90, 0.95}

// OptimizerConfig tunes training. Zero fields fall back to the documented defaults.
type OptimizerConfig struct {
	Epochs              int       `json:"epochs" yaml:"epochs,omitempty"`                             // 5
	MiniBatchSize       int       `json:"mini_batch_size" yaml:"mini_batch_size,omitempty"`           // 512
	LearningRate        float64   `json:"learning_rate" yaml:"learning_rate,omitempty"`               // 0.04
	MaxSeqLen           int       `json:"max_seq_len" yaml:"max_seq_len,omitempty"`                   // 64
	MinRetentionLogs    int       `json:"min_retention_logs" yaml:"min_retention_logs,omitempty"`     // 512
	RetentionCandidates []float64 `json:"retention_candidates" yaml:"retention_candidates,omitempty"` // DefaultRetentionCandidates
}

// Optimizer fits FSRS parameters and retention targets to a review history.
type Optimizer struct {
	epochs           int
	miniBatchSize    int
	learningRate     float64
	maxSeqLen        int
	minRetentionLogs int
	candidates       []float64
}

// NewOptimizer applies defaults to cfg and returns an Optimizer.
func NewOptimizer(cfg OptimizerConfig) *Optimizer {
	candidates := cfg.RetentionCandidates
	if len(candidates) == 0 {
		candidates = DefaultRetentionCandidates
	}
	return &Optimizer{
		epochs:           cmp.Or(cfg.Epochs, 5),
		miniBatchSize:    cmp.Or(cfg.MiniBatchSize, 512),
		learningRate:     cmp.Or(cfg.LearningRate, 0.04),
		maxSeqLen:        cmp.Or(cfg.MaxSeqLen, 64),
		minRetentionLogs: cmp.Or(cfg.MinRetentionLogs, 512),
		candidates:       slices.Clone(candidates),
	}
}

// trainer carries the state of one ComputeOptimalParameters run.
type trainer struct {
	adam     *Adam
	schedule *CosineAnnealing
	params   weights
}

// step applies one gradient update computed on batch.
func (t *trainer) step(batch map[int64][]review) {
	grad := numericalGradient(t.params, batch)
	t.adam.SetLR(t.schedule.LR())
	t.params = fsrs.ClampParameters(t.adam.Update(t.params, grad))
	t.schedule.Step()
}

// ComputeOptimalParameters fits parameters to logs by mini-batch gradient
// descent, starting from DefaultParameters. Each card contributes at most
// MaxSeqLen reviews. The result never fits logs worse than the defaults.
//
// Returns ErrEmptyLogs for no logs, and ErrInsufficientData together with
// DefaultParameters when there are fewer cross-day reviews than one batch.
// Cancelling ctx stops training between epochs with the best parameters so far.
func (o *Optimizer) ComputeOptimalParameters(ctx context.Context, logs []fsrs.ReviewLog) ([21]float64, error) {
	if len(logs) == 0 {
		return [21]float64{}, ErrEmptyLogs
	}

	data := formatRevlogs(logs)
	for id, history := range data {
		data[id] = history[:min(len(history), o.maxSeqLen)]
	}
	total := countCrossDayReviews(data)
	if total < o.miniBatchSize {
		return fsrs.DefaultParameters, ErrInsufficientData
	}

	batches := (total + o.miniBatchSize - 1) / o.miniBatchSize
	t := &trainer{
		adam:     NewAdam(o.learningRate),
		schedule: NewCosineAnnealing(o.learningRate, batches*o.epochs),
		params:   fsrs.DefaultParameters,
	}
	best, bestLoss := t.params, computeBatchLoss(t.params, data)

	ids := slices.Sorted(maps.Keys(data))
	rng := rand.New(rand.NewSource(42))

	for range o.epochs {
		if err := ctx.Err(); err != nil {
			return best, err
		}
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

		batch, filled := map[int64][]review{}, 0
		for _, id := range ids {
			batch[id] = data[id]
			filled += crossDay(data[id])
			if filled >= o.miniBatchSize {
				t.step(batch)
				batch, filled = map[int64][]review{}, 0
			}
		}
		if filled > 0 {
			t.step(batch)
		}

		if loss := computeBatchLoss(t.params, data); loss < bestLoss {
			best, bestLoss = t.params, loss
		}
	}
	return best, nil
}

// ComputeBatchLoss returns the mean cross-day loss of params on logs.
func (o *Optimizer) ComputeBatchLoss(params [21]float64, logs []fsrs.ReviewLog) float64 {
	return computeBatchLoss(params, formatRevlogs(logs))
}
