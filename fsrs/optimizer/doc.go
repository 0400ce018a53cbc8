// Package optimizer fits FSRS v6 parameters and a desired retention to the
// review history accumulated by a deck.
//
//   - [Optimizer.ComputeOptimalParameters] trains the 21 FSRS parameters
//     using mini-batch gradient descent with the [Adam] optimizer and
//     [CosineAnnealing] learning rate schedule. Gradients are computed via
//     numerical central differences on binary cross-entropy loss.
//
//   - [Optimizer.ComputeOptimalRetention] picks the candidate retention that
//     minimizes simulated review time per remembered card.
//
// # Usage
//
//	opt := optimizer.NewOptimizer(optimizer.OptimizerConfig{})
//	params, err := opt.ComputeOptimalParameters(ctx, logs)
//	retention, err := opt.ComputeOptimalRetention(ctx, params, logs)
//
// # Data Requirements
//
// Parameter optimization requires at least MiniBatchSize cross-day reviews
// (default 512). Optimal retention requires MinRetentionLogs logs (default
// 512), each with ReviewDuration set.
package optimizer
