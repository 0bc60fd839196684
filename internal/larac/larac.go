// Package larac implements the Lagrangian Relaxation-based Aggregated
// Cost algorithm for the constrained shortest path (CSP) subproblem:
// find a minimum-dual-cost path from source to dest whose total
// propagation delay does not exceed a budget.
package larac

import (
	"cqfsim/internal/apperror"
	"cqfsim/internal/domain"
)

// maxIterations bounds the binary search on the Lagrangian multiplier.
const maxIterations = 50

// lambdaHighBound is the upper end of the binary search range.
const lambdaHighBound = 1e6

// DualCost returns the dual cost μ(u,v) charged for traversing a unit
// of edge (u,v), as produced by the restricted master problem.
type DualCost func(u, v int64) float64

// Solve finds a path from source to dest whose total propagation delay
// is at most delayBudget, minimizing total dual cost along the way, via
// bisection on the Lagrangian multiplier λ. It returns apperror.ErrNoPath
// if source and dest are disconnected, or apperror.ErrInfeasible if no
// path within the delay budget was ever found.
func Solve(network *domain.Network, source, dest int64, delayBudget float64, dualCost DualCost) ([]int64, error) {
	weight := func(lambda float64) WeightFunc {
		return func(u, v int64) float64 {
			delay, _ := network.Delay(u, v)
			return dualCost(u, v) + lambda*delay
		}
	}

	// Always run once at lambda=0 to distinguish "disconnected" from
	// "connected but every path exceeds the budget".
	dist, parent := shortestPath(network, source, weight(0))
	if dist[dest] >= positiveInfinity {
		return nil, apperror.ErrNoPath
	}
	_ = parent

	lambdaLow, lambdaHigh := 0.0, lambdaHighBound
	var bestPath []int64

	for i := 0; i < maxIterations; i++ {
		lambdaMid := (lambdaLow + lambdaHigh) / 2

		_, parent := shortestPath(network, source, weight(lambdaMid))
		path := reconstructPath(parent, source, dest)
		if path == nil {
			// Unreachable under this weighting (shouldn't happen once
			// lambda=0 connected it, but stay defensive).
			lambdaLow = lambdaMid
			continue
		}

		totalDelay := pathDelay(network, path)
		if totalDelay <= delayBudget+domain.Epsilon {
			bestPath = path
			lambdaHigh = lambdaMid
		} else {
			lambdaLow = lambdaMid
		}
	}

	if bestPath == nil {
		return nil, apperror.ErrInfeasible
	}
	return bestPath, nil
}

// pathDelay sums propagation delay along consecutive hops of path.
func pathDelay(network *domain.Network, path []int64) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		d, _ := network.Delay(path[i], path[i+1])
		total += d
	}
	return total
}
