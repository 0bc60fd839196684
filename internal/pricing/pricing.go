// Package pricing implements the pricing subproblem of the
// column-generation admission controller: given a flow and the current
// restricted-master dual costs, find the cheapest (path, shaping
// parameter) column whose total delay respects the flow's budget.
package pricing

import (
	"cqfsim/internal/domain"
	"cqfsim/internal/larac"
	"cqfsim/internal/shaping"
)

// Column is a candidate admission: a flow paired with a path and a
// feasible shaping parameter.
type Column struct {
	Flow         domain.Flow
	Path         []int64
	ShapingParam float64
	Cost         float64
}

// Solve searches every feasible shaping parameter for flow, ascending,
// and returns the column with the lowest dual cost (ties broken toward
// the smaller shaping parameter, which is explored first). It reports
// false if no shaping parameter yields a path within the flow's delay
// budget.
func Solve(network *domain.Network, flow domain.Flow, dualCost larac.DualCost, cycleDurationUs float64) (Column, bool) {
	cycleDurationMs := cycleDurationUs / 1000

	var best Column
	found := false
	bestCost := positiveInfinity

	for _, bPrime := range shaping.PossibleParameters(flow, cycleDurationUs) {
		numCycles := ceilDiv(flow.BurstSize, bPrime)
		shapingDelayMs := numCycles*cycleDurationMs + cycleDurationMs

		delayBudget := flow.MaxE2EDelay - shapingDelayMs
		if delayBudget < 0 {
			continue
		}

		path, err := larac.Solve(network, flow.Src, flow.Dest, delayBudget, dualCost)
		if err != nil {
			continue
		}

		overall := overallPathDelay(network, path, cycleDurationMs)
		if shapingDelayMs+overall > flow.MaxE2EDelay+domain.Epsilon {
			continue
		}

		cost := pathCost(path, dualCost)
		if cost < bestCost-domain.Epsilon {
			bestCost = cost
			best = Column{Flow: flow, Path: path, ShapingParam: bPrime, Cost: cost}
			found = true
		}
	}

	return best, found
}

const positiveInfinity = 1e18

func ceilDiv(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	q := a / b
	if q == float64(int64(q)) {
		return q
	}
	return float64(int64(q) + 1)
}

// overallPathDelay sums propagation delay, per-hop queuing delay τ, and
// one cycle duration (converted to ms) for every hop of path. This
// follows the same T/1000 unit convention as the shaping-delay
// calculation above, so both quantities are in milliseconds before
// being compared against the flow's (ms) delay budget.
func overallPathDelay(network *domain.Network, path []int64, cycleDurationMs float64) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		d, _ := network.Delay(u, v)
		tau := network.Tau(v, cycleDurationMs*1000)
		total += d + tau + cycleDurationMs
	}
	return total
}

func pathCost(path []int64, dualCost larac.DualCost) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		total += dualCost(path[i], path[i+1])
	}
	return total
}
