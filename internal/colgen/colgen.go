// Package colgen drives column generation for the admission
// controller: alternate restricted-master LP solves with pricing
// subproblem calls until no flow can contribute a new column, then
// round the LP's fractional solution into an integral admission set.
package colgen

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"cqfsim/internal/apperror"
	"cqfsim/internal/domain"
	"cqfsim/internal/metrics"
	"cqfsim/internal/pricing"
	"cqfsim/internal/rmp"
	"cqfsim/internal/telemetry"
)

const (
	maxColGenIterations    = 500
	defaultMaxRoundingStep = 100
	fractionalEps          = 1e-6
)

// AdmittedFlow is one flow the column generation driver decided to
// admit, along with the path and shaping parameter it was admitted
// under.
type AdmittedFlow struct {
	FlowID       int64
	Path         []int64
	ShapingParam float64
	Rate         float64
}

// Result is the outcome of a full column-generation-plus-rounding run.
type Result struct {
	Admitted   []AdmittedFlow
	Rejected   []int64
	Iterations int
}

// Run executes the default column generation and randomized rounding
// pipeline for flows over network, using rng for the rounding step's
// weighted sampling. A nil rng disables rounding (only the integral
// z=1 columns from the final RMP solve are kept).
func Run(ctx context.Context, network *domain.Network, flows []domain.Flow, cycleDurationUs float64, rng *rand.Rand) (Result, error) {
	return RunWithRounds(ctx, network, flows, cycleDurationUs, rng, defaultMaxRoundingStep)
}

// RunWithRounds is Run with an explicit cap on randomized-rounding
// rounds, exposed for tests that need fewer rounds than the default.
func RunWithRounds(ctx context.Context, network *domain.Network, flows []domain.Flow, cycleDurationUs float64, rng *rand.Rand, maxRounds int) (Result, error) {
	return RunWithLimits(ctx, network, flows, cycleDurationUs, rng, maxColGenIterations, maxRounds)
}

// RunWithLimits is Run with explicit caps on both the column-generation
// iteration count and the randomized-rounding round count, exposed so
// the CLI can drive both from configuration. Each RMP solve and pricing
// subproblem call is wrapped in its own span and timed into the
// corresponding Prometheus histogram, so a slow run can be attributed to
// the simplex solve, the LARAC search, or neither.
func RunWithLimits(ctx context.Context, network *domain.Network, flows []domain.Flow, cycleDurationUs float64, rng *rand.Rand, maxIterations, maxRounds int) (Result, error) {
	if maxIterations <= 0 {
		maxIterations = maxColGenIterations
	}
	var columns []rmp.Column
	var latest rmp.Result
	iterations := 0

	for ; iterations < maxIterations; iterations++ {
		res, err := solveRMP(ctx, columns, network, cycleDurationUs)
		if err != nil {
			return Result{}, err
		}
		latest = res

		dualCost := rmp.DualCostFunc(network, res.Duals)
		addedAny := false
		for _, f := range flows {
			col, ok := solvePricing(ctx, network, f, dualCost, cycleDurationUs)
			if !ok {
				continue
			}
			candidate := rmp.Column{FlowID: f.FlowID, Rate: f.ArrivalRate, Path: col.Path, ShapingParam: col.ShapingParam}
			if !containsColumn(columns, candidate) {
				columns = append(columns, candidate)
				addedAny = true
				metrics.Get().ColumnsGeneratedTotal.Inc()
			}
		}
		if !addedAny {
			break
		}
	}
	if iterations >= maxIterations {
		return Result{}, apperror.ErrIterationLimit
	}

	selected := randomizedRounding(columns, latest.Z, network, cycleDurationUs, rng, maxRounds)
	return buildResult(columns, selected, flows, iterations+1), nil
}

// solveRMP runs one restricted-master-problem solve inside a span,
// recording its outcome and duration into RMPSolveDuration.
func solveRMP(ctx context.Context, columns []rmp.Column, network *domain.Network, cycleDurationUs float64) (rmp.Result, error) {
	start := time.Now()
	var result rmp.Result
	err := telemetry.WithSpan(ctx, "colgen", "rmp_solve", func(ctx context.Context) error {
		res, err := rmp.Solve(columns, network, cycleDurationUs)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.Get().RecordRMPSolve(status, time.Since(start))
	if err != nil {
		return rmp.Result{}, err
	}
	return result, nil
}

// solvePricing runs one LARAC pricing-subproblem solve inside a span,
// recording its feasibility and duration into PricingSolveDuration.
func solvePricing(ctx context.Context, network *domain.Network, f domain.Flow, dualCost func(u, v int64) float64, cycleDurationUs float64) (pricing.Column, bool) {
	timer := time.Now()
	var col pricing.Column
	var feasible bool
	_ = telemetry.WithSpan(ctx, "colgen", "pricing_solve", func(ctx context.Context) error {
		col, feasible = pricing.Solve(network, f, dualCost, cycleDurationUs)
		return nil
	})
	metrics.Get().RecordPricingSolve(feasible, time.Since(timer))
	return col, feasible
}

func containsColumn(columns []rmp.Column, candidate rmp.Column) bool {
	for _, c := range columns {
		if c.Equal(candidate) {
			return true
		}
	}
	return false
}

// randomizedRounding starts from the columns pinned at z=1 by the
// final RMP solve, then repeatedly tries to round fractional columns
// in at random (weighted by their LP weight), keeping the best
// capacity-respecting set found across maxRounds attempts.
func randomizedRounding(columns []rmp.Column, z []float64, network *domain.Network, cycleDurationUs float64, rng *rand.Rand, maxRounds int) map[int]bool {
	base := make(map[int]bool)
	baseScore := 0.0
	var fractional []int
	for k, zk := range z {
		switch {
		case zk >= 1-fractionalEps:
			base[k] = true
			baseScore += columns[k].Rate
		case zk > fractionalEps:
			fractional = append(fractional, k)
		}
	}

	best := cloneSelection(base)
	bestScore := baseScore

	if len(fractional) == 0 || rng == nil {
		return best
	}

	weights := make([]float64, len(fractional))
	totalWeight := 0.0
	for i, k := range fractional {
		weights[i] = z[k]
		totalWeight += z[k]
	}
	if totalWeight <= 0 {
		return best
	}

	for round := 0; round < maxRounds; round++ {
		current := cloneSelection(base)
		for draw := 0; draw < len(fractional); draw++ {
			idx := weightedChoice(rng, weights)
			if idx < 0 {
				break
			}
			k := fractional[idx]
			if current[k] {
				continue
			}
			if canAddColumn(current, columns, k, network, cycleDurationUs) {
				current[k] = true
			}
		}
		if score := selectionScore(current, columns); score > bestScore {
			best, bestScore = current, score
		}
	}
	return best
}

func weightedChoice(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return -1
	}
	target := rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if target < cum {
			return i
		}
	}
	return len(weights) - 1
}

func canAddColumn(current map[int]bool, columns []rmp.Column, candidateIdx int, network *domain.Network, cycleDurationUs float64) bool {
	candidate := columns[candidateIdx]
	for i := 0; i+1 < len(candidate.Path); i++ {
		u, v := candidate.Path[i], candidate.Path[i+1]
		capacity, ok := network.CycleCapacityKB(u, v, cycleDurationUs)
		if !ok {
			continue
		}
		used := 0.0
		for k := range current {
			if pathUsesEdgeUV(columns[k].Path, u, v) {
				used += columns[k].ShapingParam
			}
		}
		if used+candidate.ShapingParam > capacity+domain.Epsilon {
			return false
		}
	}
	return true
}

func pathUsesEdgeUV(path []int64, u, v int64) bool {
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		if (a == u && b == v) || (a == v && b == u) {
			return true
		}
	}
	return false
}

func selectionScore(selection map[int]bool, columns []rmp.Column) float64 {
	total := 0.0
	for k := range selection {
		total += columns[k].Rate
	}
	return total
}

func cloneSelection(src map[int]bool) map[int]bool {
	dst := make(map[int]bool, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func buildResult(columns []rmp.Column, selected map[int]bool, flows []domain.Flow, iterations int) Result {
	admittedFlowIDs := make(map[int64]bool, len(selected))
	admitted := make([]AdmittedFlow, 0, len(selected))
	for k := range selected {
		col := columns[k]
		admitted = append(admitted, AdmittedFlow{FlowID: col.FlowID, Path: col.Path, ShapingParam: col.ShapingParam, Rate: col.Rate})
		admittedFlowIDs[col.FlowID] = true
	}
	sort.Slice(admitted, func(i, j int) bool { return admitted[i].FlowID < admitted[j].FlowID })

	var rejected []int64
	for _, f := range flows {
		if !admittedFlowIDs[f.FlowID] {
			rejected = append(rejected, f.FlowID)
		}
	}
	sort.Slice(rejected, func(i, j int) bool { return rejected[i] < rejected[j] })

	return Result{Admitted: admitted, Rejected: rejected, Iterations: iterations}
}
