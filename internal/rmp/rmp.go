// Package rmp solves the restricted master problem of the column
// generation admission controller: given a pool of admission columns,
// choose a fractional mix that maximizes admitted rate without
// exceeding any edge's per-cycle capacity.
package rmp

import (
	"cqfsim/internal/domain"
)

// Column is a single candidate admission: the flow it belongs to, the
// path it would take, and the shaping parameter it would use.
type Column struct {
	FlowID       int64
	Rate         float64 // Mbps; the RMP objective weight r_{f_k}
	Path         []int64
	ShapingParam float64 // KB per cycle, b'_k
}

// Equal reports whether two columns represent the same (flow, path,
// shaping parameter) tuple, the de-duplication key the column
// generation driver uses before adding a new column to the pool.
func (c Column) Equal(other Column) bool {
	if c.FlowID != other.FlowID || c.ShapingParam != other.ShapingParam {
		return false
	}
	if len(c.Path) != len(other.Path) {
		return false
	}
	for i := range c.Path {
		if c.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}

// Result is the RMP's solution: a fractional admission weight z_k per
// column, and a non-negative dual price per network edge (same order
// as network.Edges()).
type Result struct {
	Z     []float64
	Duals []float64
}

// Solve builds and solves the LP: maximize Σ r_k·z_k subject to, for
// each edge e, Σ_{k : e ∈ path_k} b'_k·z_k ≤ bandwidth(e)·T, with
// 0 ≤ z_k ≤ 1. An empty column set returns an all-zero result.
func Solve(columns []Column, network *domain.Network, cycleDurationUs float64) (Result, error) {
	edges := network.Edges()
	if len(columns) == 0 {
		return Result{Z: nil, Duals: make([]float64, len(edges))}, nil
	}

	n := len(columns)
	m := len(edges)

	c := make([]float64, n)
	upper := make([]float64, n)
	for k, col := range columns {
		c[k] = -col.Rate // maximize rate == minimize -rate
		upper[k] = 1
	}

	a := make([][]float64, m)
	b := make([]float64, m)
	for i, edge := range edges {
		row := make([]float64, n)
		for k, col := range columns {
			if pathUsesEdge(col.Path, edge) {
				row[k] += col.ShapingParam
			}
		}
		a[i] = row
		capacity, _ := network.CycleCapacityKB(edge.Node1, edge.Node2, cycleDurationUs)
		b[i] = capacity
	}

	z, slackReducedCost, err := solveBoundedLP(c, a, b, upper)
	if err != nil {
		return Result{}, err
	}

	duals := make([]float64, m)
	for i, rc := range slackReducedCost {
		duals[i] = absFloat(rc)
	}

	return Result{Z: z, Duals: duals}, nil
}

func pathUsesEdge(path []int64, edge domain.Link) bool {
	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		if (u == edge.Node1 && v == edge.Node2) || (u == edge.Node2 && v == edge.Node1) {
			return true
		}
	}
	return false
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// DualCostFunc builds a larac.DualCost-compatible lookup from an RMP
// result's per-edge duals: μ(u,v) for any pair the network links,
// falling back to zero for edges outside result's scope.
func DualCostFunc(network *domain.Network, duals []float64) func(u, v int64) float64 {
	edges := network.Edges()
	index := make(map[[2]int64]float64, len(edges))
	for i, e := range edges {
		if i >= len(duals) {
			break
		}
		index[[2]int64{e.Node1, e.Node2}] = duals[i]
	}
	return func(u, v int64) float64 {
		if d, ok := index[[2]int64{u, v}]; ok {
			return d
		}
		if d, ok := index[[2]int64{v, u}]; ok {
			return d
		}
		return 0
	}
}
