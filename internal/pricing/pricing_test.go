package pricing

import (
	"testing"

	"cqfsim/internal/domain"
	"cqfsim/internal/shaping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeroCost(u, v int64) float64 { return 0 }

func TestSolveFindsPathWithinBudget(t *testing.T) {
	network := domain.NewNetwork()
	require.NoError(t, network.AddLink(1, 2, 0.1, 100))

	flow := domain.Flow{FlowID: 1, Src: 1, Dest: 2, ArrivalRate: 1, BurstSize: 2, MaxPktSize: 1, MaxE2EDelay: 1000}

	col, ok := Solve(network, flow, zeroCost, 1000)
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2}, col.Path)
	assert.Greater(t, col.ShapingParam, 0.0)
}

func TestSolveReturnsFalseWhenUnreachable(t *testing.T) {
	network := domain.NewNetwork()
	network.AddNode(1)
	network.AddNode(2)

	flow := domain.Flow{FlowID: 1, Src: 1, Dest: 2, ArrivalRate: 1, BurstSize: 2, MaxPktSize: 1, MaxE2EDelay: 1000}

	_, ok := Solve(network, flow, zeroCost, 1000)
	assert.False(t, ok)
}

func TestSolveReturnsFalseWhenBudgetTooTight(t *testing.T) {
	network := domain.NewNetwork()
	require.NoError(t, network.AddLink(1, 2, 500, 100))

	// A 1 ms budget is already smaller than the shaping delay alone (at
	// least two 1 ms cycles), let alone the 500 ms link.
	flow := domain.Flow{FlowID: 1, Src: 1, Dest: 2, ArrivalRate: 1, BurstSize: 2, MaxPktSize: 1, MaxE2EDelay: 1}

	_, ok := Solve(network, flow, zeroCost, 1000)
	assert.False(t, ok)
}

func TestSolvePrefersLowerCostColumn(t *testing.T) {
	network := domain.NewNetwork()
	require.NoError(t, network.AddLink(1, 2, 0.1, 100))
	require.NoError(t, network.AddLink(2, 3, 0.1, 100))
	require.NoError(t, network.AddLink(1, 3, 0.1, 100))

	cost := func(u, v int64) float64 {
		if (u == 1 && v == 3) || (u == 3 && v == 1) {
			return 0
		}
		return 5
	}

	flow := domain.Flow{FlowID: 1, Src: 1, Dest: 3, ArrivalRate: 1, BurstSize: 2, MaxPktSize: 1, MaxE2EDelay: 1000}

	col, ok := Solve(network, flow, cost, 1000)
	require.True(t, ok)
	assert.Equal(t, []int64{1, 3}, col.Path)
	assert.Equal(t, 0.0, col.Cost)
}

func TestSolveTieBreaksTowardSmallerShapingParameter(t *testing.T) {
	network := domain.NewNetwork()
	require.NoError(t, network.AddLink(1, 2, 0.1, 100))

	flow := domain.Flow{FlowID: 1, Src: 1, Dest: 2, ArrivalRate: 1, BurstSize: 4, MaxPktSize: 1, MaxE2EDelay: 1000}

	candidates := shaping.PossibleParameters(flow, 1000)
	require.NotEmpty(t, candidates)

	col, ok := Solve(network, flow, zeroCost, 1000)
	require.True(t, ok)
	// With zero dual cost every candidate ties at cost 0, so the first
	// (smallest) shaping parameter explored must win.
	assert.Equal(t, candidates[0], col.ShapingParam)
}
