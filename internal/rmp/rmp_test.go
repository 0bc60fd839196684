package rmp

import (
	"testing"

	"cqfsim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineNetwork(t *testing.T) *domain.Network {
	t.Helper()
	network := domain.NewNetwork()
	require.NoError(t, network.AddLink(1, 2, 1, 8)) // 8 Mbps
	return network
}

func TestSolveEmptyColumnsReturnsZeroResult(t *testing.T) {
	network := lineNetwork(t)

	result, err := Solve(nil, network, 1000)
	require.NoError(t, err)
	assert.Empty(t, result.Z)
	assert.Equal(t, []float64{0}, result.Duals)
}

func TestSolveSingleColumnWithinCapacityIsFullyAdmitted(t *testing.T) {
	network := lineNetwork(t)
	// 8 Mbps * 0.000125 * 1000us = 1 KB/cycle capacity.
	columns := []Column{{FlowID: 1, Rate: 5, Path: []int64{1, 2}, ShapingParam: 0.5}}

	result, err := Solve(columns, network, 1000)
	require.NoError(t, err)
	require.Len(t, result.Z, 1)
	assert.InDelta(t, 1.0, result.Z[0], 1e-6)
}

func TestSolveOverCapacitySplitsAdmissionFractionally(t *testing.T) {
	network := lineNetwork(t)
	// Capacity is 1 KB/cycle; two columns each demand 1 KB/cycle.
	columns := []Column{
		{FlowID: 1, Rate: 5, Path: []int64{1, 2}, ShapingParam: 1},
		{FlowID: 2, Rate: 5, Path: []int64{1, 2}, ShapingParam: 1},
	}

	result, err := Solve(columns, network, 1000)
	require.NoError(t, err)
	require.Len(t, result.Z, 2)
	assert.InDelta(t, 1.0, result.Z[0]+result.Z[1], 1e-6)
	require.Len(t, result.Duals, 1)
	assert.GreaterOrEqual(t, result.Duals[0], 0.0)
}

func TestSolvePrefersHigherRateColumnUnderTightCapacity(t *testing.T) {
	network := lineNetwork(t)
	columns := []Column{
		{FlowID: 1, Rate: 1, Path: []int64{1, 2}, ShapingParam: 1},
		{FlowID: 2, Rate: 9, Path: []int64{1, 2}, ShapingParam: 1},
	}

	result, err := Solve(columns, network, 1000)
	require.NoError(t, err)
	assert.Greater(t, result.Z[1], result.Z[0])
}

func TestColumnEqual(t *testing.T) {
	a := Column{FlowID: 1, Path: []int64{1, 2, 3}, ShapingParam: 2}
	b := Column{FlowID: 1, Path: []int64{1, 2, 3}, ShapingParam: 2}
	c := Column{FlowID: 1, Path: []int64{1, 2, 3}, ShapingParam: 3}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestDualCostFuncFallsBackToZero(t *testing.T) {
	network := lineNetwork(t)
	dualFn := DualCostFunc(network, []float64{3.5})

	assert.Equal(t, 3.5, dualFn(1, 2))
	assert.Equal(t, 3.5, dualFn(2, 1))
	assert.Equal(t, 0.0, dualFn(5, 6))
}
