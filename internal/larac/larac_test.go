package larac

import (
	"testing"

	"cqfsim/internal/apperror"
	"cqfsim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeroCost(u, v int64) float64 { return 0 }

func TestSolveTwoNodeLine(t *testing.T) {
	network := domain.NewNetwork()
	require.NoError(t, network.AddLink(1, 2, 1, 100))

	path, err := Solve(network, 1, 2, 10, zeroCost)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, path)
}

func TestSolveDisconnectedReturnsNoPath(t *testing.T) {
	network := domain.NewNetwork()
	network.AddNode(1)
	network.AddNode(2)

	_, err := Solve(network, 1, 2, 10, zeroCost)
	assert.ErrorIs(t, err, apperror.ErrNoPath)
}

func TestSolveOverTightBudgetReturnsInfeasible(t *testing.T) {
	network := domain.NewNetwork()
	require.NoError(t, network.AddLink(1, 2, 10, 100))

	_, err := Solve(network, 1, 2, 1, zeroCost)
	assert.ErrorIs(t, err, apperror.ErrInfeasible)
}

func TestSolvePrefersLowerCostPathWithinBudget(t *testing.T) {
	network := domain.NewNetwork()
	require.NoError(t, network.AddLink(1, 2, 1, 100))
	require.NoError(t, network.AddLink(2, 3, 1, 100))
	require.NoError(t, network.AddLink(1, 3, 10, 100))

	cost := func(u, v int64) float64 {
		if (u == 1 && v == 3) || (u == 3 && v == 1) {
			return 0
		}
		return 1
	}

	// Budget rules out the cheap direct 1->3 edge (delay 10 > 5) but
	// permits the two-hop path (delay 2).
	path, err := Solve(network, 1, 3, 5, cost)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, path)
}

func TestSolveSingleNodeSourceEqualsDest(t *testing.T) {
	network := domain.NewNetwork()
	require.NoError(t, network.AddLink(1, 2, 1, 100))

	path, err := Solve(network, 1, 1, 0, zeroCost)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, path)
}
