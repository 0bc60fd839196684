package shaping

import (
	"testing"

	"cqfsim/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestPossibleParametersSortedAscending(t *testing.T) {
	f := domain.Flow{FlowID: 1, ArrivalRate: 10, BurstSize: 4, MaxPktSize: 1}

	values := PossibleParameters(f, 1000)

	require := assert.New(t)
	require.NotEmpty(values)
	for i := 1; i < len(values); i++ {
		require.LessOrEqual(values[i-1], values[i])
	}
}

func TestPossibleParametersDeterministic(t *testing.T) {
	f := domain.Flow{FlowID: 1, ArrivalRate: 10, BurstSize: 4, MaxPktSize: 1}

	a := PossibleParameters(f, 1000)
	b := PossibleParameters(f, 1000)

	assert.Equal(t, a, b)
}

func TestPossibleParametersCandidatesAreMultiplesOfMaxPktSize(t *testing.T) {
	f := domain.Flow{FlowID: 1, ArrivalRate: 5, BurstSize: 10, MaxPktSize: 1.5}

	for _, v := range PossibleParameters(f, 2000) {
		ratio := v / f.MaxPktSize
		assert.InDelta(t, ratio, float64(int(ratio+0.5)), 1e-6)
	}
}

func TestPossibleParametersZeroBurstOrPacketSizeYieldsNone(t *testing.T) {
	assert.Empty(t, PossibleParameters(domain.Flow{ArrivalRate: 5, BurstSize: 0, MaxPktSize: 1}, 1000))
	assert.Empty(t, PossibleParameters(domain.Flow{ArrivalRate: 5, BurstSize: 5, MaxPktSize: 0}, 1000))
}

func TestPossibleParametersExcludesInfeasibleRates(t *testing.T) {
	// An extremely high arrival rate relative to burst/cycle means the
	// loop terminates almost immediately (n=1 already infeasible) or
	// returns only the single-cycle candidate.
	f := domain.Flow{FlowID: 1, ArrivalRate: 1e9, BurstSize: 1, MaxPktSize: 1}

	values := PossibleParameters(f, 1)
	assert.LessOrEqual(t, len(values), 1)
}
