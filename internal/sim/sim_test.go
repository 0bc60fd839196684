package sim

import (
	"context"
	"testing"
	"time"

	"cqfsim/internal/colgen"
	"cqfsim/internal/domain"
	"cqfsim/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init("error")
}

func lineNetwork(t *testing.T) *domain.Network {
	t.Helper()
	network := domain.NewNetwork()
	require.NoError(t, network.AddLink(1, 2, 0, 100))
	require.NoError(t, network.AddLink(2, 3, 0, 100))
	return network
}

func TestNewRunnerAssignsIngressToFlowSources(t *testing.T) {
	network := lineNetwork(t)
	flows := []domain.Flow{{FlowID: 1, Src: 1, Dest: 3, ArrivalRate: 1, BurstSize: 2, MaxPktSize: 1, MaxE2EDelay: 100}}

	r := NewRunner(network, flows, 1000)

	assert.Equal(t, 3, len(r.nodes))
}

func TestApplyAdmissionRejectsUnknownFlow(t *testing.T) {
	network := lineNetwork(t)
	r := NewRunner(network, nil, 1000)
	r.WireTopology(network)

	result := colgen.Result{Admitted: []colgen.AdmittedFlow{{FlowID: 99, Path: []int64{1, 2}, ShapingParam: 1, Rate: 1}}}

	err := r.ApplyAdmission(nil, result)
	assert.Error(t, err)
}

func TestRunCompletesSingleHopFlow(t *testing.T) {
	network := lineNetwork(t)
	flows := []domain.Flow{{FlowID: 1, Src: 1, Dest: 2, ArrivalRate: 1, BurstSize: 2, MaxPktSize: 1, MaxE2EDelay: 100}}

	r := NewRunner(network, flows, 1000)
	r.WireTopology(network)

	result := colgen.Result{Admitted: []colgen.AdmittedFlow{{FlowID: 1, Path: []int64{1, 2}, ShapingParam: 2, Rate: 1}}}
	require.NoError(t, r.ApplyAdmission(flows, result))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	incomplete, completed := r.Run(ctx)
	assert.True(t, completed)
	assert.Empty(t, incomplete)
}

func TestRunReportsIncompleteOnTimeout(t *testing.T) {
	network := lineNetwork(t)
	flows := []domain.Flow{{FlowID: 1, Src: 1, Dest: 3, ArrivalRate: 1, BurstSize: 2, MaxPktSize: 1, MaxE2EDelay: 100}}

	r := NewRunner(network, flows, 1000)
	// Intentionally skip WireTopology/ApplyAdmission's routing so the
	// flow never drains: mark it pending directly to exercise the
	// timeout path without depending on real forwarding.
	r.pending[1] = true

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	incomplete, completed := r.Run(ctx)
	assert.False(t, completed)
	assert.Equal(t, []int64{1}, incomplete)
}

func TestRunWithNoPendingFlowsCompletesImmediately(t *testing.T) {
	network := lineNetwork(t)
	r := NewRunner(network, nil, 1000)

	incomplete, completed := r.Run(context.Background())
	assert.True(t, completed)
	assert.Empty(t, incomplete)
}
