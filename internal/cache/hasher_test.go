package cache

import (
	"testing"

	"cqfsim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildNetwork(t *testing.T, links [][4]float64) *domain.Network {
	t.Helper()
	n := domain.NewNetwork()
	for _, l := range links {
		require.NoError(t, n.AddLink(int64(l[0]), int64(l[1]), l[2], l[3]))
	}
	return n
}

func TestNetworkHashNil(t *testing.T) {
	assert.Equal(t, "", NetworkHash(nil))
}

func TestNetworkHashSameTopologySameHash(t *testing.T) {
	n1 := buildNetwork(t, [][4]float64{{1, 2, 5, 100}, {2, 3, 3, 50}})
	n2 := buildNetwork(t, [][4]float64{{2, 3, 3, 50}, {1, 2, 5, 100}})

	assert.Equal(t, NetworkHash(n1), NetworkHash(n2))
}

func TestNetworkHashDifferentBandwidthDifferentHash(t *testing.T) {
	n1 := buildNetwork(t, [][4]float64{{1, 2, 5, 100}})
	n2 := buildNetwork(t, [][4]float64{{1, 2, 5, 200}})

	assert.NotEqual(t, NetworkHash(n1), NetworkHash(n2))
}

func TestFlowSetHashOrderIndependent(t *testing.T) {
	a := []domain.Flow{{FlowID: 1, Src: 1, Dest: 2, ArrivalRate: 10}, {FlowID: 2, Src: 2, Dest: 3, ArrivalRate: 20}}
	b := []domain.Flow{{FlowID: 2, Src: 2, Dest: 3, ArrivalRate: 20}, {FlowID: 1, Src: 1, Dest: 2, ArrivalRate: 10}}

	assert.Equal(t, FlowSetHash(a), FlowSetHash(b))
}

func TestFlowSetHashDifferentRateDifferentHash(t *testing.T) {
	a := []domain.Flow{{FlowID: 1, Src: 1, Dest: 2, ArrivalRate: 10}}
	b := []domain.Flow{{FlowID: 1, Src: 1, Dest: 2, ArrivalRate: 11}}

	assert.NotEqual(t, FlowSetHash(a), FlowSetHash(b))
}

func TestBuildAdmissionKey(t *testing.T) {
	assert.Equal(t, "admission:abc123:def456", BuildAdmissionKey("abc123", "def456"))
}

func TestBuildAdmissionKeyWithOptions(t *testing.T) {
	assert.Equal(t, "admission:abc123:def456", BuildAdmissionKeyWithOptions("abc123", "def456", ""))
	assert.Equal(t, "admission:abc123:def456:opt789", BuildAdmissionKeyWithOptions("abc123", "def456", "opt789"))
}

func TestQuickHashLengthAndDeterminism(t *testing.T) {
	data := []byte("test data")
	hash := QuickHash(data)

	assert.Len(t, hash, 64)
	assert.Equal(t, hash, QuickHash(data))
}

func TestShortHashLength(t *testing.T) {
	assert.Len(t, ShortHash([]byte("test data")), 16)
}
