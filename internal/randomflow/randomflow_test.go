package randomflow

import (
	"math/rand"
	"testing"

	"cqfsim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.RandomFlowConfig {
	return config.RandomFlowConfig{
		MinRate:     5,
		MaxRate:     15,
		MinE2EDelay: 30,
		MaxE2EDelay: 70,
		MaxPktSize:  2,
	}
}

func TestGenerateReturnsRequestedCount(t *testing.T) {
	flows := Generate(5, []int64{1, 2, 3}, testConfig(), rand.New(rand.NewSource(1)))
	assert.Len(t, flows, 5)
}

func TestGenerateSourceNeverEqualsDest(t *testing.T) {
	flows := Generate(50, []int64{1, 2, 3, 4}, testConfig(), rand.New(rand.NewSource(7)))
	require.NotEmpty(t, flows)
	for _, f := range flows {
		assert.NotEqual(t, f.Src, f.Dest)
	}
}

func TestGenerateRatesWithinConfiguredRange(t *testing.T) {
	cfg := testConfig()
	flows := Generate(50, []int64{1, 2}, cfg, rand.New(rand.NewSource(3)))
	for _, f := range flows {
		assert.GreaterOrEqual(t, f.ArrivalRate, cfg.MinRate)
		assert.LessOrEqual(t, f.ArrivalRate, cfg.MaxRate)
		assert.GreaterOrEqual(t, f.MaxE2EDelay, cfg.MinE2EDelay)
		assert.LessOrEqual(t, f.MaxE2EDelay, cfg.MaxE2EDelay)
	}
}

func TestGenerateSequentialFlowIDs(t *testing.T) {
	flows := Generate(3, []int64{1, 2}, testConfig(), rand.New(rand.NewSource(9)))
	require.Len(t, flows, 3)
	for i, f := range flows {
		assert.Equal(t, int64(i+1), f.FlowID)
	}
}

func TestGenerateWithFewerThanTwoNodesReturnsNil(t *testing.T) {
	flows := Generate(5, []int64{1}, testConfig(), rand.New(rand.NewSource(1)))
	assert.Nil(t, flows)
}

func TestGenerateWithNilRNGReturnsNil(t *testing.T) {
	flows := Generate(5, []int64{1, 2}, testConfig(), nil)
	assert.Nil(t, flows)
}

func TestGenerateDeterministicForFixedSeed(t *testing.T) {
	a := Generate(10, []int64{1, 2, 3}, testConfig(), rand.New(rand.NewSource(42)))
	b := Generate(10, []int64{1, 2, 3}, testConfig(), rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}
