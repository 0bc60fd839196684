package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratePacketsExactMultiple(t *testing.T) {
	f := Flow{FlowID: 1, BurstSize: 4, MaxPktSize: 1}
	pkts := f.GeneratePackets()
	assert.Len(t, pkts, 4)
	for _, p := range pkts {
		assert.Equal(t, 1.0, p.SizeKB)
		assert.Equal(t, int64(1), p.FlowID)
	}
}

func TestGeneratePacketsWithRemainder(t *testing.T) {
	f := Flow{FlowID: 2, BurstSize: 2.5, MaxPktSize: 1}
	pkts := f.GeneratePackets()
	assert.Len(t, pkts, 3)
	assert.InDelta(t, 0.5, pkts[2].SizeKB, 1e-9)
}

func TestRateKBPerUsConversion(t *testing.T) {
	f := Flow{ArrivalRate: 8} // Mbps
	assert.InDelta(t, 0.001, f.RateKBPerUs(), 1e-12)
}
