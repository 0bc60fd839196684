// Package randomflow generates synthetic flow sets for a network when
// a run is asked for N random flows instead of an explicit flow list.
package randomflow

import (
	"math/rand"

	"cqfsim/internal/config"
	"cqfsim/internal/domain"
)

// Generate returns count flows with parameters drawn uniformly from
// cfg's ranges, each with a random source and a random destination
// distinct from its source, chosen from nodes. Flows whose source has
// no valid destination (nodes has fewer than two entries) are skipped.
func Generate(count int, nodes []int64, cfg config.RandomFlowConfig, rng *rand.Rand) []domain.Flow {
	if count <= 0 || len(nodes) < 2 || rng == nil {
		return nil
	}

	flows := make([]domain.Flow, 0, count)
	for i := 1; i <= count; i++ {
		src := nodes[rng.Intn(len(nodes))]

		destinations := make([]int64, 0, len(nodes)-1)
		for _, node := range nodes {
			if node != src {
				destinations = append(destinations, node)
			}
		}
		if len(destinations) == 0 {
			continue
		}
		dest := destinations[rng.Intn(len(destinations))]

		maxPktSize := cfg.MaxPktSize
		if maxPktSize <= 0 {
			maxPktSize = 1.5
		}
		numPackets := 3 + rng.Intn(6) // 3..8 inclusive, per the original generator's range
		burstSize := float64(numPackets) * maxPktSize

		flows = append(flows, domain.Flow{
			FlowID:      int64(i),
			ArrivalRate: uniform(rng, cfg.MinRate, cfg.MaxRate),
			BurstSize:   burstSize,
			MaxE2EDelay: uniform(rng, cfg.MinE2EDelay, cfg.MaxE2EDelay),
			MaxPktSize:  maxPktSize,
			Src:         src,
			Dest:        dest,
		})
	}
	return flows
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
