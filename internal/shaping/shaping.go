// Package shaping enumerates the feasible burst-shaping parameters for a
// flow: the maximum KB of its burst that may be released into a single
// CQF cycle.
package shaping

import (
	"math"
	"sort"

	"cqfsim/internal/domain"
)

// PossibleParameters returns the set B_f of feasible shaping values (KB
// per cycle) for flow f under a cycle duration cycleDurationUs (µs),
// sorted ascending. A candidate for n cycles is admissible only if the
// burst, split n ways and rounded up, is still at least the KB the
// flow's arrival rate brings in one cycle; enumeration also stops once
// that share stops decreasing with n. Each admissible candidate is
// rounded up to a multiple of the flow's max packet size.
func PossibleParameters(f domain.Flow, cycleDurationUs float64) []float64 {
	if f.MaxPktSize <= 0 || f.BurstSize <= 0 {
		return nil
	}

	rf := f.RateKBPerUs()
	seen := make(map[float64]struct{})
	values := make([]float64, 0, 4)

	prevCeil := math.Inf(1)
	for n := 1; ; n++ {
		c := math.Ceil(f.BurstSize / float64(n))
		if c < rf*cycleDurationUs {
			break
		}

		candidate := f.MaxPktSize * math.Ceil(f.BurstSize/(float64(n)*f.MaxPktSize))
		if _, ok := seen[candidate]; !ok {
			seen[candidate] = struct{}{}
			values = append(values, candidate)
		}

		if c >= prevCeil {
			break
		}
		prevCeil = c
	}

	sort.Float64s(values)
	return values
}
