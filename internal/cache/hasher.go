package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"cqfsim/internal/domain"
)

// NetworkHash computes a deterministic hash of a network's topology for
// use as a cache key. Two networks with the same nodes and links hash
// identically regardless of the order AddLink was called in.
func NetworkHash(network *domain.Network) string {
	if network == nil {
		return ""
	}
	data := networkToCanonical(network)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// networkToCanonical builds a deterministic byte representation of a
// network: sorted nodes, then sorted (lo,hi) links with delay/bandwidth.
func networkToCanonical(network *domain.Network) []byte {
	var result []byte

	for _, id := range network.Nodes() {
		result = append(result, []byte(fmt.Sprintf("n:%d;", id))...)
	}
	for _, link := range network.Edges() {
		result = append(result, []byte(fmt.Sprintf("e:%d:%d:%.6f:%.6f;",
			link.Node1, link.Node2, link.DelayMs, link.BandwidthMb))...)
	}
	return result
}

// FlowSetHash computes a deterministic hash of a flow set for use as a
// cache key, independent of slice order.
func FlowSetHash(flows []domain.Flow) string {
	sorted := make([]domain.Flow, len(flows))
	copy(sorted, flows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FlowID < sorted[j].FlowID })

	var result []byte
	for _, f := range sorted {
		result = append(result, []byte(fmt.Sprintf("f:%d:%d:%d:%.6f:%.6f:%.6f:%.6f;",
			f.FlowID, f.Src, f.Dest, f.ArrivalRate, f.BurstSize, f.MaxE2EDelay, f.MaxPktSize))...)
	}
	hash := sha256.Sum256(result)
	return hex.EncodeToString(hash[:16])
}

// BuildAdmissionKey builds a cache key for a column-generation admission
// result, identified by network topology and the flow set under
// consideration.
func BuildAdmissionKey(networkHash, flowSetHash string) string {
	return fmt.Sprintf("admission:%s:%s", networkHash, flowSetHash)
}

// BuildAdmissionKeyWithOptions builds an admission key further scoped by
// a hash of solver options (e.g. seed, rounding trial count).
func BuildAdmissionKeyWithOptions(networkHash, flowSetHash, optionsHash string) string {
	if optionsHash == "" {
		return BuildAdmissionKey(networkHash, flowSetHash)
	}
	return fmt.Sprintf("admission:%s:%s:%s", networkHash, flowSetHash, optionsHash)
}

// QuickHash is a full-length SHA-256 hash of arbitrary data.
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash is a truncated (16-character) SHA-256 hash of arbitrary data.
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
