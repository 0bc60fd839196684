package domain

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Link is a single undirected edge of the network graph. Delay is
// propagation delay in milliseconds; Bandwidth is in Mbps (or any unit
// whose product with a cycle duration in the same time base yields
// KB-per-cycle capacity — see Network.CycleCapacityKB).
type Link struct {
	Node1, Node2 int64
	DelayMs      float64
	BandwidthMb  float64
}

// edgeKey is the canonical (undirected) storage key for a link: the two
// node IDs sorted ascending, so (u,v) and (v,u) always resolve to the
// same entry.
type edgeKey struct{ lo, hi int64 }

func newEdgeKey(a, b int64) edgeKey {
	if a <= b {
		return edgeKey{a, b}
	}
	return edgeKey{b, a}
}

// Network is the weighted undirected graph of TSN nodes and links.
// It is built once by the driver and then read concurrently by the
// admission controller and the forwarding fabric; AddLink is the only
// mutator and is expected to run to completion before those readers
// start, but is still guarded so tests can build networks from multiple
// goroutines without races.
type Network struct {
	mu        sync.RWMutex
	nodes     map[int64]struct{}
	adjacency map[int64][]int64
	links     map[edgeKey]Link

	// tauOverride holds per-node τ values supplied directly by
	// configuration (network.queuing_delays). When present for a node,
	// it takes precedence over the value Tau would otherwise compute
	// from propagation delay. Unifies two otherwise-conflicting ways of
	// obtaining per-node queuing delay.
	tauOverride map[int64]float64
}

// NewNetwork returns an empty network ready to accept nodes and links.
func NewNetwork() *Network {
	return &Network{
		nodes:       make(map[int64]struct{}),
		adjacency:   make(map[int64][]int64),
		links:       make(map[edgeKey]Link),
		tauOverride: make(map[int64]float64),
	}
}

// AddNode registers a node with no links. AddLink also registers its
// endpoints, so this is only needed for isolated nodes.
func (n *Network) AddNode(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nodes[id] = struct{}{}
}

// AddLink adds an undirected link between node1 and node2. Calling it
// twice for the same pair (in either order) replaces the link. The
// stored Link is oriented (lo,hi) whichever order the endpoints came in.
func (n *Network) AddLink(node1, node2 int64, delayMs, bandwidthMb float64) error {
	if node1 == node2 {
		return fmt.Errorf("domain: self-loop at node %d", node1)
	}
	if delayMs < 0 || bandwidthMb < 0 {
		return fmt.Errorf("domain: link (%d,%d) has negative delay or bandwidth", node1, node2)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.nodes[node1] = struct{}{}
	n.nodes[node2] = struct{}{}
	key := newEdgeKey(node1, node2)
	if _, exists := n.links[key]; !exists {
		n.adjacency[node1] = insertSorted(n.adjacency[node1], node2)
		n.adjacency[node2] = insertSorted(n.adjacency[node2], node1)
	}
	n.links[key] = Link{Node1: key.lo, Node2: key.hi, DelayMs: delayMs, BandwidthMb: bandwidthMb}
	return nil
}

func insertSorted(list []int64, v int64) []int64 {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	list = append(list, v)
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// SetTauOverride records a configuration-supplied per-node τ (ms),
// taking precedence over the computed value for that node.
func (n *Network) SetTauOverride(node int64, tauMs float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tauOverride[node] = tauMs
}

// Nodes returns all node IDs in ascending order.
func (n *Network) Nodes() []int64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ids := make([]int64, 0, len(n.nodes))
	for id := range n.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Neighbors returns node's adjacent node IDs in ascending order.
func (n *Network) Neighbors(node int64) []int64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]int64, len(n.adjacency[node]))
	copy(out, n.adjacency[node])
	return out
}

// Delay returns the propagation delay (ms) of the link between u and v,
// resolving either traversal direction.
func (n *Network) Delay(u, v int64) (float64, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	link, ok := n.links[newEdgeKey(u, v)]
	return link.DelayMs, ok
}

// Bandwidth returns the bandwidth (Mbps) of the link between u and v,
// resolving either traversal direction.
func (n *Network) Bandwidth(u, v int64) (float64, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	link, ok := n.links[newEdgeKey(u, v)]
	return link.BandwidthMb, ok
}

// Edges returns every link in a deterministic order (sorted by the
// canonical (lo,hi) key), used by the RMP to build capacity constraints.
func (n *Network) Edges() []Link {
	n.mu.RLock()
	defer n.mu.RUnlock()
	keys := make([]edgeKey, 0, len(n.links))
	for k := range n.links {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].lo != keys[j].lo {
			return keys[i].lo < keys[j].lo
		}
		return keys[i].hi < keys[j].hi
	})
	out := make([]Link, len(keys))
	for i, k := range keys {
		out[i] = n.links[k]
	}
	return out
}

// CycleCapacityKB returns bandwidth(u,v) * T expressed in KB per cycle,
// given the cycle duration T in µs. bandwidth is Mbps, which is
// equivalent to KB/ms scaled by a constant factor. bandwidth * T
// (consistently scaled) yields a KB-per-cycle capacity; this helper
// performs that conversion in one place so internal/pricing and
// internal/rmp never duplicate it.
func (n *Network) CycleCapacityKB(u, v int64, cycleDurationUs float64) (float64, bool) {
	bw, ok := n.Bandwidth(u, v)
	if !ok {
		return 0, false
	}
	// Mbps * 0.000125 = KB/µs (the same conversion factor used for a
	// flow's arrival rate), times the cycle duration in µs.
	return bw * 0.000125 * cycleDurationUs, true
}

// tauDirect computes τ (ms) for a single upstream->node adjacency from
// propagation delay. cycleDurationUs is T in µs.
func tauDirect(delayMs, cycleDurationUs float64) float64 {
	if cycleDurationUs <= 0 {
		return 0
	}
	receptionEndUs := delayMs*1000 + cycleDurationUs
	nextCycleStartUs := math.Ceil(receptionEndUs/cycleDurationUs) * cycleDurationUs
	tauUs := nextCycleStartUs - receptionEndUs
	for tauUs < 0 {
		tauUs += cycleDurationUs
	}
	for tauUs >= cycleDurationUs {
		tauUs -= cycleDurationUs
	}
	return tauUs / 1000
}

// Tau returns the per-node queuing delay τ (ms) used by the pricing
// subproblem's overall-path-delay calculation. If configuration supplied
// an override for this node, that value wins; otherwise τ is the mean of
// tauDirect over every upstream neighbor.
func (n *Network) Tau(node int64, cycleDurationUs float64) float64 {
	n.mu.RLock()
	if v, ok := n.tauOverride[node]; ok {
		n.mu.RUnlock()
		return v
	}
	neighbors := n.adjacency[node]
	links := n.links
	n.mu.RUnlock()

	if len(neighbors) == 0 {
		return 0
	}
	sum := 0.0
	count := 0
	for _, upstream := range neighbors {
		link, ok := links[newEdgeKey(upstream, node)]
		if !ok {
			continue
		}
		sum += tauDirect(link.DelayMs, cycleDurationUs)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
