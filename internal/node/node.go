// Package node implements the per-node CQF forwarding state machine:
// three round-robin cycle queues, a label-remapping table, and (for
// ingress nodes) burst shaping of admitted flows into per-cycle
// sub-queues. Nodes never call into a neighbor directly; they hand off
// packets over a channel so a slow or blocked downstream node can never
// deadlock an upstream one.
package node

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cqfsim/internal/domain"
	"cqfsim/internal/logger"
	"cqfsim/internal/mapping"
	"cqfsim/internal/metrics"
	"cqfsim/internal/telemetry"
)

// Role distinguishes an ingress node (which shapes flows onto the
// fabric) from a core node (which only forwards).
type Role int

const (
	RoleCore Role = iota
	RoleIngress
)

func (r Role) String() string {
	if r == RoleIngress {
		return "ingress"
	}
	return "core"
}

// pollInterval is how often Run wakes up to check whether a cycle has
// elapsed. A cycle runs at the first poll at least cycleDurationUs after
// the previous one, so a cycle shorter than this interval runs once per
// poll.
const pollInterval = 100 * time.Millisecond

// Inbound is a packet handed to a node's inbound channel by whichever
// neighbor is transmitting it, tagged with the port it arrived on.
type Inbound struct {
	Packet domain.Packet
	InPort int64
}

// ingressPending tracks one shaped flow waiting to be drained out of an
// ingress node, in FIFO admission order.
type ingressPending struct {
	FlowID    int64
	NumCycles int
}

// Node is a single CQF switching element: a Core node forwards packets
// between its three cycle queues and its neighbors; an Ingress node
// additionally shapes newly admitted flows onto the fabric.
type Node struct {
	ID              int64
	Role            Role
	cycleDurationUs float64

	mu               sync.Mutex
	queues           [domain.NumQueues]map[int64][]domain.Packet // [label][outPort] -> packets
	activeQueueIndex int
	currentCycle     int64

	mapping *mapping.Table
	routing map[int64]int64 // flowID -> next hop node ID

	neighbors map[int64]chan<- Inbound
	inbound   chan Inbound

	// Ingress-only shaping state.
	flowQueues map[int64][][]domain.Packet // flowID -> [cycle index] -> packets
	flowOrder  []ingressPending
	nextHop    map[int64]int64

	onDeliver      func(pkt domain.Packet, atNode int64)
	onFlowComplete func(flowID int64)
}

func newNode(id int64, role Role, cycleDurationUs float64) *Node {
	n := &Node{
		ID:              id,
		Role:            role,
		cycleDurationUs: cycleDurationUs,
		mapping:         mapping.NewTable(),
		routing:         make(map[int64]int64),
		neighbors:       make(map[int64]chan<- Inbound),
		inbound:         make(chan Inbound, 256),
	}
	for i := range n.queues {
		n.queues[i] = make(map[int64][]domain.Packet)
	}
	if role == RoleIngress {
		n.flowQueues = make(map[int64][][]domain.Packet)
		n.nextHop = make(map[int64]int64)
	}
	return n
}

// NewCore returns an unwired core node.
func NewCore(id int64, cycleDurationUs float64) *Node {
	return newNode(id, RoleCore, cycleDurationUs)
}

// NewIngress returns an unwired ingress node.
func NewIngress(id int64, cycleDurationUs float64) *Node {
	return newNode(id, RoleIngress, cycleDurationUs)
}

// Inbound exposes the channel neighbors should send packets into when
// forwarding toward this node.
func (n *Node) Inbound() chan<- Inbound {
	return n.inbound
}

// ConnectOutbound registers the channel this node should use to hand
// packets to neighborID.
func (n *Node) ConnectOutbound(neighborID int64, ch chan<- Inbound) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.neighbors[neighborID] = ch
}

// SetRoutingEntry records that packets belonging to flowID should next
// travel toward nextHop.
func (n *Node) SetRoutingEntry(flowID, nextHop int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routing[flowID] = nextHop
}

// LearnMapping populates this node's label-remapping table for packets
// arriving on inPort, given the propagation delay (ms) from the
// upstream neighbor on that port.
func (n *Node) LearnMapping(inPort int64, outPorts []int64, delayMs float64) {
	mapping.Learn(n.mapping, inPort, outPorts, delayMs, n.cycleDurationUs)
}

// SetFlowPath records the path an admitted flow takes from this
// (ingress) node, so ShapeFlow knows which neighbor to drain into.
func (n *Node) SetFlowPath(flowID int64, path []int64) {
	if n.Role != RoleIngress || len(path) < 2 {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextHop[flowID] = path[1]
}

// OnDeliver registers a callback invoked whenever a packet reaches a
// node with no routing entry for its flow, i.e. its destination.
func (n *Node) OnDeliver(fn func(pkt domain.Packet, atNode int64)) {
	n.onDeliver = fn
}

// SetOnFlowComplete registers a callback invoked (ingress only) once a
// shaped flow has been fully drained onto the fabric.
func (n *Node) SetOnFlowComplete(fn func(flowID int64)) {
	n.onFlowComplete = fn
}

// ShapeFlow splits flow's burst into packets and distributes them
// round-robin across numCycles = ceil(burst/shapingParam) per-cycle
// sub-queues, labeling each packet with the sub-queue index it falls
// in. The flow is appended to this node's drain order.
func (n *Node) ShapeFlow(flow domain.Flow, shapingParam float64) {
	if n.Role != RoleIngress || shapingParam <= 0 {
		return
	}
	packets := flow.GeneratePackets()
	numCycles := ceilDiv(flow.BurstSize, shapingParam)
	if numCycles < 1 {
		numCycles = 1
	}

	buckets := make([][]domain.Packet, numCycles)
	for i, pkt := range packets {
		idx := i % numCycles
		pkt.Label = idx
		buckets[idx] = append(buckets[idx], pkt)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.flowQueues[flow.FlowID] = buckets
	n.flowOrder = append(n.flowOrder, ingressPending{FlowID: flow.FlowID, NumCycles: numCycles})
}

func ceilDiv(numerator, denominator float64) int {
	if denominator <= 0 {
		return 0
	}
	q := numerator / denominator
	i := int(q)
	if float64(i) < q {
		i++
	}
	return i
}

// receivePacket processes one packet arriving on inPort: if no route
// exists for its flow, the packet has reached its destination; else it
// is relabeled per the mapping table and enqueued for the cycle queue
// matching its new label.
func (n *Node) receivePacket(pkt domain.Packet, inPort int64) {
	n.mu.Lock()
	nextHop, routed := n.routing[pkt.FlowID]
	if !routed {
		n.mu.Unlock()
		if n.onDeliver != nil {
			n.onDeliver(pkt, n.ID)
		}
		metrics.Get().RecordPacketForwarded(fmt.Sprintf("%d", n.ID))
		return
	}

	entry, ok := n.mapping.Resolve(inPort, pkt.Label, nextHop)
	if !ok {
		n.mu.Unlock()
		logger.WithNode(n.ID).Warn("mapping miss", "in_port", inPort, "in_label", pkt.Label, "flow", pkt.FlowID)
		metrics.Get().RecordPacketDropped(fmt.Sprintf("%d", n.ID), "mapping_miss")
		return
	}

	pkt.Label = entry.OutLabel
	n.queues[entry.OutLabel][entry.OutPort] = append(n.queues[entry.OutLabel][entry.OutPort], pkt)
	n.mu.Unlock()
}

// transmitPackets drains the active queue (core) or the head-of-line
// shaped flow (ingress) and hands packets off to neighbors over their
// channels, never while holding this node's own lock. It returns the
// number of packets forwarded and dropped, for the caller's span
// attributes.
func (n *Node) transmitPackets() (forwarded, dropped int) {
	if n.Role == RoleIngress {
		return n.transmitIngress()
	}
	return n.transmitCore()
}

func (n *Node) transmitCore() (forwarded, dropped int) {
	n.mu.Lock()
	active := n.activeQueueIndex
	outbound := n.queues[active]
	n.queues[active] = make(map[int64][]domain.Packet)
	routing := n.routing
	neighbors := n.neighbors
	n.activeQueueIndex = (n.activeQueueIndex + 1) % domain.NumQueues
	n.currentCycle++
	n.mu.Unlock()

	for _, packets := range outbound {
		for _, pkt := range packets {
			nextHop, ok := routing[pkt.FlowID]
			if !ok {
				continue
			}
			ch, ok := neighbors[nextHop]
			if !ok {
				logger.WithNode(n.ID).Warn("forwarding dead end", "flow", pkt.FlowID, "next_hop", nextHop)
				metrics.Get().RecordPacketDropped(fmt.Sprintf("%d", n.ID), "forwarding_dead_end")
				dropped++
				continue
			}
			ch <- Inbound{Packet: pkt, InPort: n.ID}
			metrics.Get().RecordPacketForwarded(fmt.Sprintf("%d", n.ID))
			forwarded++
		}
	}
	return forwarded, dropped
}

func (n *Node) transmitIngress() (forwarded, dropped int) {
	n.mu.Lock()
	if len(n.flowOrder) == 0 {
		n.mu.Unlock()
		return 0, 0
	}
	pending := n.flowOrder[0]
	buckets := n.flowQueues[pending.FlowID]
	cycleIdx := int(n.currentCycle % int64(pending.NumCycles))
	packets := buckets[cycleIdx]
	nextHop, hasHop := n.nextHop[pending.FlowID]

	advance := cycleIdx == pending.NumCycles-1
	if advance {
		n.flowOrder = n.flowOrder[1:]
		delete(n.flowQueues, pending.FlowID)
		delete(n.nextHop, pending.FlowID)
		n.currentCycle = 0
	} else {
		n.currentCycle++
	}
	neighbors := n.neighbors
	onComplete := n.onFlowComplete
	n.mu.Unlock()

	if hasHop {
		if ch, ok := neighbors[nextHop]; ok {
			for _, pkt := range packets {
				ch <- Inbound{Packet: pkt, InPort: n.ID}
				metrics.Get().RecordPacketForwarded(fmt.Sprintf("%d", n.ID))
				forwarded++
			}
		}
	}
	if advance && onComplete != nil {
		onComplete(pending.FlowID)
	}
	return forwarded, dropped
}

// QueueDepth reports how many packets are queued under label, summed
// across outbound ports, for metrics and tests.
func (n *Node) QueueDepth(label int) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if label < 0 || label >= domain.NumQueues {
		return 0
	}
	total := 0
	for _, pkts := range n.queues[label] {
		total += len(pkts)
	}
	return total
}

// Run drives this node's cycle loop until ctx is canceled: at the first
// poll at least cycleDurationUs after the previous cycle it drains the
// active queue (or the head ingress flow), while continuously absorbing
// inbound packets in between.
func (n *Node) Run(ctx context.Context) error {
	cycle := time.Duration(n.cycleDurationUs) * time.Microsecond
	if cycle <= 0 {
		cycle = pollInterval
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastCycle := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-n.inbound:
			n.receivePacket(in.Packet, in.InPort)
		case now := <-ticker.C:
			if now.Sub(lastCycle) >= cycle {
				nodeKey := fmt.Sprintf("%d", n.ID)
				metrics.Get().NodeActivity.Start(nodeKey)
				timer := metrics.NewTimer(metrics.Get().NodeCycleDuration, n.Role.String())
				var forwarded, dropped int
				_ = telemetry.WithSpan(ctx, "node", "cycle", func(spanCtx context.Context) error {
					forwarded, dropped = n.transmitPackets()
					telemetry.SetAttributes(spanCtx, telemetry.ForwardingAttributes(n.ID, n.currentCycle, forwarded, dropped)...)
					return nil
				})
				timer.ObserveDuration()
				metrics.Get().NodeActivity.End(nodeKey)
				if dropped > 0 {
					logger.WithCycle(n.currentCycle).Warn("packets dropped this cycle", "node", n.ID, "dropped", dropped, "forwarded", forwarded)
				}

				lastCycle = now
				label := n.activeQueueIndex
				metrics.Get().SetQueueDepth(nodeKey, fmt.Sprintf("%d", label), n.QueueDepth(label))
			}
		}
	}
}
