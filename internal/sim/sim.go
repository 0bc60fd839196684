// Package sim wires a domain.Network and a column-generation admission
// result into a live forwarding fabric of internal/node.Node goroutines,
// drives them to completion or timeout, and reports which admitted
// flows finished.
package sim

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"cqfsim/internal/colgen"
	"cqfsim/internal/domain"
	"cqfsim/internal/logger"
	"cqfsim/internal/node"
)

// Runner owns every node in a simulation run and the completion
// tracking for its admitted flows.
type Runner struct {
	nodes           map[int64]*node.Node
	cycleDurationUs float64

	mu        sync.Mutex
	pending   map[int64]bool // flowID -> not yet complete
	done      chan struct{}
	doneOnce  sync.Once
}

// NewRunner builds (but does not yet wire or start) a node for every
// network node: an ingress node for each flow source, a core node for
// everything else.
func NewRunner(network *domain.Network, flows []domain.Flow, cycleDurationUs float64) *Runner {
	r := &Runner{
		nodes:           make(map[int64]*node.Node),
		cycleDurationUs: cycleDurationUs,
		pending:         make(map[int64]bool),
		done:            make(chan struct{}),
	}

	ingressSources := make(map[int64]bool)
	for _, f := range flows {
		ingressSources[f.Src] = true
	}

	for _, id := range network.Nodes() {
		if ingressSources[id] {
			r.nodes[id] = node.NewIngress(id, cycleDurationUs)
		} else {
			r.nodes[id] = node.NewCore(id, cycleDurationUs)
		}
	}
	// A flow's source might not appear in network.Nodes() if the
	// config omitted it as an isolated node; guard against a nil map
	// entry rather than panicking during wiring.
	for src := range ingressSources {
		if _, ok := r.nodes[src]; !ok {
			r.nodes[src] = node.NewIngress(src, cycleDurationUs)
		}
	}

	return r
}

// WireTopology connects every node to its neighbors' inbound channels
// and has each node learn its label-remapping table from the
// propagation delay of the link it was learned over.
func (r *Runner) WireTopology(network *domain.Network) {
	for _, link := range network.Edges() {
		n1, ok1 := r.nodes[link.Node1]
		n2, ok2 := r.nodes[link.Node2]
		if !ok1 || !ok2 {
			continue
		}
		n1.ConnectOutbound(link.Node2, n2.Inbound())
		n2.ConnectOutbound(link.Node1, n1.Inbound())

		n1.LearnMapping(link.Node2, network.Neighbors(link.Node1), link.DelayMs)
		n2.LearnMapping(link.Node1, network.Neighbors(link.Node2), link.DelayMs)
	}
}

// ApplyAdmission sets up routing entries, flow paths, and ingress
// shaping for every admitted flow, and registers flow-completion
// tracking so Wait can observe when the run drains.
func (r *Runner) ApplyAdmission(flows []domain.Flow, result colgen.Result) error {
	flowByID := make(map[int64]domain.Flow, len(flows))
	for _, f := range flows {
		flowByID[f.FlowID] = f
	}

	r.mu.Lock()
	for _, a := range result.Admitted {
		r.pending[a.FlowID] = true
	}
	r.mu.Unlock()

	for _, a := range result.Admitted {
		flow, ok := flowByID[a.FlowID]
		if !ok || len(a.Path) == 0 {
			return fmt.Errorf("sim: admitted flow %d has no matching flow definition", a.FlowID)
		}

		source, ok := r.nodes[a.Path[0]]
		if !ok {
			return fmt.Errorf("sim: admitted flow %d has no node for source %d", a.FlowID, a.Path[0])
		}
		source.SetFlowPath(a.FlowID, a.Path)
		source.ShapeFlow(flow, a.ShapingParam)

		for i := 0; i < len(a.Path)-1; i++ {
			current, ok := r.nodes[a.Path[i]]
			if !ok {
				continue
			}
			if current.Role == node.RoleCore {
				current.SetRoutingEntry(a.FlowID, a.Path[i+1])
			}
		}

		source.SetOnFlowComplete(r.flowCompleted)
	}
	return nil
}

func (r *Runner) flowCompleted(flowID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pending[flowID]; !ok {
		return
	}
	r.pending[flowID] = false
	logger.Log.Info("flow completed", "flow_id", flowID)

	for _, incomplete := range r.pending {
		if incomplete {
			return
		}
	}
	r.doneOnce.Do(func() { close(r.done) })
}

// Run starts every node's cycle loop and blocks until either every
// admitted flow completes or ctx is canceled (the caller is expected to
// derive ctx with the configured completion timeout). It returns the
// set of flow IDs still incomplete, if any, and whether the run drained
// cleanly.
func (r *Runner) Run(ctx context.Context) (incomplete []int64, completed bool) {
	if len(r.pending) == 0 {
		return nil, true
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(runCtx)
	for _, n := range r.nodes {
		n := n
		group.Go(func() error {
			err := n.Run(groupCtx)
			if err == context.Canceled || err == context.DeadlineExceeded {
				return nil
			}
			return err
		})
	}

	select {
	case <-r.done:
		completed = true
	case <-ctx.Done():
		completed = false
	}
	cancel()
	_ = group.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	for flowID, stillPending := range r.pending {
		if stillPending {
			incomplete = append(incomplete, flowID)
		}
	}
	return incomplete, completed
}
