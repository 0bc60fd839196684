// Package mapping implements the label-remapping table a CQF node
// consults when forwarding a packet: given the port and cycle label a
// packet arrived on, it resolves the output port and the label the
// packet should carry on its next hop.
package mapping

import (
	"math"
	"sync"
)

// Entry is one candidate forwarding choice: send out outPort with the
// packet relabeled to OutLabel.
type Entry struct {
	OutPort  int64
	OutLabel int
}

type key struct {
	inPort   int64
	inLabel  int
}

// Table is a node's mapping table: for every (in_port, in_label) pair
// it may observe, the set of (out_port, out_label) choices learned for
// it. A pair can map to more than one out_port when the node has
// multiple downstream neighbors.
type Table struct {
	mu      sync.RWMutex
	entries map[key][]Entry
}

// NewTable returns an empty mapping table.
func NewTable() *Table {
	return &Table{entries: make(map[key][]Entry)}
}

// Add records that a packet arriving on (inPort, inLabel) may be
// forwarded out outPort relabeled to outLabel. Duplicate entries for
// the same (in_port, in_label) are ignored.
func (t *Table) Add(inPort int64, inLabel int, outPort int64, outLabel int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := key{inPort, inLabel}
	for _, e := range t.entries[k] {
		if e.OutPort == outPort && e.OutLabel == outLabel {
			return
		}
	}
	t.entries[k] = append(t.entries[k], Entry{OutPort: outPort, OutLabel: outLabel})
}

// Lookup returns every learned forwarding choice for (inPort, inLabel).
func (t *Table) Lookup(inPort int64, inLabel int) ([]Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entries, ok := t.entries[key{inPort, inLabel}]
	return entries, ok
}

// Resolve picks the forwarding choice for (inPort, inLabel): the entry
// whose OutPort equals preferredOutPort if one exists, otherwise the
// first entry learned. It reports false if nothing was ever learned
// for this (in_port, in_label) pair.
func (t *Table) Resolve(inPort int64, inLabel int, preferredOutPort int64) (Entry, bool) {
	entries, ok := t.Lookup(inPort, inLabel)
	if !ok || len(entries) == 0 {
		return Entry{}, false
	}
	chosen := entries[0]
	for _, e := range entries {
		if e.OutPort == preferredOutPort {
			chosen = e
			break
		}
	}
	return chosen, true
}

// Learn populates table with the label shift induced by the
// propagation delay from upstream into inPort: a packet takes
// cycles_to_shift = ceil(delayMs / cycleDurationMs) cycles to arrive,
// so its label advances by that many cycles (mod 3) on every outPort
// other than the one it arrived on. Role-agnostic: core and ingress
// nodes learn mappings identically.
func Learn(table *Table, inPort int64, outPorts []int64, delayMs, cycleDurationUs float64) {
	cycleDurationMs := cycleDurationUs / 1000
	cyclesToShift := 0
	if cycleDurationMs > 0 {
		cyclesToShift = int(math.Ceil(delayMs / cycleDurationMs))
	}

	for _, outPort := range outPorts {
		if outPort == inPort {
			continue
		}
		for inLabel := 0; inLabel < 3; inLabel++ {
			outLabel := (inLabel + cyclesToShift) % 3
			table.Add(inPort, inLabel, outPort, outLabel)
		}
	}
}
