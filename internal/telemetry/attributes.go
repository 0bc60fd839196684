package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard attribute keys.
const (
	// Network
	AttrNetworkNodes = "network.nodes"
	AttrNetworkLinks = "network.links"

	// Admission control
	AttrColGenIterations = "colgen.iterations"
	AttrColumnsGenerated = "colgen.columns_generated"
	AttrFlowsAdmitted    = "colgen.flows_admitted"
	AttrFlowsRejected    = "colgen.flows_rejected"

	// Forwarding
	AttrNodeID       = "node.id"
	AttrFlowID       = "flow.id"
	AttrCycle        = "sim.cycle"
	AttrPacketsSent  = "sim.packets_forwarded"
	AttrPacketsDrops = "sim.packets_dropped"
)

// NetworkAttributes returns attributes describing a network's size.
func NetworkAttributes(nodes, links int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrNetworkNodes, nodes),
		attribute.Int(AttrNetworkLinks, links),
	}
}

// ColGenAttributes returns attributes describing a column-generation run.
func ColGenAttributes(iterations, columnsGenerated, admitted, rejected int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrColGenIterations, iterations),
		attribute.Int(AttrColumnsGenerated, columnsGenerated),
		attribute.Int(AttrFlowsAdmitted, admitted),
		attribute.Int(AttrFlowsRejected, rejected),
	}
}

// ForwardingAttributes returns attributes describing a single node's
// forwarding activity within a cycle.
func ForwardingAttributes(nodeID int64, cycle int64, forwarded, dropped int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(AttrNodeID, nodeID),
		attribute.Int64(AttrCycle, cycle),
		attribute.Int(AttrPacketsSent, forwarded),
		attribute.Int(AttrPacketsDrops, dropped),
	}
}
