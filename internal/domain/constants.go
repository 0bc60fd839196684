// Package domain holds the CQF network model: nodes, links, flows, packets,
// and the τ (tau) residual-wait computation shared by the admission
// controller and the forwarding fabric.
package domain

import "math"

// Epsilon is the tolerance used for floating-point comparisons throughout
// the admission controller (LP bounds, capacity checks, rounding).
const Epsilon = 1e-9

// Infinity represents an unreachable distance in shortest-path searches.
const Infinity = math.MaxFloat64

// NumQueues is the fixed number of CQF cycle queues this simulator
// supports. Anything other than 3 is out of scope (spec Non-goals).
const NumQueues = 3

// FloatEquals compares two float64 values within Epsilon.
func FloatEquals(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// FloatLessOrEqual reports whether a <= b within Epsilon.
func FloatLessOrEqual(a, b float64) bool {
	return a <= b+Epsilon
}

// IsZero reports whether v is within Epsilon of zero.
func IsZero(v float64) bool {
	return math.Abs(v) < Epsilon
}

// IsPositive reports whether v exceeds Epsilon.
func IsPositive(v float64) bool {
	return v > Epsilon
}
