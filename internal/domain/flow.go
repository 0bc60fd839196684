package domain

import "math"

// Packet is a single unit of a flow's burst, queued and forwarded by the
// CQF fabric under a cycle Label in {0,1,2}.
type Packet struct {
	SizeKB float64
	FlowID int64
	Label  int
}

// Flow is an immutable admission-control input: a burst-shaping request
// from Src to Dest with a rate, burst, packet-size, and delay budget.
type Flow struct {
	FlowID      int64
	ArrivalRate float64 // Mbps
	BurstSize   float64 // KB
	MaxE2EDelay float64 // ms
	MaxPktSize  float64 // KB
	Src, Dest   int64
}

// RateKBPerUs converts ArrivalRate from Mbps to KB/µs, the unit used
// when comparing a flow's arrival rate against a per-cycle byte count.
func (f Flow) RateKBPerUs() float64 {
	return f.ArrivalRate * 0.000125
}

// GeneratePackets splits the flow's burst into a sequence of packets,
// each MaxPktSize KB except a possible final remainder. Labels are left
// at 0 and assigned later by the ingress shaper.
func (f Flow) GeneratePackets() []Packet {
	if f.MaxPktSize <= 0 || f.BurstSize <= 0 {
		return nil
	}
	remaining := f.BurstSize
	packets := make([]Packet, 0, int(math.Ceil(f.BurstSize/f.MaxPktSize)))
	for remaining > Epsilon {
		size := f.MaxPktSize
		if remaining < size {
			size = remaining
		}
		packets = append(packets, Packet{SizeKB: size, FlowID: f.FlowID})
		remaining -= size
	}
	return packets
}
