package metrics

import (
	"time"

	"codeberg.org/mutker/sysmond/internal/reader"
)

// NetInterfaceState tracks one configured interface between ticks.
type NetInterfaceState struct {
	Name   string
	RX     uint64
	TX     uint64
	RXRate float64
	TXRate float64
	Primed bool
}

// NetRate returns bytes per second between two counter values one period
// apart. A counter that went backwards (interface reset) yields 0.
func NetRate(prev, now uint64, period time.Duration) float64 {
	if now < prev || period <= 0 {
		return 0
	}
	return float64(now-prev) / period.Seconds()
}

// deriveInterface updates an interface from a fresh reading. The first reading
// only establishes the baseline.
func deriveInterface(prev NetInterfaceState, r reader.NetReading, period time.Duration) NetInterfaceState {
	next := NetInterfaceState{
		Name:   prev.Name,
		RX:     r.RX,
		TX:     r.TX,
		Primed: true,
	}

	if prev.Primed {
		next.RXRate = NetRate(prev.RX, r.RX, period)
		next.TXRate = NetRate(prev.TX, r.TX, period)
	}

	return next
}

func deriveNet(prev []NetInterfaceState, readings []*reader.NetReading, period time.Duration) []NetInterfaceState {
	next := make([]NetInterfaceState, len(prev))
	copy(next, prev)

	for i := range next {
		if i >= len(readings) || readings[i] == nil {
			continue
		}
		next[i] = deriveInterface(prev[i], *readings[i], period)
	}

	return next
}
