package metrics

import "codeberg.org/mutker/sysmond/internal/reader"

// CPUCoreState tracks one cpu line between ticks.
type CPUCoreState struct {
	LastSum  uint64
	LastIdle uint64
	Percent  float64
	Primed   bool
}

// CPUPercent derives the busy percentage from the counter deltas since prev
// and returns the new state.
//
// The first sample only sets the baseline and reports 0. When no cycles were
// counted, or the counters went backwards, the previous percentage is kept
// and the baseline moves to the new values.
func CPUPercent(prev CPUCoreState, now reader.CPUCounters) CPUCoreState {
	sum, idle := now.Sum(), now.Idle()
	next := CPUCoreState{
		LastSum:  sum,
		LastIdle: idle,
		Percent:  prev.Percent,
		Primed:   true,
	}

	if !prev.Primed {
		next.Percent = 0
		return next
	}

	if sum <= prev.LastSum || idle < prev.LastIdle {
		return next
	}

	dSum := sum - prev.LastSum
	dIdle := idle - prev.LastIdle
	next.Percent = clamp(100-100*float64(dIdle)/float64(dSum), 0, 100)

	return next
}

func deriveCPU(prev []CPUCoreState, r reader.CPUReading) []CPUCoreState {
	next := make([]CPUCoreState, len(prev))
	copy(next, prev)

	if len(r) != len(prev) {
		return next
	}

	for i, counters := range r {
		next[i] = CPUPercent(prev[i], counters)
	}

	return next
}
