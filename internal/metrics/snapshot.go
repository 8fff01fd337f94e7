package metrics

import "time"

// Snapshot is the full set of values recorded for one tick.
type Snapshot struct {
	Timestamp   time.Time
	Battery     BatteryMetrics
	Temperature TempMetrics
	CPUUsages   []float64
	Memory      MemoryMetrics
	Disk        DiskMetrics
	Net         []NetInterfaceState
}

// Domain value objects
type BatteryMetrics struct {
	Voltage    float64
	Percent    float64
	MaxVoltage int
	MinVoltage int
}

type TempMetrics struct {
	CPU int64
	GPU int64
}

type MemoryMetrics struct {
	Total     uint64
	Free      uint64
	Available uint64
	Buffers   uint64
	Cached    uint64
	SwapTotal uint64
	SwapFree  uint64
}

// Used is total minus free, buffers and cache, floored at zero.
func (m MemoryMetrics) Used() uint64 {
	reserved := m.Free + m.Buffers + m.Cached
	if reserved > m.Total {
		return 0
	}
	return m.Total - reserved
}

// BuffCache is buffers plus page cache.
func (m MemoryMetrics) BuffCache() uint64 {
	return m.Buffers + m.Cached
}

type DiskMetrics struct {
	Total uint64
	Free  uint64
}
