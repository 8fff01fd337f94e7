package telemetry

import (
	"context"

	"codeberg.org/mutker/sysmond/internal/metrics"
)

// Sink records one snapshot per tick.
type Sink interface {
	Write(ctx context.Context, snapshot *metrics.Snapshot) error
	Close() error
}

// Record is the JSON object written for each tick. Field order is part of
// the output format.
type Record struct {
	StampSec          int64       `json:"stamp_sec"`
	StampUsec         int64       `json:"stamp_usec"`
	Battery           Fixed3      `json:"battery"`
	BatteryPercent    Fixed3      `json:"battery_percent"`
	BatteryMaxVoltage int         `json:"battery_max_voltage"`
	BatteryMinVoltage int         `json:"battery_min_voltage"`
	CPUTemp           int64       `json:"cpu_temp"`
	GPUTemp           int64       `json:"gpu_temp"`
	CPUUsages         []Fixed3    `json:"cpu_usages"`
	MemTotal          uint64      `json:"mem_total"`
	MemFree           uint64      `json:"mem_free"`
	MemUsed           uint64      `json:"mem_used"`
	MemBuffCache      uint64      `json:"mem_buff_cache"`
	MemAvailable      uint64      `json:"mem_available"`
	MemSwapTotal      uint64      `json:"mem_swap_total"`
	MemSwapFree       uint64      `json:"mem_swap_free"`
	DiskTotal         uint64      `json:"disk_total"`
	DiskFree          uint64      `json:"disk_free"`
	Net               []NetRecord `json:"net"`
}

type NetRecord struct {
	Name   string `json:"name"`
	RX     uint64 `json:"rx"`
	TX     uint64 `json:"tx"`
	RXRate Fixed3 `json:"rx_rate"`
	TXRate Fixed3 `json:"tx_rate"`
}
