package telemetry

import (
	"encoding/json"
	"math"
	"strconv"

	"codeberg.org/mutker/sysmond/internal/metrics"
)

// Fixed3 is a float encoded with exactly three decimals.
type Fixed3 float64

func (f Fixed3) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return strconv.AppendFloat(nil, v, 'f', 3, 64), nil
}

// NewRecord flattens a snapshot into the output record.
func NewRecord(s *metrics.Snapshot) Record {
	usages := make([]Fixed3, len(s.CPUUsages))
	for i, u := range s.CPUUsages {
		usages[i] = Fixed3(u)
	}

	net := make([]NetRecord, len(s.Net))
	for i, n := range s.Net {
		net[i] = NetRecord{
			Name:   n.Name,
			RX:     n.RX,
			TX:     n.TX,
			RXRate: Fixed3(n.RXRate),
			TXRate: Fixed3(n.TXRate),
		}
	}

	return Record{
		StampSec:          s.Timestamp.Unix(),
		StampUsec:         int64(s.Timestamp.Nanosecond() / 1000),
		Battery:           Fixed3(s.Battery.Voltage),
		BatteryPercent:    Fixed3(s.Battery.Percent),
		BatteryMaxVoltage: s.Battery.MaxVoltage,
		BatteryMinVoltage: s.Battery.MinVoltage,
		CPUTemp:           s.Temperature.CPU,
		GPUTemp:           s.Temperature.GPU,
		CPUUsages:         usages,
		MemTotal:          s.Memory.Total,
		MemFree:           s.Memory.Free,
		MemUsed:           s.Memory.Used(),
		MemBuffCache:      s.Memory.BuffCache(),
		MemAvailable:      s.Memory.Available,
		MemSwapTotal:      s.Memory.SwapTotal,
		MemSwapFree:       s.Memory.SwapFree,
		DiskTotal:         s.Disk.Total,
		DiskFree:          s.Disk.Free,
		Net:               net,
	}
}

// Encode renders the record as one line of JSON, newline included.
func (r Record) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
