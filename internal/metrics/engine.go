// Package metrics derives rates and percentages from raw readings and keeps
// the per-metric state between ticks.
package metrics

import (
	"time"

	"codeberg.org/mutker/sysmond/internal/config"
	"codeberg.org/mutker/sysmond/internal/reader"
)

// State is everything the engine remembers between ticks.
type State struct {
	CPU     []CPUCoreState
	Net     []NetInterfaceState
	Battery BatteryState
	Memory  reader.MemoryReading
	Disk    reader.DiskReading
	CPUTemp int64
	GPUTemp int64
}

// NewState returns the start-of-process state for cfg.
func NewState(cfg *config.Config) State {
	s := State{
		CPU: make([]CPUCoreState, cfg.CPULines()),
		Net: make([]NetInterfaceState, len(cfg.NetworkInterfaces)),
	}
	for i, name := range cfg.NetworkInterfaces {
		s.Net[i].Name = name
	}

	return s
}

func (s State) clone() State {
	c := s
	c.CPU = append([]CPUCoreState(nil), s.CPU...)
	c.Net = append([]NetInterfaceState(nil), s.Net...)
	return c
}

// Readings are the raw inputs of one tick. A nil field means the reader failed
// or is not configured; the previous value is kept.
type Readings struct {
	CPU     reader.CPUReading
	Memory  *reader.MemoryReading
	Disk    *reader.DiskReading
	Net     []*reader.NetReading
	CPUTemp *int64
	GPUTemp *int64
}

// Derive computes the next state from prev and the readings of one tick.
// It does not modify prev.
func Derive(prev State, r Readings, period time.Duration) State {
	next := prev.clone()

	if r.CPU != nil {
		next.CPU = deriveCPU(prev.CPU, r.CPU)
	}
	next.Net = deriveNet(prev.Net, r.Net, period)

	if r.Memory != nil {
		next.Memory = *r.Memory
	}
	if r.Disk != nil {
		next.Disk = *r.Disk
	}
	if r.CPUTemp != nil {
		next.CPUTemp = *r.CPUTemp
	}
	if r.GPUTemp != nil {
		next.GPUTemp = *r.GPUTemp
	}

	return next
}

// Engine owns the metric state of the daemon.
type Engine struct {
	battery config.BatteryConfig
	period  time.Duration
	state   State
}

func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		battery: cfg.Battery,
		period:  cfg.SamplePeriod,
		state:   NewState(cfg),
	}
}

// UpdateBattery applies a raw battery reading and returns the new battery state.
func (e *Engine) UpdateBattery(raw int64) BatteryState {
	e.state.Battery = DeriveBattery(e.battery, raw)
	return e.state.Battery
}

// Battery returns the last battery state.
func (e *Engine) Battery() BatteryState {
	return e.state.Battery
}

// Apply folds one tick of readings into the state.
func (e *Engine) Apply(r Readings) {
	e.state = Derive(e.state, r, e.period)
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	return e.state.clone()
}

// Snapshot assembles the record of the current tick.
func (e *Engine) Snapshot(now time.Time) *Snapshot {
	s := e.state.clone()

	usages := make([]float64, len(s.CPU))
	for i, c := range s.CPU {
		usages[i] = c.Percent
	}

	return &Snapshot{
		Timestamp: now,
		Battery: BatteryMetrics{
			Voltage:    s.Battery.Voltage,
			Percent:    s.Battery.Percent,
			MaxVoltage: e.battery.MaxVoltage,
			MinVoltage: e.battery.MinVoltage,
		},
		Temperature: TempMetrics{
			CPU: s.CPUTemp,
			GPU: s.GPUTemp,
		},
		CPUUsages: usages,
		Memory:    MemoryMetrics(s.Memory),
		Disk:      DiskMetrics(s.Disk),
		Net:       s.Net,
	}
}
