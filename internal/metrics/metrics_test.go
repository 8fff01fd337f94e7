package metrics_test

import (
	"math"
	"testing"
	"time"

	"codeberg.org/mutker/sysmond/internal/config"
	"codeberg.org/mutker/sysmond/internal/metrics"
	"codeberg.org/mutker/sysmond/internal/reader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Battery: config.BatteryConfig{
			MaxVoltage:    4200,
			MinVoltage:    3300,
			CutoffVoltage: 3000,
			DivideRatio:   1.0,
			Input:         "/sys/battery",
		},
		SamplePeriod:      300 * time.Millisecond,
		CPUCores:          1,
		NetworkInterfaces: []string{"eth0", "wlan0"},
	}
}

func counters(fields ...uint64) reader.CPUCounters {
	return reader.CPUCounters{Fields: fields}
}

func TestBatteryPercentBounds(t *testing.T) {
	assert.Equal(t, 0.0, metrics.BatteryPercent(3300, 3300, 4200))
	assert.Equal(t, 0.0, metrics.BatteryPercent(3299.9, 3300, 4200))
	assert.Equal(t, 0.0, metrics.BatteryPercent(0, 3300, 4200))

	atMax := metrics.BatteryPercent(4200, 3300, 4200)
	assert.LessOrEqual(t, atMax, 100.0)
	assert.InDelta(t, 100.0, atMax, 0.05)
	assert.InDelta(t, 99.968, atMax, 1e-3, "the curve stays just below 100 at max voltage")

	assert.Equal(t, 100.0, metrics.BatteryPercent(5000, 3300, 4200))
}

func TestBatteryPercentFormula(t *testing.T) {
	v := 3750.0
	x := 1.33 * (v - 3300) / (4200 - 3300)
	want := 101 - 101/math.Pow(1+math.Pow(x, 4.5), 3)

	assert.InDelta(t, want, metrics.BatteryPercent(v, 3300, 4200), 1e-9)
}

func TestBatteryPercentMonotonic(t *testing.T) {
	prev := metrics.BatteryPercent(3300, 3300, 4200)
	for v := 3305.0; v <= 4200; v += 5 {
		p := metrics.BatteryPercent(v, 3300, 4200)
		require.Greater(t, p, prev, "voltage %v", v)
		prev = p
	}
}

func TestDeriveBattery(t *testing.T) {
	cfg := testConfig().Battery
	cfg.DivideRatio = 2.0

	b := metrics.DeriveBattery(cfg, 2100)
	assert.Equal(t, int64(2100), b.Raw)
	assert.InDelta(t, 4200.0, b.Voltage, 1e-9)
	assert.True(t, b.Valid)

	b = metrics.DeriveBattery(cfg, 1400)
	assert.InDelta(t, 2800.0, b.Voltage, 1e-9)
	assert.False(t, b.Valid)
	assert.Equal(t, 0.0, b.Percent)

	b = metrics.DeriveBattery(cfg, 1500)
	assert.True(t, b.Valid, "cutoff itself is valid")
}

func TestCPUPercent(t *testing.T) {
	var s metrics.CPUCoreState

	s = metrics.CPUPercent(s, counters(100, 0, 100, 800))
	assert.Equal(t, 0.0, s.Percent, "first sample reports 0")
	assert.True(t, s.Primed)

	s = metrics.CPUPercent(s, counters(150, 0, 150, 900))
	assert.InDelta(t, 50.0, s.Percent, 1e-9)

	s = metrics.CPUPercent(s, counters(150, 0, 150, 900))
	assert.InDelta(t, 50.0, s.Percent, 1e-9, "equal sums keep the previous value")

	s = metrics.CPUPercent(s, counters(150, 0, 150, 1000))
	assert.InDelta(t, 0.0, s.Percent, 1e-9)

	s = metrics.CPUPercent(s, counters(250, 0, 150, 1000))
	assert.InDelta(t, 100.0, s.Percent, 1e-9)
}

func TestCPUPercentCounterReset(t *testing.T) {
	s := metrics.CPUPercent(metrics.CPUCoreState{}, counters(100, 0, 100, 800))
	s = metrics.CPUPercent(s, counters(200, 0, 100, 900))
	require.InDelta(t, 50.0, s.Percent, 1e-9)

	s = metrics.CPUPercent(s, counters(10, 0, 10, 80))
	assert.InDelta(t, 50.0, s.Percent, 1e-9)
	assert.Equal(t, uint64(100), s.LastSum, "baseline moves to the new counters")
}

func TestCPUPercentRange(t *testing.T) {
	deltas := []struct{ sum, idle uint64 }{
		{1, 0}, {1, 1}, {100, 37}, {7, 7}, {1000, 1}, {3, 2},
	}

	for _, d := range deltas {
		s := metrics.CPUPercent(metrics.CPUCoreState{}, counters(500, 0, 0, 500))
		s = metrics.CPUPercent(s, counters(500+d.sum-d.idle, 0, 0, 500+d.idle))
		assert.GreaterOrEqual(t, s.Percent, 0.0)
		assert.LessOrEqual(t, s.Percent, 100.0)
	}
}

func TestNetRate(t *testing.T) {
	assert.InDelta(t, 3333.333, metrics.NetRate(1000, 2000, 300*time.Millisecond), 0.001)
	assert.Equal(t, 0.0, metrics.NetRate(2000, 1000, 300*time.Millisecond))
	assert.Equal(t, 0.0, metrics.NetRate(1000, 1000, 300*time.Millisecond))
	assert.Equal(t, 0.0, metrics.NetRate(1000, 2000, 0))
}

func TestDeriveNetwork(t *testing.T) {
	cfg := testConfig()
	prev := metrics.NewState(cfg)

	s := metrics.Derive(prev, metrics.Readings{Net: []*reader.NetReading{
		{Name: "eth0", RX: 1000, TX: 500},
		{Name: "wlan0", RX: 10, TX: 10},
	}}, cfg.SamplePeriod)
	assert.Equal(t, 0.0, s.Net[0].RXRate, "first sample only sets the baseline")
	assert.Equal(t, uint64(1000), s.Net[0].RX)

	s = metrics.Derive(s, metrics.Readings{Net: []*reader.NetReading{
		{Name: "eth0", RX: 2000, TX: 800},
		nil,
	}}, cfg.SamplePeriod)
	assert.InDelta(t, 3333.333, s.Net[0].RXRate, 0.001)
	assert.InDelta(t, 1000.0, s.Net[0].TXRate, 0.001)
	assert.Equal(t, uint64(10), s.Net[1].RX, "failed interface keeps its values")

	s = metrics.Derive(s, metrics.Readings{Net: []*reader.NetReading{
		{Name: "eth0", RX: 100, TX: 900},
		nil,
	}}, cfg.SamplePeriod)
	assert.Equal(t, 0.0, s.Net[0].RXRate, "reset counter reports 0")
	assert.Equal(t, uint64(100), s.Net[0].RX, "and rebases")
	assert.InDelta(t, 333.333, s.Net[0].TXRate, 0.001)
}

func TestDeriveDoesNotMutatePrevious(t *testing.T) {
	cfg := testConfig()
	prev := metrics.NewState(cfg)

	next := metrics.Derive(prev, metrics.Readings{
		CPU: reader.CPUReading{counters(1, 2, 3, 4), counters(1, 2, 3, 4)},
		Net: []*reader.NetReading{{Name: "eth0", RX: 1, TX: 1}, nil},
	}, cfg.SamplePeriod)

	assert.False(t, prev.CPU[0].Primed)
	assert.False(t, prev.Net[0].Primed)
	assert.True(t, next.CPU[0].Primed)
	assert.True(t, next.Net[0].Primed)
}

func TestDeriveCPUFailureRetains(t *testing.T) {
	cfg := testConfig()
	e := metrics.NewEngine(cfg)

	e.Apply(metrics.Readings{CPU: reader.CPUReading{counters(100, 0, 100, 800), counters(50, 0, 50, 400)}})
	e.Apply(metrics.Readings{CPU: reader.CPUReading{counters(150, 0, 150, 900), counters(100, 0, 50, 450)}})
	before := e.State().CPU

	e.Apply(metrics.Readings{})
	assert.Equal(t, before, e.State().CPU)

	// A reading with the wrong number of lines is ignored as a whole.
	e.Apply(metrics.Readings{CPU: reader.CPUReading{counters(900, 0, 900, 900)}})
	assert.Equal(t, before, e.State().CPU)
}

func TestEngineSnapshot(t *testing.T) {
	cfg := testConfig()
	e := metrics.NewEngine(cfg)

	b := e.UpdateBattery(3300)
	assert.Equal(t, 0.0, b.Percent)

	mem := reader.MemoryReading{Total: 1000, Free: 200, Available: 600, Buffers: 50, Cached: 250, SwapTotal: 512, SwapFree: 500}
	disk := reader.DiskReading{Total: 4096, Free: 1024}
	cpuTemp, gpuTemp := int64(48000), int64(51000)

	e.Apply(metrics.Readings{
		Memory:  &mem,
		Disk:    &disk,
		CPUTemp: &cpuTemp,
		GPUTemp: &gpuTemp,
	})

	now := time.Unix(1700000000, 123456000)
	snap := e.Snapshot(now)

	assert.Equal(t, now, snap.Timestamp)
	assert.Equal(t, 4200, snap.Battery.MaxVoltage)
	assert.Equal(t, 3300, snap.Battery.MinVoltage)
	assert.InDelta(t, 3300.0, snap.Battery.Voltage, 1e-9)
	assert.Equal(t, int64(48000), snap.Temperature.CPU)
	assert.Equal(t, int64(51000), snap.Temperature.GPU)
	assert.Len(t, snap.CPUUsages, 2)
	assert.Equal(t, uint64(500), snap.Memory.Used())
	assert.Equal(t, uint64(300), snap.Memory.BuffCache())
	assert.Equal(t, uint64(4096), snap.Disk.Total)
	require.Len(t, snap.Net, 2)
	assert.Equal(t, "eth0", snap.Net[0].Name)
	assert.Equal(t, "wlan0", snap.Net[1].Name)

	// Failed readers on the next tick leave these values in place.
	e.Apply(metrics.Readings{})
	again := e.Snapshot(now)
	assert.Equal(t, snap.Memory, again.Memory)
	assert.Equal(t, snap.Temperature, again.Temperature)
}

func TestMemoryIdempotent(t *testing.T) {
	cfg := testConfig()
	e := metrics.NewEngine(cfg)

	mem := reader.MemoryReading{Total: 1000, Free: 100, Available: 400, Buffers: 10, Cached: 20}
	e.Apply(metrics.Readings{Memory: &mem})
	first := e.Snapshot(time.Now()).Memory

	same := mem
	e.Apply(metrics.Readings{Memory: &same})
	second := e.Snapshot(time.Now()).Memory

	assert.Equal(t, first, second)
	assert.Equal(t, first.Used(), second.Used())
}

func TestMemoryUsedFloor(t *testing.T) {
	m := metrics.MemoryMetrics{Total: 100, Free: 80, Buffers: 30, Cached: 10}
	assert.Equal(t, uint64(0), m.Used())
}
