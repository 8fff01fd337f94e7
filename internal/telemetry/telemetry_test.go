package telemetry_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/sysmond/internal/errors"
	"codeberg.org/mutker/sysmond/internal/logger"
	"codeberg.org/mutker/sysmond/internal/metrics"
	"codeberg.org/mutker/sysmond/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func snapshot() *metrics.Snapshot {
	return &metrics.Snapshot{
		Timestamp: time.Unix(1700000000, 250000000),
		Battery: metrics.BatteryMetrics{
			Voltage:    4200,
			Percent:    99.96812,
			MaxVoltage: 4200,
			MinVoltage: 3300,
		},
		Temperature: metrics.TempMetrics{CPU: 45000, GPU: 47000},
		CPUUsages:   []float64{12.5, 25, 0.0004},
		Memory: metrics.MemoryMetrics{
			Total:     8 << 20,
			Free:      1 << 20,
			Available: 4 << 20,
			Buffers:   1 << 19,
			Cached:    1 << 21,
			SwapTotal: 0,
			SwapFree:  0,
		},
		Disk: metrics.DiskMetrics{Total: 1 << 30, Free: 1 << 29},
		Net: []metrics.NetInterfaceState{
			{Name: "eth0", RX: 2000, TX: 1000, RXRate: 3333.3333, TXRate: 0},
		},
	}
}

func TestRecordEncoding(t *testing.T) {
	data, err := telemetry.NewRecord(snapshot()).Encode()
	require.NoError(t, err)

	want := `{"stamp_sec":1700000000,"stamp_usec":250000,"battery":4200.000,"battery_percent":99.968,` +
		`"battery_max_voltage":4200,"battery_min_voltage":3300,"cpu_temp":45000,"gpu_temp":47000,` +
		`"cpu_usages":[12.500,25.000,0.000],"mem_total":8388608,"mem_free":1048576,"mem_used":4718592,` +
		`"mem_buff_cache":2621440,"mem_available":4194304,"mem_swap_total":0,"mem_swap_free":0,` +
		`"disk_total":1073741824,"disk_free":536870912,` +
		`"net":[{"name":"eth0","rx":2000,"tx":1000,"rx_rate":3333.333,"tx_rate":0.000}]}` + "\n"
	assert.Equal(t, want, string(data))
}

func TestRecordEmptyLists(t *testing.T) {
	s := snapshot()
	s.Net = nil

	data, err := telemetry.NewRecord(s).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"net":[]`)
}

func TestNoopSink(t *testing.T) {
	sink := telemetry.NewSink(telemetry.DefaultConfig(""), logger.Nop())
	assert.NoError(t, sink.Write(context.Background(), snapshot()))
	assert.NoError(t, sink.Close())
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysmond.json")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o600))

	sink := telemetry.NewSink(telemetry.DefaultConfig(path), logger.Nop())
	defer sink.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, sink.Write(context.Background(), snapshot()))
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 4)
	assert.Equal(t, "existing", lines[0])

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &rec))
	assert.InDelta(t, 99.968, rec["battery_percent"], 1e-9)
}

func TestFileSinkErrors(t *testing.T) {
	sink := telemetry.NewSink(telemetry.DefaultConfig(t.TempDir()), logger.Nop())

	err := sink.Write(context.Background(), snapshot())
	assert.Equal(t, telemetry.ErrOpenOutput, errors.CodeOf(err))

	err = sink.Write(context.Background(), nil)
	assert.Equal(t, telemetry.ErrInvalidSnapshot, errors.CodeOf(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = sink.Write(ctx, snapshot())
	assert.Equal(t, telemetry.ErrOperationTimeout, errors.CodeOf(err))
}

type step struct {
	n   int
	err error
}

// scriptedWriter accepts at most step.n bytes per call, then returns step.err.
type scriptedWriter struct {
	steps []step
	got   strings.Builder
	calls int
}

func (w *scriptedWriter) Write(p []byte) (int, error) {
	s := step{n: len(p)}
	if w.calls < len(w.steps) {
		s = w.steps[w.calls]
	}
	w.calls++

	n := s.n
	if n > len(p) {
		n = len(p)
	}
	if n > 0 {
		w.got.Write(p[:n])
	}
	if s.err != nil && n == 0 {
		return -1, s.err
	}
	return n, s.err
}

func TestWriteAll(t *testing.T) {
	data := []byte("0123456789")

	tests := []struct {
		name    string
		steps   []step
		retries int
		code    errors.ErrorCode
		written int
	}{
		{
			name:    "single write",
			written: 10,
		},
		{
			name:    "partial writes",
			steps:   []step{{n: 3}, {n: 3}, {n: 1}},
			written: 10,
		},
		{
			name:    "would block then progress",
			steps:   []step{{n: 4}, {err: unix.EAGAIN}, {err: unix.EAGAIN}, {n: 6}},
			retries: 2,
			written: 10,
		},
		{
			name:    "interrupted",
			steps:   []step{{err: unix.EINTR}, {n: 2, err: unix.EINTR}},
			retries: 1,
			written: 10,
		},
		{
			name:    "retries exhausted",
			steps:   []step{{n: 5}, {err: unix.EAGAIN}, {err: unix.EAGAIN}, {err: unix.EAGAIN}},
			retries: 2,
			code:    telemetry.ErrShortWrite,
			written: 5,
		},
		{
			name:    "endpoint closed",
			steps:   []step{{n: 2}, {n: 0}},
			code:    telemetry.ErrOutputClosed,
			written: 2,
		},
		{
			name:    "hard error",
			steps:   []step{{err: unix.EPIPE}},
			code:    telemetry.ErrWriteOutput,
			written: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &scriptedWriter{steps: tt.steps}

			n, err := telemetry.WriteAll(w, data, tt.retries, 0)
			assert.Equal(t, tt.written, n)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, string(data), w.got.String())
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}
