package reader_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/sysmond/internal/errors"
	"codeberg.org/mutker/sysmond/internal/reader"
	"codeberg.org/mutker/sysmond/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const procStat = `cpu  1000 0 500 2000 100 10 20 0 0 0
cpu0 500 0 250 1000 50 5 10 0 0 0
cpu1 500 0 250 1000 50 5 10 0 0 0
intr 12345 0 0
ctxt 98765
`

const meminfo = `MemTotal:        1000000 kB
MemFree:          200000 kB
MemAvailable:     600000 kB
Buffers:           50000 kB
Cached:           250000 kB
SwapCached:            0 kB
Active:           300000 kB
Inactive:         200000 kB
SwapTotal:        512000 kB
SwapFree:         500000 kB
`

func TestParseCPU(t *testing.T) {
	reading, err := reader.ParseCPU(procStat, 3)
	require.NoError(t, err)
	require.Len(t, reading, 3)

	assert.Equal(t, uint64(3630), reading[0].Sum())
	assert.Equal(t, uint64(2000), reading[0].Idle())
	assert.Equal(t, uint64(1815), reading[1].Sum())
	assert.Equal(t, uint64(1000), reading[2].Idle())
}

func TestParseCPUErrors(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		lines int
		code  errors.ErrorCode
	}{
		{"more cores than lines", procStat, 4, reader.ErrCPUMissing},
		{"empty", "", 1, reader.ErrCPUMissing},
		{"bad counter", "cpu  1 2 x 4 5\n", 1, reader.ErrCPUParse},
		{"no idle field", "cpu  1 2 3\n", 1, reader.ErrCPUParse},
		{"core line malformed", "cpu  1 2 3 4 5\ncpu0 1 2 -3 4 5\n", 2, reader.ErrCPUParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reader.ParseCPU(tt.text, tt.lines)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestParseMemory(t *testing.T) {
	m, err := reader.ParseMemory(meminfo)
	require.NoError(t, err)

	assert.Equal(t, reader.MemoryReading{
		Total:     1000000 * 1024,
		Free:      200000 * 1024,
		Available: 600000 * 1024,
		Buffers:   50000 * 1024,
		Cached:    250000 * 1024,
		SwapTotal: 512000 * 1024,
		SwapFree:  500000 * 1024,
	}, m)
}

func TestParseMemoryMissingKey(t *testing.T) {
	_, err := reader.ParseMemory("MemTotal: 1000 kB\nMemFree: 10 kB\n")
	require.Error(t, err)
	assert.Equal(t, reader.ErrMemoryParse, errors.CodeOf(err))
}

func TestReadMemoryIdempotent(t *testing.T) {
	r := &reader.Reader{Text: source.MapSource{reader.ProcMeminfo: meminfo}}

	first, err := r.ReadMemory(reader.ProcMeminfo)
	require.NoError(t, err)
	second, err := r.ReadMemory(reader.ProcMeminfo)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReadInt(t *testing.T) {
	r := &reader.Reader{Text: source.MapSource{
		"/temp":    "48250\n",
		"/neg":     "-5000",
		"/garbage": "hot",
	}}

	v, err := r.ReadTemperature("/temp")
	require.NoError(t, err)
	assert.Equal(t, int64(48250), v)

	v, err = r.ReadInt("/neg")
	require.NoError(t, err)
	assert.Equal(t, int64(-5000), v)

	_, err = r.ReadBattery("/garbage")
	assert.Equal(t, reader.ErrValueParse, errors.CodeOf(err))

	_, err = r.ReadBattery("")
	assert.Equal(t, source.ErrUnconfigured, errors.CodeOf(err))
}

func TestReadNetwork(t *testing.T) {
	r := &reader.Reader{Text: source.MapSource{
		"/sys/class/net/eth0/statistics/rx_bytes": "2000\n",
		"/sys/class/net/eth0/statistics/tx_bytes": "1500\n",
		"/sys/class/net/wlan0/statistics/rx_bytes": "1\n",
	}}

	n, err := r.ReadNetwork("", "eth0")
	require.NoError(t, err)
	assert.Equal(t, reader.NetReading{Name: "eth0", RX: 2000, TX: 1500}, n)

	_, err = r.ReadNetwork("", "wlan0")
	assert.Equal(t, source.ErrReadSource, errors.CodeOf(err))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/proc/stat", reader.StatPath(""))
	assert.Equal(t, "/tmp/root/proc/meminfo", reader.MeminfoPath("/tmp/root"))
	assert.Equal(t, "/sys/class/net/eth0/statistics/tx_bytes", reader.NetStatPath("", "eth0", "tx_bytes"))
}

type fakeStater struct {
	st  source.FSStats
	err error
}

func (f fakeStater) Statfs(string) (source.FSStats, error) {
	return f.st, f.err
}

func TestReadDisk(t *testing.T) {
	r := &reader.Reader{Stater: fakeStater{st: source.FSStats{Blocks: 1000, Free: 250, FragmentSize: 4096}}}

	d, err := r.ReadDisk("/")
	require.NoError(t, err)
	assert.Equal(t, reader.DiskReading{Total: 4096000, Free: 1024000}, d)

	r = &reader.Reader{Stater: fakeStater{err: fmt.Errorf("no such mount")}}
	_, err = r.ReadDisk("/mnt")
	assert.Equal(t, reader.ErrDisk, errors.CodeOf(err))
}
