package reader

import (
	"bufio"
	"strconv"
	"strings"

	"codeberg.org/mutker/sysmond/internal/errors"
)

// MemoryReading holds the meminfo counters in bytes.
type MemoryReading struct {
	Total     uint64
	Free      uint64
	Available uint64
	Buffers   uint64
	Cached    uint64
	SwapTotal uint64
	SwapFree  uint64
}

// ReadMemory reads the meminfo source.
func (r *Reader) ReadMemory(id string) (MemoryReading, error) {
	text, err := r.Text.ReadText(id)
	if err != nil {
		return MemoryReading{}, err
	}
	return ParseMemory(text)
}

// ParseMemory picks the counters it needs by key name, in any order.
func ParseMemory(text string) (MemoryReading, error) {
	errFactory := errors.New()

	var m MemoryReading
	targets := map[string]*uint64{
		"MemTotal":     &m.Total,
		"MemFree":      &m.Free,
		"MemAvailable": &m.Available,
		"Buffers":      &m.Buffers,
		"Cached":       &m.Cached,
		"SwapTotal":    &m.SwapTotal,
		"SwapFree":     &m.SwapFree,
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}

		key := strings.TrimSuffix(fields[0], ":")
		dst, ok := targets[key]
		if !ok {
			continue
		}

		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return MemoryReading{}, errFactory.Wrap(ErrMemoryParse, err)
		}
		if len(fields) > 2 && strings.EqualFold(fields[2], "kB") {
			v *= 1024
		}

		*dst = v
		delete(targets, key)
	}

	if len(targets) > 0 {
		missing := make([]string, 0, len(targets))
		for k := range targets {
			missing = append(missing, k)
		}
		return MemoryReading{}, errFactory.WithData(ErrMemoryParse, "missing "+strings.Join(missing, ","))
	}

	return m, nil
}
