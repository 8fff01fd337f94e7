package reader

import (
	"bufio"
	"strconv"
	"strings"

	"codeberg.org/mutker/sysmond/internal/errors"
)

// idleField is the position of the idle counter in a /proc/stat cpu line.
const idleField = 3

// CPUCounters are the cumulative jiffy counters of one cpu line.
type CPUCounters struct {
	Fields []uint64
}

// Sum returns the total of all counters.
func (c CPUCounters) Sum() uint64 {
	var sum uint64
	for _, v := range c.Fields {
		sum += v
	}
	return sum
}

// Idle returns the idle counter.
func (c CPUCounters) Idle() uint64 {
	if len(c.Fields) <= idleField {
		return 0
	}
	return c.Fields[idleField]
}

// CPUReading holds the aggregate line at index 0 followed by one entry per core.
type CPUReading []CPUCounters

// ReadCPU reads the first lines cpu entries of the stat source.
func (r *Reader) ReadCPU(id string, lines int) (CPUReading, error) {
	text, err := r.Text.ReadText(id)
	if err != nil {
		return nil, err
	}
	return ParseCPU(text, lines)
}

// ParseCPU parses the leading cpu lines of /proc/stat. Any missing or
// malformed line rejects the whole reading.
func ParseCPU(text string, lines int) (CPUReading, error) {
	errFactory := errors.New()
	reading := make(CPUReading, 0, lines)

	sc := bufio.NewScanner(strings.NewReader(text))
	for i := 0; i < lines; i++ {
		if !sc.Scan() {
			return nil, errFactory.WithData(ErrCPUMissing, i)
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || !strings.HasPrefix(fields[0], "cpu") {
			return nil, errFactory.WithData(ErrCPUMissing, i)
		}
		if len(fields) <= idleField+1 {
			return nil, errFactory.WithData(ErrCPUParse, i)
		}

		counters := CPUCounters{Fields: make([]uint64, 0, len(fields)-1)}
		for _, f := range fields[1:] {
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return nil, errFactory.Wrap(ErrCPUParse, err)
			}
			counters.Fields = append(counters.Fields, v)
		}
		reading = append(reading, counters)
	}

	return reading, nil
}
