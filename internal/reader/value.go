package reader

import (
	"strconv"
	"strings"

	"codeberg.org/mutker/sysmond/internal/errors"
)

// ReadInt reads a source holding a single decimal integer, as sysfs
// attributes do.
func (r *Reader) ReadInt(id string) (int64, error) {
	text, err := r.Text.ReadText(id)
	if err != nil {
		return 0, err
	}
	return ParseInt(text)
}

func ParseInt(text string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, errors.New().Wrap(ErrValueParse, err)
	}
	return v, nil
}

// ReadUint reads a source holding a single unsigned counter.
func (r *Reader) ReadUint(id string) (uint64, error) {
	text, err := r.Text.ReadText(id)
	if err != nil {
		return 0, err
	}

	v, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, errors.New().Wrap(ErrValueParse, err)
	}
	return v, nil
}

// ReadTemperature reads a raw temperature value, usually millidegrees Celsius.
func (r *Reader) ReadTemperature(id string) (int64, error) {
	return r.ReadInt(id)
}

// ReadBattery reads the raw battery voltage proxy.
func (r *Reader) ReadBattery(id string) (int64, error) {
	return r.ReadInt(id)
}
