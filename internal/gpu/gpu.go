// Package gpu reads GPU temperatures through NVML for sources named
// "nvml:<index>". Every other identifier is passed to the wrapped source.
package gpu

import (
	"strconv"
	"strings"

	"codeberg.org/mutker/sysmond/internal/errors"
	"codeberg.org/mutker/sysmond/internal/logger"
	"codeberg.org/mutker/sysmond/internal/source"
)

const milliPerDegree = 1000

// Source serves GPU temperatures in millidegrees Celsius, the unit of the
// sysfs thermal zones.
type Source struct {
	next    source.TextSource
	nvml    nvmlController
	log     logger.Logger
	initErr error
	tried   bool
}

// NewSource wraps next. NVML is only loaded when an "nvml:" identifier is
// first read.
func NewSource(next source.TextSource, log logger.Logger) *Source {
	return newSource(next, &nvmlWrapper{}, log)
}

func newSource(next source.TextSource, ctrl nvmlController, log logger.Logger) *Source {
	return &Source{next: next, nvml: ctrl, log: log}
}

// IsNVML reports whether id names an NVML device.
func IsNVML(id string) bool {
	return strings.HasPrefix(id, Prefix)
}

// ParseIdentifier returns the device index of an "nvml:<index>" identifier.
func ParseIdentifier(id string) (int, error) {
	errFactory := errors.New()

	if !IsNVML(id) {
		return 0, errFactory.WithData(ErrInvalidIdentifier, id)
	}

	index, err := strconv.Atoi(strings.TrimPrefix(id, Prefix))
	if err != nil || index < 0 {
		return 0, errFactory.WithData(ErrInvalidIdentifier, id)
	}

	return index, nil
}

func (s *Source) ReadText(id string) (string, error) {
	if !IsNVML(id) {
		return s.next.ReadText(id)
	}

	index, err := ParseIdentifier(id)
	if err != nil {
		return "", err
	}

	if err := s.init(); err != nil {
		return "", err
	}

	temp, err := s.nvml.DeviceTemperature(index)
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(int64(temp)*milliPerDegree, 10), nil
}

// init loads NVML once. A failure is remembered so a host without the driver
// does not retry on every tick.
func (s *Source) init() error {
	if !s.tried {
		s.tried = true
		s.initErr = s.nvml.Initialize()
		if s.initErr != nil {
			s.log.Warn().ErrCode(s.initErr).Msg("NVML unavailable, GPU temperature will not be updated")
		} else {
			s.log.Debug().Msg("NVML initialized")
		}
	}

	return s.initErr
}

func (s *Source) Close() error {
	if !s.tried || s.initErr != nil {
		return nil
	}
	return s.nvml.Shutdown()
}
