package daemon

import "codeberg.org/mutker/sysmond/internal/errors"

const (
	ErrInvalidPeriod = errors.ErrInvalidInterval
	ErrMissingPart   = errors.ErrorCode("daemon_missing_component")
)

func init() {
	errors.RegisterMessage(ErrMissingPart, "Daemon component not provided")
}
