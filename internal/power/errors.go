package power

import "codeberg.org/mutker/sysmond/internal/errors"

const (
	ErrShutdownTriggered = errors.ErrorCode("power_shutdown_triggered")
	ErrShutdownCommand   = errors.ErrorCode("power_shutdown_command_failed")
	ErrNoCommand         = errors.ErrorCode("power_no_command")
)

func init() {
	errors.RegisterMessage(ErrShutdownTriggered, "Battery exhausted, power off triggered")
	errors.RegisterMessage(ErrShutdownCommand, "Power off command failed")
	errors.RegisterMessage(ErrNoCommand, "No power off command configured")
}
