package gpu

import (
	"codeberg.org/mutker/sysmond/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const (
	ErrNotInitialized        = errors.ErrorCode("gpu_not_initialized")
	ErrInitFailed            = errors.ErrorCode("gpu_init_failed")
	ErrShutdownFailed        = errors.ErrorCode("gpu_shutdown_failed")
	ErrDeviceNotFound        = errors.ErrorCode("gpu_device_not_found")
	ErrInvalidIdentifier     = errors.ErrorCode("gpu_invalid_identifier")
	ErrTemperatureReadFailed = errors.ErrorCode("gpu_temperature_read_failed")
)

func init() {
	errors.RegisterMessage(ErrNotInitialized, "NVML is not initialized")
	errors.RegisterMessage(ErrInitFailed, "Failed to initialize NVML")
	errors.RegisterMessage(ErrShutdownFailed, "Failed to shut down NVML")
	errors.RegisterMessage(ErrDeviceNotFound, "GPU device not found")
	errors.RegisterMessage(ErrInvalidIdentifier, "Invalid GPU source identifier")
	errors.RegisterMessage(ErrTemperatureReadFailed, "Failed to read GPU temperature")
}

// nvmlError represents an NVML-specific error
type nvmlError struct {
	ret nvml.Return
}

func (e nvmlError) Error() string {
	return nvml.ErrorString(e.ret)
}

func newNVMLError(ret nvml.Return) error {
	if ret == nvml.SUCCESS {
		return nil
	}
	return &nvmlError{ret: ret}
}

// IsNVMLSuccess checks if a Return value indicates success
func IsNVMLSuccess(ret nvml.Return) bool {
	return ret == nvml.SUCCESS
}
