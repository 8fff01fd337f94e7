package telemetry

import "codeberg.org/mutker/sysmond/internal/errors"

const (
	ErrInvalidSnapshot = errors.ErrorCode("telemetry_invalid_snapshot")
	ErrEncode          = errors.ErrorCode("telemetry_encode_failed")

	// Output Errors
	ErrOpenOutput   = errors.ErrorCode("telemetry_open_output_failed")
	ErrWriteOutput  = errors.ErrorCode("telemetry_write_failed")
	ErrOutputClosed = errors.ErrorCode("telemetry_output_closed")
	ErrShortWrite   = errors.ErrorCode("telemetry_short_write")

	ErrOperationTimeout = errors.ErrTimeout
)

func init() {
	errors.RegisterMessage(ErrInvalidSnapshot, "No snapshot to record")
	errors.RegisterMessage(ErrEncode, "Unable to encode record")
	errors.RegisterMessage(ErrOpenOutput, "Unable to open output file")
	errors.RegisterMessage(ErrWriteOutput, "Unable to write to output file")
	errors.RegisterMessage(ErrOutputClosed, "Output endpoint is closed")
	errors.RegisterMessage(ErrShortWrite, "Unable to write all data to output file")
}
