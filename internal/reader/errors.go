package reader

import "codeberg.org/mutker/sysmond/internal/errors"

const (
	ErrCPUParse    = errors.ErrorCode("reader_cpu_parse_failed")
	ErrCPUMissing  = errors.ErrorCode("reader_cpu_line_missing")
	ErrMemoryParse = errors.ErrorCode("reader_memory_parse_failed")
	ErrValueParse  = errors.ErrorCode("reader_value_parse_failed")
	ErrDisk        = errors.ErrorCode("reader_disk_failed")
)

func init() {
	errors.RegisterMessage(ErrCPUParse, "Unable to parse CPU counters")
	errors.RegisterMessage(ErrCPUMissing, "Unable to read CPU infos")
	errors.RegisterMessage(ErrMemoryParse, "Unable to parse memory usage")
	errors.RegisterMessage(ErrValueParse, "Unable to parse value")
	errors.RegisterMessage(ErrDisk, "Unable to query disk usage")
}
