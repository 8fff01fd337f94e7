package telemetry

import "time"

const (
	defaultFilePerm = 0o644

	// defaultMaxRetries bounds consecutive EAGAIN/EINTR results without
	// progress before a write is abandoned.
	defaultMaxRetries = 64
	defaultRetryDelay = time.Millisecond
)

type Config struct {
	// Path is the output file or FIFO. Empty disables output.
	Path       string
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		MaxRetries: defaultMaxRetries,
		RetryDelay: defaultRetryDelay,
	}
}

func (c Config) Enabled() bool {
	return c.Path != ""
}
