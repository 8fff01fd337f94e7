// Package telemetry renders snapshots as JSON records and appends them to the
// configured output.
package telemetry

import (
	"context"
	"io"
	"time"

	"codeberg.org/mutker/sysmond/internal/errors"
	"codeberg.org/mutker/sysmond/internal/logger"
	"codeberg.org/mutker/sysmond/internal/metrics"
	"golang.org/x/sys/unix"
)

type noopSink struct{}

func (noopSink) Write(context.Context, *metrics.Snapshot) error { return nil }

func (noopSink) Close() error { return nil }

type output interface {
	io.Writer
	io.Closer
}

type fileSink struct {
	cfg  Config
	log  logger.Logger
	open func(path string) (output, error)
}

// NewSink returns the sink for cfg, or a no-op sink when no output is
// configured.
func NewSink(cfg Config, log logger.Logger) Sink {
	if !cfg.Enabled() {
		log.Debug().Msg("No output file configured, records are discarded")
		return noopSink{}
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	return &fileSink{cfg: cfg, log: log, open: openAppend}
}

// Write appends one record. The file is opened for every record so that a
// rotated or recreated output is picked up on the next tick.
func (s *fileSink) Write(ctx context.Context, snapshot *metrics.Snapshot) error {
	errFactory := errors.New()

	if snapshot == nil {
		return errFactory.New(ErrInvalidSnapshot)
	}
	if err := ctx.Err(); err != nil {
		return errFactory.Wrap(ErrOperationTimeout, err)
	}

	data, err := NewRecord(snapshot).Encode()
	if err != nil {
		return errFactory.Wrap(ErrEncode, err)
	}

	out, err := s.open(s.cfg.Path)
	if err != nil {
		return errFactory.WithData(ErrOpenOutput, struct {
			Path  string
			Error string
		}{
			Path:  s.cfg.Path,
			Error: err.Error(),
		})
	}
	defer func() {
		if err := out.Close(); err != nil {
			s.log.Debug().Err(err).Str("path", s.cfg.Path).Msg("Failed to close output file")
		}
	}()

	n, err := WriteAll(out, data, s.cfg.MaxRetries, s.cfg.RetryDelay)
	if err != nil {
		return err
	}

	s.log.Debug().Int("bytes", n).Str("path", s.cfg.Path).Msg("Record written")

	return nil
}

func (*fileSink) Close() error {
	return nil
}

// WriteAll writes data until every byte is accepted. Partial writes continue
// from where they stopped; EAGAIN and EINTR are retried, at most maxRetries
// times in a row without progress. A write that accepts nothing without an
// error means the endpoint is gone.
func WriteAll(w io.Writer, data []byte, maxRetries int, delay time.Duration) (int, error) {
	errFactory := errors.New()

	written, idle := 0, 0
	for written < len(data) {
		n, err := w.Write(data[written:])
		if n < 0 {
			n = 0
		}
		written += n

		switch {
		case err == nil && n == 0:
			return written, errFactory.New(ErrOutputClosed)
		case err == nil:
			idle = 0
		case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR):
			if n > 0 {
				idle = 0
				continue
			}
			idle++
			if idle > maxRetries {
				return written, errFactory.WithData(ErrShortWrite, struct {
					Written int
					Total   int
					Error   string
				}{
					Written: written,
					Total:   len(data),
					Error:   err.Error(),
				})
			}
			if delay > 0 && errors.Is(err, unix.EAGAIN) {
				time.Sleep(delay)
			}
		default:
			return written, errFactory.Wrap(ErrWriteOutput, err)
		}
	}

	return written, nil
}

type fdOutput struct {
	fd int
}

func openAppend(path string) (output, error) {
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_WRONLY|unix.O_APPEND|unix.O_NONBLOCK|unix.O_CLOEXEC, defaultFilePerm)
	if err != nil {
		return nil, err
	}
	return &fdOutput{fd: fd}, nil
}

func (o *fdOutput) Write(p []byte) (int, error) {
	return unix.Write(o.fd, p)
}

func (o *fdOutput) Close() error {
	return unix.Close(o.fd)
}
