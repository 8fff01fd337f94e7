// Package pid guards against two daemons sampling the same host.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/sysmond/internal/errors"
)

const fileName = "sysmond.pid"

// DefaultPath is the PID file used when none is configured.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), fileName)
}

// File is a PID file at a fixed path.
type File struct {
	Path string
}

func New(path string) *File {
	if path == "" {
		path = DefaultPath()
	}
	return &File{Path: path}
}

// Write records the current process ID. It fails with ErrAlreadyRunning when
// the file names a live process; a stale file is replaced.
func (f *File) Write() error {
	errFactory := errors.New()

	if running, pid := f.holder(); running {
		return errFactory.WithData(errors.ErrAlreadyRunning, struct {
			Path string
			PID  int
		}{
			Path: f.Path,
			PID:  pid,
		})
	}

	if err := os.WriteFile(f.Path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// holder reports whether another live process owns the file.
func (f *File) holder() (bool, int) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 || pid == os.Getpid() {
		return false, 0
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}

	if err := process.Signal(syscall.Signal(0)); err != nil {
		return false, 0
	}

	return true, pid
}

// Remove deletes the PID file. A missing file is not an error.
func (f *File) Remove() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}
