// Package source provides the capabilities readers use to reach the host:
// text sources addressed by identifier and filesystem statistics.
package source

import (
	"os"
	"path/filepath"

	"codeberg.org/mutker/sysmond/internal/errors"
)

const (
	ErrUnconfigured = errors.ErrUnconfigured
	ErrReadSource   = errors.ErrorCode("source_read_failed")
	ErrStatfs       = errors.ErrorCode("source_statfs_failed")
)

func init() {
	errors.RegisterMessage(ErrReadSource, "Unable to read source")
	errors.RegisterMessage(ErrStatfs, "Unable to query filesystem")
}

// TextSource reads a whole text source by identifier.
type TextSource interface {
	ReadText(id string) (string, error)
}

// FSStats holds the statvfs fields needed for disk usage.
type FSStats struct {
	Blocks       uint64
	Free         uint64
	FragmentSize uint64
}

// FSStater queries filesystem statistics for a mount path.
type FSStater interface {
	Statfs(path string) (FSStats, error)
}

// FileSource reads identifiers as paths below Root. An empty Root reads the
// real filesystem.
type FileSource struct {
	Root string
}

func (s FileSource) ReadText(id string) (string, error) {
	errFactory := errors.New()

	if id == "" {
		return "", errFactory.New(ErrUnconfigured)
	}

	path := id
	if s.Root != "" {
		path = filepath.Join(s.Root, id)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errFactory.Wrap(ErrReadSource, err)
	}

	return string(data), nil
}

// MapSource serves text from memory, keyed by identifier.
type MapSource map[string]string

func (m MapSource) ReadText(id string) (string, error) {
	errFactory := errors.New()

	if id == "" {
		return "", errFactory.New(ErrUnconfigured)
	}

	text, ok := m[id]
	if !ok {
		return "", errFactory.Wrap(ErrReadSource, os.ErrNotExist)
	}

	return text, nil
}
