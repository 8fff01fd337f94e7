//go:build linux

package source

import (
	"codeberg.org/mutker/sysmond/internal/errors"
	"golang.org/x/sys/unix"
)

// UnixStater implements FSStater with statfs(2).
type UnixStater struct{}

func (UnixStater) Statfs(path string) (FSStats, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSStats{}, errors.New().Wrap(ErrStatfs, err)
	}

	frsize := uint64(st.Frsize)
	if frsize == 0 {
		frsize = uint64(st.Bsize)
	}

	return FSStats{
		Blocks:       st.Blocks,
		Free:         st.Bfree,
		FragmentSize: frsize,
	}, nil
}
