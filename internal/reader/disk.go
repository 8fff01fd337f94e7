package reader

import "codeberg.org/mutker/sysmond/internal/errors"

// DiskReading holds the size of a mounted filesystem in bytes.
type DiskReading struct {
	Total uint64
	Free  uint64
}

func (r *Reader) ReadDisk(mount string) (DiskReading, error) {
	if r.Stater == nil {
		return DiskReading{}, errors.New().New(errors.ErrUnconfigured)
	}

	st, err := r.Stater.Statfs(mount)
	if err != nil {
		return DiskReading{}, errors.New().Wrap(ErrDisk, err)
	}

	return DiskReading{
		Total: st.Blocks * st.FragmentSize,
		Free:  st.Free * st.FragmentSize,
	}, nil
}
