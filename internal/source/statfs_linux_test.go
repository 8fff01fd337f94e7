//go:build linux

package source_test

import (
	"path/filepath"
	"testing"

	"codeberg.org/mutker/sysmond/internal/errors"
	"codeberg.org/mutker/sysmond/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixStater(t *testing.T) {
	st, err := source.UnixStater{}.Statfs(t.TempDir())
	require.NoError(t, err)
	assert.NotZero(t, st.Blocks)
	assert.NotZero(t, st.FragmentSize)
	assert.LessOrEqual(t, st.Free, st.Blocks)

	_, err = source.UnixStater{}.Statfs(filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, source.ErrStatfs, errors.CodeOf(err))
}
