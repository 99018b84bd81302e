package fsh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPath(t *testing.T) {
	t.Parallel()
	r := NewPathResolver()

	t.Run("resolves symlinks", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		real := filepath.Join(dir, "real")
		require.NoError(t, os.Mkdir(real, 0o755))
		link := filepath.Join(dir, "link")
		if err := os.Symlink(real, link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}

		got, err := r.CanonicalPath(link)
		require.NoError(t, err)

		want, err := r.CanonicalPath(real)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing path errors", func(t *testing.T) {
		t.Parallel()
		_, err := r.CanonicalPath(filepath.Join(t.TempDir(), "gone"))
		require.Error(t, err)
	})
}
