package scratch_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/wxdata/pkg/scratch"
)

func TestLazyDirectory(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "scratch")
	m := scratch.NewManager(scratch.WithParent(parent))

	_, err := os.Stat(parent)
	assert.True(t, os.IsNotExist(err), "nothing is created before first use")

	dir, err := m.Dir()
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, parent, filepath.Dir(dir))

	again, err := m.Dir()
	require.NoError(t, err)
	assert.Equal(t, dir, again)

	require.NoError(t, m.Close())
	assert.NoDirExists(t, dir)
}

func TestCreateAndRelease(t *testing.T) {
	m := scratch.NewManager(scratch.WithParent(t.TempDir()))
	defer m.Close()

	a, f, err := m.Create("granule.hdf")
	require.NoError(t, err)
	_, err = f.WriteString("payload")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, "granule.hdf", filepath.Base(a.Path()))
	assert.FileExists(t, a.Path())
	assert.Equal(t, 1, m.Live())

	require.NoError(t, a.Release())
	assert.NoFileExists(t, a.Path())
	assert.NoDirExists(t, filepath.Dir(a.Path()))
	assert.Equal(t, 0, m.Live())

	assert.NoError(t, a.Release(), "release is idempotent")

	var nilArtifact *scratch.Artifact
	assert.NoError(t, nilArtifact.Release())
}

func TestCreateSanitizesNames(t *testing.T) {
	m := scratch.NewManager(scratch.WithParent(t.TempDir()))
	defer m.Close()
	dir, err := m.Dir()
	require.NoError(t, err)

	for _, name := range []string{"../../escape.hdf", "nested/dir/file.hdf", "", "/"} {
		a, f, err := m.Create(name)
		require.NoError(t, err, name)
		require.NoError(t, f.Close())

		rel, err := filepath.Rel(dir, a.Path())
		require.NoError(t, err)
		assert.NotContains(t, rel, "..", name)
		require.NoError(t, a.Release())
	}
}

func TestConcurrentCreateUsesDistinctPaths(t *testing.T) {
	m := scratch.NewManager(scratch.WithParent(t.TempDir()))
	defer m.Close()

	const n = 32
	paths := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, f, err := m.Create("same.hdf")
			if err != nil {
				t.Error(err)
				return
			}
			_ = f.Close()
			paths[i] = a.Path()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, p := range paths {
		assert.False(t, seen[p], "duplicate scratch path %s", p)
		seen[p] = true
	}
	assert.Equal(t, n, m.Live())
}

func TestCloseRemovesUnreleasedArtifacts(t *testing.T) {
	m := scratch.NewManager(scratch.WithParent(t.TempDir()))

	a, f, err := m.Create("left.hdf")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, m.Close())
	assert.NoFileExists(t, a.Path())
	assert.NoError(t, m.Close())

	_, _, err = m.Create("late.hdf")
	assert.Error(t, err)
}

func TestCloseWithoutUse(t *testing.T) {
	m := scratch.NewManager()
	assert.NoError(t, m.Close())
}
