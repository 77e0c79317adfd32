package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPUProf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.prof")
	stop, err := StartCPUProf(path)
	require.NoError(t, err)
	require.NoError(t, stop())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
}

func TestWriteMemProf(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profiles")
	require.NoError(t, WriteMemProf(MemProfParams{DestDir: dir, NamePrefix: "upload"}))

	for _, name := range []string{"upload.mem.prof", "upload.alloc.prof"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	before, err := os.Stat(filepath.Join(dir, "upload.mem.prof"))
	require.NoError(t, err)
	require.NoError(t, WriteMemProf(MemProfParams{DestDir: dir, NamePrefix: "upload"}))
	after, err := os.Stat(filepath.Join(dir, "upload.mem.prof"))
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime(), "existing profiles are kept")
}
