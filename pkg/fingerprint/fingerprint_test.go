package fingerprint

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/datahub/internal/rand"
)

func TestFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := rand.Bytes(1000)
	require.NoError(t, afero.WriteFile(fs, "/data/a.bin", content, 0600))
	require.NoError(t, afero.WriteFile(fs, "/data/b.bin", content[:999], 0600))

	m := New(FileSystem(fs), LeafSize(100))
	sumA, size, err := m.File("/data/a.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), size)
	assert.Len(t, sumA, 128)

	again, _, err := New(FileSystem(fs), LeafSize(100), NumberOfWorkers(1)).File("/data/a.bin")
	require.NoError(t, err)
	assert.Equal(t, sumA, again, "the number of workers does not change the digest")

	sumB, size, err := m.File("/data/b.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(999), size)
	assert.NotEqual(t, sumA, sumB)

	_, _, err = m.File("/data/missing.bin")
	assert.Error(t, err)
}

func TestProcessLeafBoundaries(t *testing.T) {
	const leaf = 64
	seen := make(map[string]int)
	for _, size := range []int{0, 1, leaf - 1, leaf, leaf + 1, 2 * leaf, 3*leaf + 7} {
		digest, err := New(LeafSize(leaf), NumberOfWorkers(3)).Process(bytes.NewReader(bytes.Repeat([]byte("x"), size)))
		require.NoError(t, err)
		assert.Len(t, digest, 64)
		previous, dup := seen[string(digest)]
		assert.Falsef(t, dup, "size %d collides with size %d", size, previous)
		seen[string(digest)] = size
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read error")
}

func TestProcessError(t *testing.T) {
	_, err := New().Process(failingReader{})
	assert.EqualError(t, err, "read error")
}
