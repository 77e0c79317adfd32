package localfs

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/datahub/internal/rand"
	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/storage/status"
)

func TestPut(t *testing.T) {
	fs := afero.NewMemMapFs()
	uploader, err := New(fs, model.Lease{})
	require.NoError(t, err)
	assert.Equal(t, "localfs", uploader.String())

	content := rand.Bytes(1024)
	res, err := uploader.Put(context.Background(), "ds1/train/a.bin", bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	assert.Equal(t, "ds1/train/a.bin", res.Key)
	assert.Len(t, res.ETag, 64)

	written, err := afero.ReadFile(fs, "ds1/train/a.bin")
	require.NoError(t, err)
	assert.Equal(t, content, written)

	staged, err := afero.ReadDir(fs, putStageName)
	require.NoError(t, err)
	assert.Empty(t, staged, "staging area is left clean")

	// overwrite
	res2, err := uploader.Put(context.Background(), "ds1/train/a.bin", bytes.NewReader([]byte("x")), 1)
	require.NoError(t, err)
	assert.NotEqual(t, res.ETag, res2.ETag)
}

func TestPutErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	uploader, err := New(fs, model.Lease{})
	require.NoError(t, err)

	for _, key := range []string{"", "dir/", putStageName + "/x"} {
		_, err = uploader.Put(context.Background(), key, bytes.NewReader(nil), 0)
		assert.ErrorIsf(t, err, status.ErrInvalidResource, "key %q", key)
	}

	_, err = uploader.Put(context.Background(), "short.bin", bytes.NewReader([]byte("abc")), 10)
	assert.ErrorIs(t, err, status.ErrStorageAPI)
	exists, err := afero.Exists(fs, "short.bin")
	require.NoError(t, err)
	assert.False(t, exists)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = uploader.Put(ctx, "cancelled.bin", bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = New(nil, model.Lease{})
	assert.ErrorIs(t, err, status.ErrInvalidResource)
}

func TestPutConcurrent(t *testing.T) {
	fs := afero.NewMemMapFs()
	uploader, err := New(fs, model.Lease{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, erp := uploader.Put(context.Background(), fmt.Sprintf("dir/%d.bin", i), bytes.NewReader([]byte("content")), 7)
			assert.NoError(t, erp)
		}(i)
	}
	wg.Wait()

	files, err := afero.ReadDir(fs, "dir")
	require.NoError(t, err)
	assert.Len(t, files, 10)
}

func TestNewForLease(t *testing.T) {
	dir := t.TempDir()
	uploader, err := New(nil, model.Lease{Backend: model.BackendLocal, Host: dir, Bucket: "bucket"})
	require.NoError(t, err)
	assert.Contains(t, uploader.String(), "localfs@")
}
