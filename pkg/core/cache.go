package core

import (
	"context"
	"io"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/core/status"
)

const cacheDirMode = 0o755

// EnableCache keeps the data read from this dataset in a local directory.
//
// Only data read at a commit is cached: a draft may change.
func (d *DatasetClient) EnableCache(dir string) error {
	if err := d.status.CheckAuthorityForCommit(); err != nil {
		return err
	}
	if dir == "" {
		return status.ErrInvalidParams.WrapMessage("a cache directory is required")
	}
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(dir, cacheDirMode); err != nil {
		return err
	}
	d.enableCacheFs(afero.NewBasePathFs(fs, dir))
	d.logger().Info("enabled cache", zap.String("dir", dir))
	return nil
}

func (d *DatasetClient) enableCacheFs(fs afero.Fs) {
	d.cache = fs
}

// DisableCache stops caching data
func (d *DatasetClient) DisableCache() {
	d.cache = nil
}

// CacheEnabled tells if data is cached locally
func (d *DatasetClient) CacheEnabled() bool {
	return d.cache != nil
}

// OpenData reads the content of a data item.
//
// Data read at a commit go through the local cache when enabled. The caller must close the returned reader.
func (s *SegmentClient) OpenData(ctx context.Context, remotePath string) (io.ReadCloser, error) {
	fs := s.dataset.cache
	commitID, atCommit := s.status.CommitID()
	cached := ""
	if fs != nil && atCommit {
		cached = path.Join("/", s.dataset.dataset.ID, commitID, s.name, path.Clean("/"+remotePath))
		if f, err := fs.Open(filepath.FromSlash(cached)); err == nil {
			return f, nil
		}
	}

	data, err := s.getData(ctx, remotePath)
	if err != nil {
		return nil, err
	}
	if data.URL == "" {
		return nil, status.ErrUnexpectedResponse.WrapMessage("no URL to read %q from", remotePath)
	}
	opener := s.client().opener
	if opener == nil {
		return nil, status.ErrInvalidParams.WrapMessage("this client cannot read remote data")
	}
	rc, err := opener.Open(ctx, data.URL)
	if err != nil {
		return nil, translateError(err)
	}
	if cached == "" {
		return rc, nil
	}
	if err = fillCache(fs, filepath.FromSlash(cached), rc); err != nil {
		return nil, err
	}
	return fs.Open(filepath.FromSlash(cached))
}

// fillCache stores remote content in the cache, in place only once complete
func fillCache(fs afero.Fs, target string, rc io.ReadCloser) (err error) {
	defer func() {
		err = multierr.Append(err, rc.Close())
	}()
	dir := filepath.Dir(target)
	if err = fs.MkdirAll(dir, cacheDirMode); err != nil {
		return err
	}
	tmp, err := afero.TempFile(fs, dir, ".download-")
	if err != nil {
		return err
	}
	_, err = io.Copy(tmp, rc)
	err = multierr.Append(err, tmp.Close())
	if err != nil {
		_ = fs.Remove(tmp.Name())
		return err
	}
	if err = fs.Rename(tmp.Name(), target); err != nil {
		_ = fs.Remove(tmp.Name())
		return err
	}
	return nil
}
