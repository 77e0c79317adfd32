// Copyright © 2018 One Concern

// Package localfs writes uploaded objects to a local or mounted file system.
//
// This backend serves on-premises deployments where the lease designates a directory.
package localfs

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	blake2b "github.com/minio/blake2b-simd"
	"github.com/spf13/afero"

	"github.com/oneconcern/datahub/internal/rand"
	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/storage"
	"github.com/oneconcern/datahub/pkg/storage/status"
)

// staging area, from where files are renamed into place
const putStageName = ".put-stage"

// New creates a new local file system uploader. A nil fs defaults to the directory designated by the lease.
func New(fs afero.Fs, lease model.Lease) (storage.Uploader, error) {
	if fs == nil {
		root := filepath.Join(lease.Host, lease.Bucket)
		if root == "" || root == "." {
			return nil, status.ErrInvalidResource.WrapMessage("lease does not specify a root directory")
		}
		fs = afero.NewBasePathFs(afero.NewOsFs(), root)
	}
	return &localFS{fs: fs}, nil
}

type localFS struct {
	fs afero.Fs
}

func maybeInvalidKey(key string) error {
	clean := path.Clean("/" + key)
	if key == "" || strings.HasSuffix(key, "/") || clean == "/" {
		return status.ErrInvalidResource.WrapMessage("invalid object key %q", key)
	}
	if strings.HasPrefix(strings.TrimLeft(key, "/"), putStageName) {
		return status.ErrInvalidResource.WrapMessage("object key %q uses a reserved name", key)
	}
	return nil
}

// Put writes the object in a staging area, then renames it into place
func (l *localFS) Put(ctx context.Context, key string, source io.Reader, size int64) (storage.PutResult, error) {
	if err := maybeInvalidKey(key); err != nil {
		return storage.PutResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return storage.PutResult{}, err
	}

	if err := l.fs.MkdirAll(putStageName, 0700); err != nil {
		return storage.PutResult{}, fmt.Errorf("ensuring staging area: %w", err)
	}
	staged := path.Join(putStageName, rand.LetterString(16))
	target, err := l.fs.OpenFile(staged, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return storage.PutResult{}, fmt.Errorf("create record for %q: %w", key, err)
	}

	hasher := blake2b.New256()
	written, err := io.Copy(io.MultiWriter(target, hasher), source)
	if err != nil {
		_ = target.Close()
		_ = l.fs.Remove(staged)
		return storage.PutResult{}, fmt.Errorf("write record for %q: %w", key, err)
	}
	if err = target.Close(); err != nil {
		_ = l.fs.Remove(staged)
		return storage.PutResult{}, err
	}
	if size >= 0 && written != size {
		_ = l.fs.Remove(staged)
		return storage.PutResult{}, status.ErrStorageAPI.WrapMessage("short write for %q: expected %d bytes, got %d", key, size, written)
	}

	if dir := path.Dir(key); dir != "" && dir != "." {
		if err = l.fs.MkdirAll(dir, 0700); err != nil {
			_ = l.fs.Remove(staged)
			return storage.PutResult{}, fmt.Errorf("ensuring directories for %q: %w", key, err)
		}
	}
	if err = l.fs.Rename(staged, key); err != nil {
		_ = l.fs.Remove(staged)
		return storage.PutResult{}, fmt.Errorf("moving record into place for %q: %w", key, err)
	}

	return storage.PutResult{
		Key:  key,
		ETag: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (l *localFS) String() string {
	const localfs = "localfs"
	switch fs := l.fs.(type) {
	case *afero.BasePathFs:
		pp, err := fs.RealPath("")
		if err != nil {
			return localfs
		}
		return localfs + "@" + pp
	default:
		return localfs
	}
}

func (l *localFS) Close() error {
	return nil
}
