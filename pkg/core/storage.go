package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/storage"
	"github.com/oneconcern/datahub/pkg/storage/gcs"
	"github.com/oneconcern/datahub/pkg/storage/localfs"
	"github.com/oneconcern/datahub/pkg/storage/sthree"
	"github.com/oneconcern/datahub/pkg/storage/status"
)

// UploaderForLease is the default storage factory: it builds an uploader for the backend designated by a lease
func UploaderForLease(l *zap.Logger) storage.Factory {
	if l == nil {
		l = zap.NewNop()
	}
	return func(ctx context.Context, lease model.Lease) (storage.Uploader, error) {
		var (
			uploader storage.Uploader
			err      error
		)
		switch lease.Backend {
		case model.BackendS3:
			uploader, err = sthree.New(lease, sthree.Logger(l))
		case model.BackendGCS:
			uploader, err = gcs.New(ctx, lease, gcs.Logger(l))
		case model.BackendLocal:
			uploader, err = localfs.New(nil, lease)
		default:
			return nil, status.ErrUnsupportedBackend.WrapMessage("%q", lease.Backend)
		}
		if err != nil {
			return nil, err
		}
		return storage.Instrument(l, uploader), nil
	}
}
