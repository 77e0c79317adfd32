// Copyright © 2018 One Concern

// Package gcs uploads objects to Google cloud storage with the OAuth2 token of a lease.
package gcs

import (
	"context"
	"io"
	"strconv"

	gcsStorage "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/storage"
	"github.com/oneconcern/datahub/pkg/storage/status"
)

type gcs struct {
	client *gcsStorage.Client
	bucket string
	l      *zap.Logger
	opts   []option.ClientOption
}

// New GCS uploader with the token granted by a lease
func New(ctx context.Context, lease model.Lease, opts ...Option) (storage.Uploader, error) {
	if lease.Bucket == "" {
		return nil, status.ErrInvalidResource.WrapMessage("lease does not specify a bucket")
	}
	googleStore := &gcs{
		bucket: lease.Bucket,
		l:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(googleStore)
	}

	clientOpts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: lease.Credentials.Token,
			TokenType:   "Bearer",
			Expiry:      lease.ExpireAt,
		})),
	}
	if lease.Host != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(lease.Host))
	}
	clientOpts = append(clientOpts, googleStore.opts...)

	var err error
	googleStore.client, err = gcsStorage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	return googleStore, nil
}

func (g *gcs) String() string {
	return "gcs://" + g.bucket
}

func (g *gcs) Put(ctx context.Context, objectName string, reader io.Reader, size int64) (storage.PutResult, error) {
	writer := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	if size > 0 && size < int64(googleChunkSize) {
		// small objects are sent in a single request
		writer.ChunkSize = 0
	}
	if _, err := io.Copy(writer, reader); err != nil {
		_ = writer.Close()
		return storage.PutResult{}, toSentinelErrors(err)
	}
	if err := writer.Close(); err != nil {
		return storage.PutResult{}, toSentinelErrors(err)
	}

	res := storage.PutResult{Key: objectName}
	if attrs := writer.Attrs(); attrs != nil {
		res.VersionID = strconv.FormatInt(attrs.Generation, 10)
		res.ETag = attrs.Etag
	}
	g.l.Debug("uploaded object", zap.String("bucket", g.bucket), zap.String("key", objectName), zap.Int64("size", size))
	return res, nil
}

func (g *gcs) Close() error {
	return g.client.Close()
}
