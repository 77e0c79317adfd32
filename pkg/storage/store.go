// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"

	"github.com/oneconcern/datahub/pkg/model"
)

// PutResult describes an object written to storage
type PutResult struct {
	Key       string
	VersionID string
	ETag      string
}

// Uploader implementations know how to write objects with the credentials of a lease.
//
// Uploaders are safe for concurrent use.
type Uploader interface {
	String() string
	Put(ctx context.Context, key string, body io.Reader, size int64) (PutResult, error)
	Close() error
}

// Factory builds an uploader from a lease
type Factory func(ctx context.Context, lease model.Lease) (Uploader, error)
