// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/tracing"
)

// Instrument an uploader with tracing spans and debug logs
func Instrument(l *zap.Logger, uploader Uploader) Uploader {
	if l == nil {
		l = zap.NewNop()
	}
	return &instrumentedUploader{
		uploader: uploader,
		l:        l.With(zap.String("storage", uploader.String())),
	}
}

type instrumentedUploader struct {
	uploader Uploader
	l        *zap.Logger
}

func (i *instrumentedUploader) opName(name string) string {
	return strings.Join([]string{"storage", i.uploader.String(), name}, ".")
}

func (i *instrumentedUploader) Put(ctx context.Context, key string, body io.Reader, size int64) (PutResult, error) {
	ctx, span := tracing.Start(ctx, i.opName("Put"), trace.WithAttributes(
		attribute.String("storage.key", key),
		attribute.Int64("storage.size", size),
	))
	defer span.End()

	i.l.Debug("storage put", zap.String("key", key), zap.Int64("size", size))
	res, err := i.uploader.Put(ctx, key, body, size)
	if err != nil {
		tracing.SetSpanError(ctx, err)
		i.l.Debug("storage put failed", zap.String("key", key), zap.Error(err))
	}
	return res, err
}

func (i *instrumentedUploader) String() string {
	return i.uploader.String()
}

func (i *instrumentedUploader) Close() error {
	return i.uploader.Close()
}
