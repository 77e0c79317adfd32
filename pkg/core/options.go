package core

import (
	"time"

	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/core/pager"
	"github.com/oneconcern/datahub/pkg/metrics"
	"github.com/oneconcern/datahub/pkg/model"
	"github.com/oneconcern/datahub/pkg/storage"
)

type clientSettings struct {
	l        *zap.Logger
	m        *metrics.Metrics
	pageSize int
	factory  storage.Factory
	now      func() time.Time
}

func defaultClientSettings() clientSettings {
	l := zap.NewNop()
	return clientSettings{
		l:        l,
		pageSize: pager.DefaultPageSize,
		factory:  UploaderForLease(l),
		now:      time.Now,
	}
}

// ClientOption is a functor to build a client with some options
type ClientOption func(*clientSettings)

// ClientLogger sets the logger for the client and everything it builds
func ClientLogger(l *zap.Logger) ClientOption {
	return func(s *clientSettings) {
		if l != nil {
			s.l = l
			s.factory = UploaderForLease(l)
		}
	}
}

// ClientMetrics collects metrics about uploads and leases
func ClientMetrics(m *metrics.Metrics) ClientOption {
	return func(s *clientSettings) {
		s.m = m
	}
}

// ClientPageSize sets the number of items fetched per request when listing remote collections
func ClientPageSize(size int) ClientOption {
	return func(s *clientSettings) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// ClientUploaderFactory sets how uploaders are built from leases. It defaults to UploaderForLease.
func ClientUploaderFactory(f storage.Factory) ClientOption {
	return func(s *clientSettings) {
		if f != nil {
			s.factory = f
		}
	}
}

// ClientClock overrides the time source used to check lease expiry
func ClientClock(now func() time.Time) ClientOption {
	return func(s *clientSettings) {
		if now != nil {
			s.now = now
		}
	}
}

// DatasetOption is a functor to describe a dataset to create
type DatasetOption func(*model.Dataset)

// DatasetFusion makes a fusion dataset, with segments organized in frames
func DatasetFusion(isFusion bool) DatasetOption {
	return func(d *model.Dataset) {
		d.IsFusion = isFusion
	}
}

// DatasetAlias sets a display alias for the dataset
func DatasetAlias(alias string) DatasetOption {
	return func(d *model.Dataset) {
		d.Alias = alias
	}
}

// DatasetPublic makes the dataset public
func DatasetPublic(isPublic bool) DatasetOption {
	return func(d *model.Dataset) {
		d.IsPublic = isPublic
	}
}

// DatasetDefaultBranch sets the name of the default branch. It defaults to "main".
func DatasetDefaultBranch(branch string) DatasetOption {
	return func(d *model.Dataset) {
		if branch != "" {
			d.DefaultBranch = branch
		}
	}
}
