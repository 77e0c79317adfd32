package core

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/metrics"
	"github.com/oneconcern/datahub/pkg/storage"
)

type uploadSettings struct {
	concurrency int
	skip        bool
	match       MatchMode
	progress    Progress
	l           *zap.Logger
	m           *metrics.Metrics
	factory     storage.Factory
	fs          afero.Fs
}

// UploadOption configures an upload
type UploadOption func(*uploadSettings)

// Concurrency sets the number of parallel uploads. It defaults to 1.
func Concurrency(n int) UploadOption {
	return func(s *uploadSettings) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// SkipUploaded skips the items found on the server already, to resume an interrupted upload
func SkipUploaded(skip bool) UploadOption {
	return func(s *uploadSettings) {
		s.skip = skip
	}
}

// ResumeMatch tells how frames uploaded already are recognized when skipping them
func ResumeMatch(mode MatchMode) UploadOption {
	return func(s *uploadSettings) {
		s.match = mode
	}
}

// WithProgress reports the advancement of the upload
func WithProgress(p Progress) UploadOption {
	return func(s *uploadSettings) {
		if p != nil {
			s.progress = p
		}
	}
}

// Logger for the upload. It defaults to the logger of the client.
func Logger(l *zap.Logger) UploadOption {
	return func(s *uploadSettings) {
		if l != nil {
			s.l = l
		}
	}
}

// WithMetrics collects upload metrics. It defaults to the metrics of the client.
func WithMetrics(m *metrics.Metrics) UploadOption {
	return func(s *uploadSettings) {
		s.m = m
	}
}

// UploaderFactory sets how uploaders are built from leases
func UploaderFactory(f storage.Factory) UploadOption {
	return func(s *uploadSettings) {
		if f != nil {
			s.factory = f
		}
	}
}

// LocalFs sets the file system local items are read from. It defaults to the OS file system.
func LocalFs(fs afero.Fs) UploadOption {
	return func(s *uploadSettings) {
		if fs != nil {
			s.fs = fs
		}
	}
}

func (c *Client) defaultUploadSettings() uploadSettings {
	return uploadSettings{
		concurrency: 1,
		progress:    noProgress{},
		l:           c.l,
		m:           c.m,
		factory:     c.factory,
		fs:          afero.NewOsFs(),
	}
}
