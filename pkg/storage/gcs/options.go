package gcs

import (
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// googleChunkSize is the default chunk size of resumable uploads
const googleChunkSize = 16 * 1024 * 1024

// Option is a functor to pass optional parameters to the gcs uploader
type Option func(*gcs)

// Logger specifies a logger for this uploader
func Logger(logger *zap.Logger) Option {
	return func(g *gcs) {
		if logger != nil {
			g.l = logger
		}
	}
}

// ClientOptions adds options to the underlying google API client
func ClientOptions(opts ...option.ClientOption) Option {
	return func(g *gcs) {
		g.opts = append(g.opts, opts...)
	}
}
