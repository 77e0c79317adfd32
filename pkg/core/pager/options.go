package pager

import "go.uber.org/zap"

type settings struct {
	pageSize int
	l        *zap.Logger
}

func defaultSettings() settings {
	return settings{
		pageSize: DefaultPageSize,
		l:        zap.NewNop(),
	}
}

// Option for a paged sequence
type Option func(*settings)

// PageSize sets the number of items fetched per request. It defaults to 128.
func PageSize(size int) Option {
	return func(s *settings) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// Logger for page fetches, logged at debug level
func Logger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.l = l
		}
	}
}
