package lease

import (
	"time"

	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/metrics"
)

type settings struct {
	now func() time.Time
	l   *zap.Logger
	m   *metrics.Metrics
}

func defaultSettings() settings {
	return settings{
		now: time.Now,
		l:   zap.NewNop(),
	}
}

// Option for the lease cache
type Option func(*settings)

// Clock overrides the time source used to check expiry
func Clock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// Logger for the lease cache
func Logger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.l = l
		}
	}
}

// WithMetrics records lease refreshes and invalidations
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) {
		s.m = m
	}
}
