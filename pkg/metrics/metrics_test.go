package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	start := time.Now()
	m.Uploaded(100, start)
	m.Uploaded(50, start)
	m.Skipped()
	m.Failed()
	m.LeaseRefreshed()
	m.LeaseInvalidated()
	m.LeaseRefreshed()

	done := m.WorkerBusy()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.activeWorkers))
	done()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.items.WithLabelValues(OutcomeUploaded)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.items.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.items.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, float64(150), testutil.ToFloat64(m.bytes))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.leaseRefreshes))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.leaseInvalidations))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.activeWorkers))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "datahub_lease_refreshes_total 2")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Uploaded(1, time.Now())
		m.Skipped()
		m.Failed()
		m.LeaseRefreshed()
		m.LeaseInvalidated()
		m.WorkerBusy()()
	})
	assert.Nil(t, m.Registry())
}
