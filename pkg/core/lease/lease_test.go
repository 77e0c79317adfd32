package lease

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"

	"github.com/oneconcern/datahub/pkg/metrics"
	"github.com/oneconcern/datahub/pkg/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeServer struct {
	calls atomic.Int64
	clock *fakeClock
	err   error
}

func (f *fakeServer) refresh(_ context.Context, key Key) (model.Lease, error) {
	n := f.calls.Inc()
	if f.err != nil {
		return model.Lease{}, f.err
	}
	// a slow refresh makes concurrent callers pile up on the lock
	time.Sleep(20 * time.Millisecond)
	return model.Lease{
		Backend:      model.BackendS3,
		ObjectPrefix: key.DatasetID + "/" + key.Segment + "/",
		Credentials:  model.Credentials{AccessKeyID: "AK", SessionToken: string(rune('a' + n - 1))},
		Extra:        map[string]string{"n": "1"},
		ExpireAt:     f.clock.Now().Add(time.Hour),
	}, nil
}

func assertCounter(t testing.TB, m *metrics.Metrics, name, help string, value int) {
	expected := fmt.Sprintf("# HELP %[1]s %[2]s\n# TYPE %[1]s counter\n%[1]s %[3]d\n", name, help, value)
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), name))
}

func TestAcquireConcurrentColdCache(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := &fakeClock{now: time.Unix(1000000, 0)}
	server := &fakeServer{clock: clock}
	m := metrics.New()
	cache := New(server.refresh, Clock(clock.Now), WithMetrics(m))
	key := Key{DatasetID: "ds", Segment: "train"}

	const concurrency = 8
	leases := make([]model.Lease, concurrency)
	errs := make([]error, concurrency)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			leases[i], errs[i] = cache.Acquire(context.Background(), key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), server.calls.Load())
	assert.Equal(t, int64(1), cache.Refreshes())
	assertCounter(t, m, "datahub_lease_refreshes_total", "Number of upload credentials fetched from the server", 1)
	for i := 0; i < concurrency; i++ {
		require.NoError(t, errs[i])
		assert.False(t, leases[i].Expired(clock.Now()))
		assert.Equal(t, "ds/train/", leases[i].ObjectPrefix)
		assert.Equal(t, "a", leases[i].Credentials.SessionToken)
	}

	// copies are independent from the cached lease
	leases[0].Extra["n"] = "mutated"
	again, err := cache.Acquire(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "1", again.Extra["n"])
	assert.Equal(t, int64(1), server.calls.Load())
}

func TestAcquireExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000000, 0)}
	server := &fakeServer{clock: clock}
	cache := New(server.refresh, Clock(clock.Now))
	key := Key{DatasetID: "ds", Segment: "train"}

	_, err := cache.Acquire(context.Background(), key)
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = cache.Acquire(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), server.calls.Load())

	clock.Advance(time.Minute)
	l, err := cache.Acquire(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), server.calls.Load(), "refreshed when now reaches expireAt")
	assert.Equal(t, "b", l.Credentials.SessionToken)

	// segments are cached separately
	_, err = cache.Acquire(context.Background(), Key{DatasetID: "ds", Segment: "test"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), server.calls.Load())
}

func TestInvalidate(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000000, 0)}
	server := &fakeServer{clock: clock}
	m := metrics.New()
	cache := New(server.refresh, Clock(clock.Now), WithMetrics(m))
	key := Key{DatasetID: "ds", Segment: "train"}

	_, err := cache.Acquire(context.Background(), key)
	require.NoError(t, err)

	cache.Invalidate(key)
	assert.Equal(t, int64(1), cache.Invalidations())
	assert.Equal(t, int64(1), server.calls.Load(), "invalidation does not refresh")

	_, err = cache.Acquire(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), server.calls.Load())
	assert.Equal(t, int64(2), cache.Refreshes())
	assertCounter(t, m, "datahub_lease_invalidations_total", "Number of upload credentials invalidated after an authentication failure", 1)
}

func TestAcquireError(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000000, 0)}
	server := &fakeServer{clock: clock, err: assert.AnError}
	cache := New(server.refresh, Clock(clock.Now))
	key := Key{DatasetID: "ds", Segment: "train"}

	_, err := cache.Acquire(context.Background(), key)
	assert.ErrorIs(t, err, assert.AnError)

	server.err = nil
	_, err = cache.Acquire(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cache.Refreshes())
}
