package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

func TestTracker(t *testing.T) {
	var (
		calls atomic.Int64
		last  atomic.Int64
	)
	tracker := NewTracker(100, OnUpdate(func(done, total int64) {
		calls.Inc()
		assert.EqualValues(t, 100, total)
		for {
			prev := last.Load()
			if done <= prev || last.CompareAndSwap(prev, done) {
				break
			}
		}
	}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if (i+j)%4 == 0 {
					assert.False(t, tracker.UpdateForSkip(false))
					continue
				}
				tracker.Update()
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 100, tracker.Done())
	assert.EqualValues(t, 25, tracker.Skipped())
	assert.EqualValues(t, 100, calls.Load())
	assert.EqualValues(t, 100, last.Load())
	assert.True(t, tracker.UpdateForSkip(true), "kept items are not counted")
	assert.EqualValues(t, 100, tracker.Done())
}

func TestDisabledTracker(t *testing.T) {
	called := false
	tracker := NewTracker(1, DisableTracker(true), OnUpdate(func(_, _ int64) { called = true }))
	tracker.Update()
	assert.True(t, tracker.Disabled())
	assert.False(t, called)
	assert.EqualValues(t, 1, tracker.Done())
	assert.True(t, noProgress{}.Disabled())
}
