package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 * * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("every hour"))
	assert.Error(t, ValidateSchedule("0 0 * * * *"), "seconds field is not accepted")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Every hour at :00", Describe("0 * * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", Describe("5 4 * * *"))
}

func TestScheduler_AddRejectsInvalid(t *testing.T) {
	s := New()

	assert.Error(t, s.Add("overdue_scan", "not a schedule", func(context.Context) error { return nil }))
	require.NoError(t, s.Add("overdue_scan", "0 * * * *", func(context.Context) error { return nil }))
	assert.Error(t, s.Add("overdue_scan", "0 * * * *", func(context.Context) error { return nil }))
}

func TestScheduler_RunNow(t *testing.T) {
	s := New()
	var runs atomic.Int32
	done := make(chan struct{}, 1)
	require.NoError(t, s.Add("overdue_scan", "0 * * * *", func(context.Context) error {
		runs.Add(1)
		done <- struct{}{}
		return nil
	}))

	require.NoError(t, s.RunNow("overdue_scan"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	assert.Equal(t, int32(1), runs.Load())
	assert.Error(t, s.RunNow("missing"))
}

func TestScheduler_FailingJobDoesNotPanic(t *testing.T) {
	s := New()
	done := make(chan struct{}, 1)
	require.NoError(t, s.Add("cleanup", "0 * * * *", func(context.Context) error {
		defer func() { done <- struct{}{} }()
		return errors.New("boom")
	}))

	require.NoError(t, s.RunNow("cleanup"))
	<-done
}

func TestScheduler_StartStop(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("overdue_scan", "0 * * * *", func(context.Context) error { return nil }))
	assert.Nil(t, s.NextRun("overdue_scan"))

	s.Start(context.Background())
	assert.True(t, s.IsRunning())

	next := s.NextRun("overdue_scan")
	require.NotNil(t, next)
	assert.Zero(t, next.Minute())
	assert.True(t, next.After(time.Now()))

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}
