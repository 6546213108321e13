package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunOnceRunsEveryJob(t *testing.T) {
	s := NewScheduler()
	var calls []string
	s.AddJob("first", time.Hour, func(context.Context) error {
		calls = append(calls, "first")
		return nil
	})
	s.AddJob("failing", time.Hour, func(context.Context) error {
		calls = append(calls, "failing")
		return errors.New("boom")
	})
	s.AddJob("last", time.Hour, func(context.Context) error {
		calls = append(calls, "last")
		return nil
	})

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"first", "failing", "last"}, calls)
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	s.AddJob("tick", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)

	s.Stop()
	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestStopWithoutStart(t *testing.T) {
	s := NewScheduler()
	s.Stop()
}
