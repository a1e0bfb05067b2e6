package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(context.Background())

	var a, b atomic.Int32
	s.AddJob("a", time.Hour, func(ctx context.Context) error {
		a.Add(1)
		return nil
	})
	s.AddJob("b", time.Hour, func(ctx context.Context) error {
		b.Add(1)
		return errors.New("failing jobs are logged, not fatal")
	})

	assert.Equal(t, 2, s.RunOnce(context.Background()))
	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler(context.Background())

	ran := make(chan struct{}, 1)
	s.AddJob("probe", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}

func TestScheduler_SkipsOverlappingRun(t *testing.T) {
	s := NewScheduler(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	s.AddJob("slow", time.Hour, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})

	done := make(chan int)
	go func() { done <- s.RunOnce(context.Background()) }()
	<-started

	assert.Equal(t, 0, s.RunOnce(context.Background()))

	close(release)
	assert.Equal(t, 1, <-done)
}
