package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingLoader(calls *atomic.Int32, items ...string) Loader[string] {
	return func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		return append([]string(nil), items...), nil
	}
}

func TestCollection_ReadThrough(t *testing.T) {
	var calls atomic.Int32
	c := New("employees", countingLoader(&calls, "ana", "ben"))

	first, err := c.Get(context.Background())
	require.NoError(t, err)
	second, err := c.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ana", "ben"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, c.Loaded())
}

func TestCollection_InvalidateTriggersRefetch(t *testing.T) {
	var calls atomic.Int32
	c := New("holidays", countingLoader(&calls, "new year"))

	_, err := c.Get(context.Background())
	require.NoError(t, err)

	c.Invalidate()
	assert.False(t, c.Loaded())

	_, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCollection_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	loadErr := make(chan error, 1)
	c := New("employees", func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		close(started)
		<-release
		loadErr <- ctx.Err()
		return []string{"ana"}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx)
		firstErr <- err
	}()
	<-started

	type result struct {
		items []string
		err   error
	}
	second := make(chan result, 1)
	go func() {
		items, err := c.Get(context.Background())
		second <- result{items, err}
	}()

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, []string{"ana"}, got.items)
	assert.NoError(t, <-loadErr, "the load must not see the first caller's cancellation")
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, c.Loaded())
}

func TestCollection_ReturnsCopies(t *testing.T) {
	var calls atomic.Int32
	c := New("employees", countingLoader(&calls, "ana"))

	items, err := c.Get(context.Background())
	require.NoError(t, err)
	items[0] = "mutated"

	again, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, again)
}

func TestCollection_LoadErrorIsNotCached(t *testing.T) {
	fail := true
	c := New("time_entries", func(ctx context.Context) ([]int, error) {
		if fail {
			return nil, errors.New("db down")
		}
		return []int{1}, nil
	})

	_, err := c.Get(context.Background())
	require.Error(t, err)
	assert.False(t, c.Loaded())

	fail = false
	items, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, items)
}

func TestCollection_InvalidateDuringLoadDiscardsResult(t *testing.T) {
	var c *Collection[string]
	calls := 0
	c = New("vacation_days", func(ctx context.Context) ([]string, error) {
		calls++
		if calls == 1 {
			// A write lands while the first fetch is in flight.
			c.Invalidate()
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	})

	items, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, items)
	assert.False(t, c.Loaded())

	items, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, items)
}

func TestRegistry(t *testing.T) {
	var empCalls, holCalls atomic.Int32
	employees := New("employees", countingLoader(&empCalls, "ana"))
	holidays := New("holidays", countingLoader(&holCalls, "xmas"))

	r := NewRegistry()
	r.Register(employees, holidays)
	assert.Equal(t, []string{"employees", "holidays"}, r.Tables())

	ctx := context.Background()
	_, _ = employees.Get(ctx)
	_, _ = holidays.Get(ctx)

	assert.True(t, r.Invalidate("employees"))
	assert.False(t, r.Invalidate("unknown"))
	assert.False(t, employees.Loaded())
	assert.True(t, holidays.Loaded())

	_, _ = employees.Get(ctx)
	r.InvalidateAll()
	assert.False(t, employees.Loaded())
	assert.False(t, holidays.Loaded())
}
