package realtime

import (
	"testing"

	"github.com/cmlabs-hris/timeclock-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
)

type fakeCache struct {
	tables      map[string]bool
	invalidated []string
	resyncs     int
}

func (f *fakeCache) Invalidate(table string) bool {
	if !f.tables[table] {
		return false
	}
	f.invalidated = append(f.invalidated, table)
	return true
}

func (f *fakeCache) InvalidateAll() {
	f.resyncs++
}

func TestDispatcher_InvalidatesAndPublishes(t *testing.T) {
	cache := &fakeCache{tables: map[string]bool{"time_entries": true}}
	hub := sse.NewHub()
	ch, cleanup := hub.Subscribe("time_entries")
	defer cleanup()

	d := NewDispatcher(cache, hub)
	d.Dispatch("time_entries")

	assert.Equal(t, []string{"time_entries"}, cache.invalidated)
	select {
	case ev := <-ch:
		assert.Equal(t, EventChange, ev.Event)
		assert.Equal(t, "time_entries", ev.Topic)
		assert.Equal(t, map[string]string{"table": "time_entries"}, ev.Data)
	default:
		t.Fatal("expected a change event")
	}
}

func TestDispatcher_IgnoresUnknownTable(t *testing.T) {
	cache := &fakeCache{tables: map[string]bool{}}
	hub := sse.NewHub()
	ch, cleanup := hub.Subscribe("users")
	defer cleanup()

	NewDispatcher(cache, hub).Dispatch("users")

	assert.Empty(t, cache.invalidated)
	assert.Len(t, ch, 0)
}

func TestDispatcher_Resync(t *testing.T) {
	cache := &fakeCache{}
	NewDispatcher(cache, sse.NewHub()).Resync()
	assert.Equal(t, 1, cache.resyncs)
}
