// Package realtime turns Postgres change notifications into cache
// invalidations and SSE events.
package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/pkg/sse"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Channel is the NOTIFY channel the table triggers publish on. Payloads are
// bare table names.
const Channel = "timeclock_changes"

// EventChange is the SSE event name sent for every table change.
const EventChange = "change"

type Invalidator interface {
	Invalidate(table string) bool
	InvalidateAll()
}

type Publisher interface {
	Publish(topic string, event sse.Event)
}

// Dispatcher fans one notification out to the cache and the SSE hub.
type Dispatcher struct {
	cache Invalidator
	hub   Publisher
}

func NewDispatcher(cache Invalidator, hub Publisher) *Dispatcher {
	return &Dispatcher{cache: cache, hub: hub}
}

// Dispatch handles a change of table. Unknown tables are ignored.
func (d *Dispatcher) Dispatch(table string) {
	if !d.cache.Invalidate(table) {
		slog.Warn("Change notification for unknown table", "table", table)
		return
	}
	d.hub.Publish(table, sse.Event{
		Event: EventChange,
		Data:  map[string]string{"table": table},
	})
}

// Resync drops every cached collection. Called whenever notifications may
// have been missed.
func (d *Dispatcher) Resync() {
	d.cache.InvalidateAll()
}

// Listener holds one pooled connection in LISTEN mode and forwards
// notifications to a Dispatcher, reconnecting on failure.
type Listener struct {
	pool           *pgxpool.Pool
	dispatcher     *Dispatcher
	reconnectDelay time.Duration
}

func NewListener(pool *pgxpool.Pool, dispatcher *Dispatcher, reconnectDelay time.Duration) *Listener {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	return &Listener{
		pool:           pool,
		dispatcher:     dispatcher,
		reconnectDelay: reconnectDelay,
	}
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) {
	slog.Info("Change listener started", "channel", Channel)
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			slog.Info("Change listener stopped")
			return
		}
		slog.Error("Change listener disconnected", "error", err, "retry_in", l.reconnectDelay.String())

		select {
		case <-ctx.Done():
			slog.Info("Change listener stopped")
			return
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		if !conn.Conn().IsClosed() {
			_, _ = conn.Exec(context.Background(), "UNLISTEN *")
		}
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	// Anything written while we were not listening is unknown.
	l.dispatcher.Resync()

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		l.dispatcher.Dispatch(n.Payload)
	}
}
