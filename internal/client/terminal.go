package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/timeclock-go/internal/offline"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/schema"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/worktime"
)

// ClockResult is the outcome of a clock action: either the entry the API
// stored, or the action that was queued instead.
type ClockResult struct {
	Entry  *TimeEntry
	Queued *offline.Action
}

// Terminal performs clock actions for the kiosk. When the API is known to be
// offline, or a call to it fails, the action is queued and replayed by the
// next sync pass.
type Terminal struct {
	api     *Client
	queue   *offline.Store
	syncer  *offline.Syncer
	monitor *Monitor
}

// NewTerminal wires the syncer to run whenever monitor sees the API come
// online.
func NewTerminal(api *Client, queue *offline.Store, monitor *Monitor) *Terminal {
	t := &Terminal{
		api:     api,
		queue:   queue,
		monitor: monitor,
	}
	t.syncer = offline.NewSyncer(queue, t)
	monitor.OnOnline(func(ctx context.Context) error {
		_, err := t.Sync(ctx)
		return err
	})
	return t
}

func (t *Terminal) ClockIn(ctx context.Context, employeeID, date, clock string) (ClockResult, error) {
	clock, err := normalizeClock(clock)
	if err != nil {
		return ClockResult{}, err
	}
	action := offline.Request{
		Kind:       offline.KindClockIn,
		EmployeeID: employeeID,
		Date:       date,
		Time:       clock,
	}
	return t.perform(ctx, action)
}

// ClockOut closes entryID. With an empty entryID the employee's open entry on
// date is looked up, which needs the API.
func (t *Terminal) ClockOut(ctx context.Context, employeeID, entryID, date, clock string) (ClockResult, error) {
	clock, err := normalizeClock(clock)
	if err != nil {
		return ClockResult{}, err
	}

	if entryID == "" {
		if t.monitor.KnownOffline() {
			return ClockResult{}, apperror.New(apperror.KindValidation, "entry id is required while offline")
		}
		open, err := t.api.FindOpen(ctx, employeeID, date)
		t.monitor.Observe(err)
		if err != nil {
			return ClockResult{}, fmt.Errorf("find open entry: %w", err)
		}
		entryID = open.ID
	}

	action := offline.Request{
		Kind:       offline.KindClockOut,
		EmployeeID: employeeID,
		Date:       date,
		Time:       clock,
		EntryID:    entryID,
	}
	return t.perform(ctx, action)
}

func (t *Terminal) perform(ctx context.Context, r offline.Request) (ClockResult, error) {
	if err := schema.Check(r); err != nil {
		return ClockResult{}, err
	}
	if t.monitor.KnownOffline() {
		return t.enqueue(ctx, r)
	}

	entry, err := t.send(ctx, r)
	t.monitor.Observe(err)
	if err != nil {
		slog.Warn("Clock action failed, queueing", "kind", r.Kind, "employee_id", r.EmployeeID, "error", err)
		return t.enqueue(ctx, r)
	}
	return ClockResult{Entry: &entry}, nil
}

func (t *Terminal) enqueue(ctx context.Context, r offline.Request) (ClockResult, error) {
	queued, err := t.queue.Enqueue(ctx, r)
	if err != nil {
		return ClockResult{}, err
	}
	return ClockResult{Queued: &queued}, nil
}

func (t *Terminal) send(ctx context.Context, r offline.Request) (TimeEntry, error) {
	switch r.Kind {
	case offline.KindClockIn:
		return t.api.ClockIn(ctx, ClockInRequest{EmployeeID: r.EmployeeID, Date: r.Date, Time: r.Time})
	case offline.KindClockOut:
		return t.api.ClockOut(ctx, ClockOutRequest{EntryID: r.EntryID, Time: r.Time})
	default:
		return TimeEntry{}, apperror.New(apperror.KindValidation, fmt.Sprintf("unknown action kind %q", r.Kind))
	}
}

// Replay implements offline.Remote.
func (t *Terminal) Replay(ctx context.Context, a offline.Action) error {
	_, err := t.send(ctx, a.Request)
	t.monitor.Observe(err)
	return err
}

// Sync replays the queue once.
func (t *Terminal) Sync(ctx context.Context) (offline.SyncResult, error) {
	return t.syncer.Sync(ctx)
}

// SyncNow checks connectivity and, when the API answers, runs exactly one
// sync pass. reachable is false when the API is down; nothing is replayed
// then.
func (t *Terminal) SyncNow(ctx context.Context) (result offline.SyncResult, reachable bool, err error) {
	if !t.monitor.Check(ctx) {
		return offline.SyncResult{}, false, nil
	}
	result, err = t.Sync(ctx)
	return result, true, err
}

// Pending reports the queue contents.
func (t *Terminal) Pending(ctx context.Context) (offline.Stats, []offline.Action, error) {
	stats, err := t.queue.Stats(ctx)
	if err != nil {
		return offline.Stats{}, nil, err
	}
	actions, err := t.queue.List(ctx)
	if err != nil {
		return offline.Stats{}, nil, err
	}
	return stats, actions, nil
}

func normalizeClock(clock string) (string, error) {
	normalized, err := worktime.NormalizeClock(clock)
	if err != nil {
		return "", apperror.Wrap(apperror.KindValidation, "invalid time", err)
	}
	return normalized, nil
}
