package offline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Remote sends one action to the API. A nil error means the API confirmed
// the mutation.
type Remote interface {
	Replay(ctx context.Context, a Action) error
}

// SyncResult summarizes one sync pass. Skipped is set when another pass was
// already running.
type SyncResult struct {
	Attempted int
	Succeeded int
	Failed    int
	Skipped   bool
}

// Syncer replays queued actions in insertion order. Each action is tried
// once per pass; failures stay queued for the next pass.
type Syncer struct {
	store  *Store
	remote Remote

	running sync.Mutex
}

func NewSyncer(store *Store, remote Remote) *Syncer {
	return &Syncer{store: store, remote: remote}
}

// Sync runs one pass. A pass started while another is in progress returns
// immediately with Skipped set. Only store errors are returned; remote
// failures are recorded on the action.
func (s *Syncer) Sync(ctx context.Context) (SyncResult, error) {
	if !s.running.TryLock() {
		slog.Debug("Sync already running, skipped")
		return SyncResult{Skipped: true}, nil
	}
	defer s.running.Unlock()

	if err := s.store.recover(ctx); err != nil {
		return SyncResult{}, err
	}
	actions, err := s.store.Queued(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	if len(actions) == 0 {
		return SyncResult{}, nil
	}

	start := time.Now()
	var result SyncResult
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := s.store.MarkInFlight(ctx, a.ID); err != nil {
			if lostClaim(err) {
				slog.Debug("Action taken by another sync, skipped", "action_id", a.ID)
				continue
			}
			return result, fmt.Errorf("claim action %s: %w", a.ID, err)
		}
		result.Attempted++

		if replayErr := s.remote.Replay(ctx, a); replayErr != nil {
			result.Failed++
			slog.Warn("Replay failed, action stays queued",
				"action_id", a.ID, "kind", a.Kind, "attempt", a.Attempts+1, "error", replayErr)
			// the store is local; record the failure even if ctx was cancelled mid-call
			if err := s.store.Requeue(context.WithoutCancel(ctx), a.ID, replayErr); err != nil {
				if lostClaim(err) {
					slog.Warn("Claim lost before requeue", "action_id", a.ID, "error", err)
					continue
				}
				return result, fmt.Errorf("requeue action %s: %w", a.ID, err)
			}
			continue
		}

		if err := s.store.Complete(context.WithoutCancel(ctx), a.ID); err != nil {
			if lostClaim(err) {
				slog.Warn("Claim lost before completion, action may be replayed twice", "action_id", a.ID, "error", err)
				continue
			}
			return result, fmt.Errorf("complete action %s: %w", a.ID, err)
		}
		result.Succeeded++
		slog.Info("Action replayed", "action_id", a.ID, "kind", a.Kind, "employee_id", a.EmployeeID)
	}

	slog.Info("Sync pass finished",
		"attempted", result.Attempted, "succeeded", result.Succeeded, "failed", result.Failed,
		"duration", time.Since(start).String())
	return result, nil
}

// lostClaim reports whether err means the action is no longer ours to
// update: another process claimed it, completed it, or took back an
// expired lease.
func lostClaim(err error) bool {
	return errors.Is(err, ErrUnexpectedStatus) || errors.Is(err, ErrActionNotFound)
}
