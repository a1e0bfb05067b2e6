package offline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/pkg/schema"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var schemaStatements = []string{`
CREATE TABLE IF NOT EXISTS pending_actions (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT    NOT NULL UNIQUE,
	kind        TEXT    NOT NULL CHECK (kind IN ('clock_in', 'clock_out')),
	employee_id TEXT    NOT NULL,
	date        TEXT    NOT NULL,
	time        TEXT    NOT NULL,
	entry_id    TEXT    NOT NULL DEFAULT '',
	status      TEXT    NOT NULL DEFAULT 'queued' CHECK (status IN ('queued', 'in_flight', 'done')),
	attempts    INTEGER NOT NULL DEFAULT 0,
	last_error  TEXT    NOT NULL DEFAULT '',
	claimed_by  TEXT    NOT NULL DEFAULT '',
	claimed_at  INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT    NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_pending_actions_status ON pending_actions (status, seq)`,
}

// claimColumns were added after the first release; older queue files get
// them on Open.
var claimColumns = []struct{ name, ddl string }{
	{"claimed_by", `ALTER TABLE pending_actions ADD COLUMN claimed_by TEXT NOT NULL DEFAULT ''`},
	{"claimed_at", `ALTER TABLE pending_actions ADD COLUMN claimed_at INTEGER NOT NULL DEFAULT 0`},
}

const selectColumns = `seq, id, kind, employee_id, date, time, entry_id, status, attempts, last_error, claimed_by, claimed_at, created_at`

// DefaultLeaseTTL is how long an in_flight claim is honoured before another
// store on the same file may requeue it. It must exceed the replay timeout.
const DefaultLeaseTTL = 2 * time.Minute

// Store is the kiosk's durable queue in a local SQLite file. Every status
// change is written before the caller moves on.
//
// Several kiosk processes may share one file. Each Store claims in_flight
// rows under its own owner id; a claim is only taken back once it is older
// than the lease TTL, which means its owner died mid-replay.
type Store struct {
	db       *sql.DB
	owner    string
	leaseTTL time.Duration
	now      func() time.Time
}

type Option func(*Store)

// WithLeaseTTL overrides DefaultLeaseTTL.
func WithLeaseTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.leaseTTL = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the queue at path and recovers from an
// interrupted run: expired in_flight claims go back to queued, done rows
// are purged.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create queue directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue: %w", err)
	}

	// SQLite has a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA synchronous=FULL;", "PRAGMA busy_timeout=5000;"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create queue table: %w", err)
		}
	}
	if err := addClaimColumns(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	owner, err := uuid.NewV7()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to generate queue owner id: %w", err)
	}

	s := &Store{db: db, owner: owner.String(), leaseTTL: DefaultLeaseTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.recover(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func addClaimColumns(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info('pending_actions')`)
	if err != nil {
		return fmt.Errorf("failed to read queue columns: %w", err)
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("failed to read queue columns: %w", err)
		}
		existing[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read queue columns: %w", err)
	}

	for _, col := range claimColumns {
		if existing[col.name] {
			continue
		}
		if _, err := db.ExecContext(ctx, col.ddl); err != nil {
			return fmt.Errorf("failed to add queue column %s: %w", col.name, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Owner identifies this Store's claims.
func (s *Store) Owner() string {
	return s.owner
}

// recover requeues in_flight rows whose claim has expired and purges done
// rows. Live claims of other processes are left alone.
func (s *Store) recover(ctx context.Context) error {
	expired := s.now().Add(-s.leaseTTL).UnixMilli()
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_actions
		SET status = 'queued', claimed_by = '', claimed_at = 0
		WHERE status = 'in_flight' AND claimed_at < ?
	`, expired)
	if err != nil {
		return fmt.Errorf("failed to requeue in-flight actions: %w", err)
	}
	requeued, _ := res.RowsAffected()

	res, err = s.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE status = 'done'`)
	if err != nil {
		return fmt.Errorf("failed to purge done actions: %w", err)
	}
	purged, _ := res.RowsAffected()

	if requeued > 0 || purged > 0 {
		slog.Warn("Recovered offline queue after interrupted sync", "requeued", requeued, "purged", purged)
	}
	return nil
}

// Enqueue validates r and stores it as a queued action.
func (s *Store) Enqueue(ctx context.Context, r Request) (Action, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Action{}, fmt.Errorf("failed to generate action id: %w", err)
	}
	a := Action{
		Request:   r,
		ID:        id.String(),
		Status:    StatusQueued,
		CreatedAt: s.now().UTC(),
	}

	if err := schema.Check(a); err != nil {
		return Action{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_actions (id, kind, employee_id, date, time, entry_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, string(a.Kind), a.EmployeeID, a.Date, a.Time, a.EntryID, string(a.Status), a.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Action{}, fmt.Errorf("failed to enqueue action: %w", err)
	}
	a.Seq, _ = res.LastInsertId()

	slog.Info("Action queued offline", "action_id", a.ID, "kind", a.Kind, "employee_id", a.EmployeeID)
	return a, nil
}

// List returns every action in insertion order.
func (s *Store) List(ctx context.Context) ([]Action, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM pending_actions ORDER BY seq`)
}

// Queued returns queued actions in insertion order. Rows that fail the
// schema check are logged and left in place.
func (s *Store) Queued(ctx context.Context) ([]Action, error) {
	actions, err := s.query(ctx, `SELECT `+selectColumns+` FROM pending_actions WHERE status = 'queued' ORDER BY seq`)
	if err != nil {
		return nil, err
	}

	valid := actions[:0]
	for _, a := range actions {
		if err := schema.Check(a); err != nil {
			slog.Warn("Skipping malformed queued action", "seq", a.Seq, "action_id", a.ID, "error", err)
			continue
		}
		valid = append(valid, a)
	}
	return valid, nil
}

func (s *Store) Get(ctx context.Context, id string) (Action, error) {
	actions, err := s.query(ctx, `SELECT `+selectColumns+` FROM pending_actions WHERE id = ?`, id)
	if err != nil {
		return Action{}, err
	}
	if len(actions) == 0 {
		return Action{}, ErrActionNotFound
	}
	return actions[0], nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Action, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending actions: %w", err)
	}
	defer rows.Close()

	actions := make([]Action, 0)
	for rows.Next() {
		var (
			a         Action
			kind      string
			status    string
			claimedAt int64
			createdAt string
		)
		if err := rows.Scan(&a.Seq, &a.ID, &kind, &a.EmployeeID, &a.Date, &a.Time, &a.EntryID, &status, &a.Attempts, &a.LastError, &a.ClaimedBy, &claimedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending action: %w", err)
		}
		a.Kind = Kind(kind)
		a.Status = Status(status)
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		if claimedAt > 0 {
			a.ClaimedAt = time.UnixMilli(claimedAt).UTC()
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pending actions: %w", err)
	}
	return actions, nil
}

// MarkInFlight claims a queued action for this Store. It fails with
// ErrUnexpectedStatus when the action is in any other state, including
// when another process claimed it first.
func (s *Store) MarkInFlight(ctx context.Context, id string) error {
	return s.transition(ctx, id, StatusQueued, `
		UPDATE pending_actions
		SET status = 'in_flight', claimed_by = ?, claimed_at = ?
		WHERE id = ? AND status = 'queued'
	`, s.owner, s.now().UnixMilli(), id)
}

// Requeue returns an action claimed by this Store to the queue and records
// the failure.
func (s *Store) Requeue(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.transition(ctx, id, StatusInFlight, `
		UPDATE pending_actions
		SET status = 'queued', attempts = attempts + 1, last_error = ?, claimed_by = '', claimed_at = 0
		WHERE id = ? AND status = 'in_flight' AND claimed_by = ?
	`, msg, id, s.owner)
}

// Complete records success of an action claimed by this Store and then
// removes it. A crash between the two writes leaves a done row, purged on
// the next Open.
func (s *Store) Complete(ctx context.Context, id string) error {
	if err := s.transition(ctx, id, StatusInFlight, `
		UPDATE pending_actions
		SET status = 'done'
		WHERE id = ? AND status = 'in_flight' AND claimed_by = ?
	`, id, s.owner); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE id = ? AND status = 'done'`, id); err != nil {
		return fmt.Errorf("failed to delete completed action: %w", err)
	}
	return nil
}

func (s *Store) transition(ctx context.Context, id string, from Status, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("failed to update action %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update action %s: %w", id, err)
	}
	if n == 0 {
		if _, err := s.Get(ctx, id); errors.Is(err, ErrActionNotFound) {
			return ErrActionNotFound
		}
		return fmt.Errorf("%w: expected %s", ErrUnexpectedStatus, from)
	}
	return nil
}

// Stats counts the stored actions per status.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM pending_actions GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count pending actions: %w", err)
	}
	defer rows.Close()

	var st Stats
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return Stats{}, fmt.Errorf("failed to scan action count: %w", err)
		}
		switch Status(status) {
		case StatusQueued:
			st.Queued = n
		case StatusInFlight:
			st.InFlight = n
		case StatusDone:
			st.Done = n
		}
	}
	return st, rows.Err()
}
