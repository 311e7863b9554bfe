package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerrad567/webui-desktop/internal/shell"
)

// Page size limits for Recent.
const (
	defaultLimit = 50
	maxLimit     = 500
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Repository defines journal operations.
type Repository interface {
	Record(ctx context.Context, ev shell.Event) error
	Recent(ctx context.Context, limit int) ([]shell.Event, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// SQLiteRepository stores events in the lifecycle_events table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a journal over an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record appends ev. It implements shell.EventSink.
func (r *SQLiteRepository) Record(ctx context.Context, ev shell.Event) error {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	var exitCode any
	if ev.ExitCode != nil {
		exitCode = *ev.ExitCode
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lifecycle_events (session, kind, state, pid, exit_code, message, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Session, string(ev.Kind), string(ev.State), ev.PID, exitCode, ev.Message,
		ev.Time.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting lifecycle event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first. A limit outside
// 1..500 falls back to 50 or is clamped. It implements shell.EventHistory.
func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]shell.Event, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT session, kind, state, pid, exit_code, message, occurred_at
		 FROM lifecycle_events
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying lifecycle events: %w", err)
	}
	defer rows.Close()

	events := []shell.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lifecycle events: %w", err)
	}
	return events, nil
}

// Prune deletes events recorded before the cutoff and returns how many
// rows went.
func (r *SQLiteRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM lifecycle_events WHERE occurred_at < ?",
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning lifecycle events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned events: %w", err)
	}
	return n, nil
}

func scanEvent(rows *sql.Rows) (shell.Event, error) {
	var (
		ev         shell.Event
		kind       string
		state      string
		exitCode   sql.NullInt64
		occurredAt string
	)
	if err := rows.Scan(&ev.Session, &kind, &state, &ev.PID, &exitCode, &ev.Message, &occurredAt); err != nil {
		return shell.Event{}, fmt.Errorf("scanning lifecycle event: %w", err)
	}

	ev.Kind = shell.EventKind(kind)
	ev.State = shell.State(state)
	if exitCode.Valid {
		code := int(exitCode.Int64)
		ev.ExitCode = &code
	}
	t, err := time.Parse(timeLayout, occurredAt)
	if err != nil {
		return shell.Event{}, fmt.Errorf("parsing event time %q: %w", occurredAt, err)
	}
	ev.Time = t
	return ev, nil
}
