package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"charging_console/internal/models"

	"github.com/google/uuid"
)

// tsLayout is the fixed-width UTC text form used for occurred_at, so string
// comparison in SQLite matches time order.
const tsLayout = "2006-01-02 15:04:05.000"

type PollEventSQLite struct {
	db *sql.DB
}

func NewPollEventSQLite(db *sql.DB) *PollEventSQLite { return &PollEventSQLite{db: db} }

// Append inserts a new event. If EventID or OccurredAt are empty, they're set.
func (r *PollEventSQLite) Append(ctx context.Context, e models.PollEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	var detail *string
	if e.Detail != "" {
		detail = &e.Detail
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO poll_events (id, occurred_at, view, tick, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.EventID,
		e.OccurredAt.UTC().Format(tsLayout),
		e.View,
		int64(e.Tick),
		strings.ToUpper(strings.TrimSpace(e.Outcome)),
		detail,
	)
	return err
}

// List returns events filtered by [From, To] (inclusive), outcome and view,
// ordered oldest first. A positive Limit keeps only the newest Limit rows.
func (r *PollEventSQLite) List(ctx context.Context, f PollEventQuery) ([]models.PollEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !f.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, f.From.UTC().Format(tsLayout))
	}
	if !f.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, f.To.UTC().Format(tsLayout))
	}
	if outcome := strings.ToUpper(strings.TrimSpace(f.Outcome)); outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, outcome)
	}
	if view := strings.TrimSpace(f.View); view != "" {
		conds = append(conds, "view = ?")
		args = append(args, view)
	}

	q := `SELECT id, occurred_at, view, tick, outcome, detail FROM poll_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.Limit > 0 {
		q = `SELECT * FROM (` + q + ` ORDER BY occurred_at DESC, tick DESC LIMIT ` + strconv.Itoa(f.Limit) + `)`
	}
	q += " ORDER BY occurred_at ASC, tick ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.PollEvent, 0, 64)
	for rows.Next() {
		var (
			ev     models.PollEvent
			tick   int64
			detail sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.View, &tick, &ev.Outcome, &detail); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		ev.Tick = uint64(tick)
		ev.Detail = detail.String
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Prune deletes events that occurred before the cutoff.
func (r *PollEventSQLite) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM poll_events WHERE occurred_at < ?`, before.UTC().Format(tsLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
