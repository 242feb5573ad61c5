package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"charging_console/internal/models"
)

type SnapshotSQLite struct {
	db *sql.DB
}

func NewSnapshotSQLite(db *sql.DB) *SnapshotSQLite {
	return &SnapshotSQLite{db: db}
}

var errEmptyView = errors.New("snapshot: view is required")

const (
	upsertSnapshotSQL = `
		INSERT INTO view_snapshots (view, tick, committed_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(view) DO UPDATE SET
			tick=excluded.tick,
			committed_at=excluded.committed_at,
			payload=excluded.payload
	`

	selectSnapshotSQL = `
		SELECT view, tick, committed_at, payload
		FROM view_snapshots WHERE view=?
	`
)

// Save replaces the cached snapshot of s.View.
func (r *SnapshotSQLite) Save(ctx context.Context, s models.ViewSnapshot) error {
	if s.View == "" {
		return errEmptyView
	}
	ts := s.CommittedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.ExecContext(ctx, upsertSnapshotSQL,
		s.View,
		int64(s.Tick),
		ts.UTC().Format(tsLayout),
		string(s.Payload),
	)
	return err
}

// Load returns the cached snapshot of view, or an empty one if none exists.
func (r *SnapshotSQLite) Load(ctx context.Context, view string) (models.ViewSnapshot, error) {
	row := r.db.QueryRowContext(ctx, selectSnapshotSQL, view)

	var (
		s       models.ViewSnapshot
		tick    int64
		payload string
	)
	if err := row.Scan(&s.View, &tick, &s.CommittedAt, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ViewSnapshot{}, nil // nothing cached yet
		}
		return models.ViewSnapshot{}, err
	}
	s.Tick = uint64(tick)
	s.Payload = []byte(payload)
	s.CommittedAt = s.CommittedAt.UTC()
	return s, nil
}
