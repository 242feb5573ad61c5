package repository

import (
	"context"
	"database/sql"
	"time"

	"charging_console/internal/models"
)

// SnapshotRepo keeps the last committed snapshot per view.
type SnapshotRepo interface {
	Save(ctx context.Context, s models.ViewSnapshot) error
	Load(ctx context.Context, view string) (models.ViewSnapshot, error)
}

// PollEventRepo is the append-only journal of tick outcomes.
type PollEventRepo interface {
	Append(ctx context.Context, e models.PollEvent) error
	List(ctx context.Context, q PollEventQuery) ([]models.PollEvent, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// PollEventQuery filters the journal. Zero fields do not filter.
type PollEventQuery struct {
	From    time.Time
	To      time.Time
	Outcome string
	View    string
	Limit   int
}

type Repository struct {
	Snapshots  SnapshotRepo
	PollEvents PollEventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Snapshots:  NewSnapshotSQLite(db),
		PollEvents: NewPollEventSQLite(db),
	}
}
