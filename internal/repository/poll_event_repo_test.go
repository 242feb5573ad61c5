package repository

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"charging_console/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

const insertPollEventSQL = `
		INSERT INTO poll_events (id, occurred_at, view, tick, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`

func TestPollEventAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewPollEventSQLite(db)

	// generated id and timestamp are not known upfront
	mock.ExpectExec(regexp.QuoteMeta(insertPollEventSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "charger:CP-1", int64(4), "DISCARDED", "logs: 500").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), models.PollEvent{
		View:    "charger:CP-1",
		Tick:    4,
		Outcome: " discarded ",
		Detail:  "logs: 500",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestPollEventAppend_KeepsGivenFields(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewPollEventSQLite(db)

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(insertPollEventSQL)).
		WithArgs("evt-1", "2025-03-01 12:00:00.000", "overview", int64(1), "COMMITTED", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), models.PollEvent{
		EventID: "evt-1", OccurredAt: at, View: "overview", Tick: 1, Outcome: models.OutcomeCommitted,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestPollEventAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO poll_events").WillReturnError(errors.New("down"))

	err := NewPollEventSQLite(db).Append(ctx(t), models.PollEvent{View: "overview", Outcome: "skipped"})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestPollEventList_NoFilters(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewPollEventSQLite(db)

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "occurred_at", "view", "tick", "outcome", "detail"}).
		AddRow("1", now, "overview", int64(1), "COMMITTED", nil).
		AddRow("2", now.Add(time.Second), "overview", int64(2), "DISCARDED", "boom")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, occurred_at, view, tick, outcome, detail FROM poll_events ORDER BY occurred_at ASC, tick ASC`)).
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), PollEventQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2, got %d", len(got))
	}
	if got[0].Detail != "" || got[1].Detail != "boom" {
		t.Fatalf("unexpected details: %q, %q", got[0].Detail, got[1].Detail)
	}
	if got[1].Tick != 2 {
		t.Fatalf("unexpected tick %d", got[1].Tick)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestPollEventList_WithFiltersAndLimit(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewPollEventSQLite(db)

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	query := `SELECT * FROM (SELECT id, occurred_at, view, tick, outcome, detail FROM poll_events` +
		` WHERE occurred_at >= ? AND occurred_at <= ? AND outcome = ? AND view = ?` +
		` ORDER BY occurred_at DESC, tick DESC LIMIT 50) ORDER BY occurred_at ASC, tick ASC`

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("2025-01-01 11:00:00.000", "2025-01-01 12:00:00.000", "DROPPED", "charger:CP-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "occurred_at", "view", "tick", "outcome", "detail"}).
			AddRow("9", from, "charger:CP-1", int64(3), "DROPPED", nil))

	got, err := repo.List(ctx(t), PollEventQuery{From: from, To: to, Outcome: "dropped", View: " charger:CP-1 ", Limit: 50})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "9" {
		t.Fatalf("unexpected results: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestPollEventList_ScanError(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	mock.ExpectQuery("SELECT id, occurred_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "occurred_at", "view", "tick", "outcome", "detail"}).
			AddRow("1", "not-a-time", "overview", "x", "COMMITTED", nil))

	if _, err := NewPollEventSQLite(db).List(ctx(t), PollEventQuery{}); err == nil {
		t.Fatal("expected scan error")
	}
}

func TestPollEventPrune(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	cutoff := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM poll_events WHERE occurred_at < ?`)).
		WithArgs("2025-01-02 00:00:00.000").
		WillReturnResult(sqlmock.NewResult(0, 12))

	n, err := NewPollEventSQLite(db).Prune(ctx(t), cutoff)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 12 {
		t.Fatalf("want 12 rows pruned, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
