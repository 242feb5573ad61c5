package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charging_console/internal/logger"
	"charging_console/internal/models"
	"charging_console/internal/poller"
	"charging_console/internal/repository"
)

const (
	journalBuffer    = 256
	defaultListLimit = 500
	maxListLimit     = 5000
)

var (
	errInvalidTimeRange = errors.New("invalid time range: from must be <= to")
	errInvalidOutcome   = errors.New("invalid outcome")
	errInvalidLimit     = errors.New("invalid limit")
)

// PollEventFilter supports journal filtering by time range, outcome and view.
type PollEventFilter struct {
	From    time.Time // inclusive; zero means no lower bound
	To      time.Time // inclusive; zero means no upper bound
	Outcome string    // "", "COMMITTED", "DISCARDED", "SKIPPED", "DROPPED"
	View    string    // "", "overview", "charger:<id>"
	Limit   int       // 0 means defaultListLimit
}

type PollLogService struct {
	repo repository.PollEventRepo
}

func NewPollLogService(repo repository.PollEventRepo) *PollLogService {
	return &PollLogService{repo: repo}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeOutcome(s string) (string, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	switch s {
	case "", models.OutcomeCommitted, models.OutcomeDiscarded, models.OutcomeSkipped, models.OutcomeDropped:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", errInvalidOutcome, s)
}

// normalizeAndValidateFilter prepares query parameters and validates them.
func normalizeAndValidateFilter(f PollEventFilter) (repository.PollEventQuery, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.PollEventQuery{}, errInvalidTimeRange
	}

	outcome, err := normalizeOutcome(f.Outcome)
	if err != nil {
		return repository.PollEventQuery{}, err
	}

	limit := f.Limit
	switch {
	case limit < 0 || limit > maxListLimit:
		return repository.PollEventQuery{}, errInvalidLimit
	case limit == 0:
		limit = defaultListLimit
	}

	return repository.PollEventQuery{
		From:    from,
		To:      to,
		Outcome: outcome,
		View:    strings.TrimSpace(f.View),
		Limit:   limit,
	}, nil
}

// IsFilterError reports whether err came from filter validation.
func IsFilterError(err error) bool {
	return errors.Is(err, errInvalidTimeRange) || errors.Is(err, errInvalidOutcome) || errors.Is(err, errInvalidLimit)
}

func (s *PollLogService) List(ctx context.Context, f PollEventFilter) ([]models.PollEvent, error) {
	q, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, q)
}

// PollJournal logs every tick outcome and appends it to the journal. It
// implements poller.Observer; writes happen on the goroutine started by Run
// so poll loops never wait for the database.
type PollJournal struct {
	repo   repository.PollEventRepo
	log    *logger.Logger
	clock  poller.Clock
	events chan models.PollEvent
}

var _ poller.Observer = (*PollJournal)(nil)

func NewPollJournal(repo repository.PollEventRepo, clock poller.Clock, log *logger.Logger) *PollJournal {
	if log == nil {
		log = logger.NewNop()
	}
	return &PollJournal{
		repo:   repo,
		log:    log,
		clock:  clock,
		events: make(chan models.PollEvent, journalBuffer),
	}
}

// Run drains queued events into the repository until ctx is canceled, then
// flushes whatever is still queued.
func (j *PollJournal) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			j.flush()
			return
		case ev := <-j.events:
			j.write(ctx, ev)
		}
	}
}

func (j *PollJournal) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), cacheIOTimeout)
	defer cancel()
	for {
		select {
		case ev := <-j.events:
			j.write(ctx, ev)
		default:
			return
		}
	}
}

func (j *PollJournal) write(ctx context.Context, ev models.PollEvent) {
	if err := j.repo.Append(ctx, ev); err != nil {
		j.log.Errorw("poll_event_append_failed", "view", ev.View, "tick", ev.Tick, "outcome", ev.Outcome, "err", err)
	}
}

func (j *PollJournal) now() time.Time {
	if j.clock != nil {
		return j.clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (j *PollJournal) enqueue(view string, tick uint64, outcome, detail string) {
	ev := models.PollEvent{OccurredAt: j.now(), View: view, Tick: tick, Outcome: outcome, Detail: detail}
	select {
	case j.events <- ev:
	default:
		j.log.Warnw("poll_event_dropped", "view", view, "tick", tick, "outcome", outcome)
	}
}

func (j *PollJournal) TickCommitted(view string, tick uint64, took time.Duration) {
	if j == nil {
		return
	}
	j.log.Debugw("tick_committed", "view", view, "tick", tick, "took", took)
	j.enqueue(view, tick, models.OutcomeCommitted, "")
}

func (j *PollJournal) TickDiscarded(view string, tick uint64, took time.Duration, err error) {
	if j == nil {
		return
	}
	j.log.Warnw("tick_discarded", "view", view, "tick", tick, "took", took, "err", err)
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	j.enqueue(view, tick, models.OutcomeDiscarded, detail)
}

func (j *PollJournal) TickSkipped(view string, outstanding uint64) {
	if j == nil {
		return
	}
	j.log.Debugw("tick_skipped", "view", view, "outstanding", outstanding)
	j.enqueue(view, outstanding, models.OutcomeSkipped, "fetch still in flight")
}

func (j *PollJournal) TickDropped(view string, tick, committed uint64) {
	if j == nil {
		return
	}
	j.log.Infow("tick_dropped", "view", view, "tick", tick, "committed", committed)
	j.enqueue(view, tick, models.OutcomeDropped, fmt.Sprintf("tick %d already committed", committed))
}

// Prune removes journal entries older than retention.
func (j *PollJournal) Prune(ctx context.Context, retention time.Duration) {
	n, err := j.repo.Prune(ctx, j.now().Add(-retention))
	if err != nil {
		j.log.Errorw("poll_event_prune_failed", "err", err)
		return
	}
	if n > 0 {
		j.log.Infow("poll_events_pruned", "rows", n)
	}
}
