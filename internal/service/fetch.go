package service

import (
	"context"
	"fmt"

	"charging_console/internal/correlate"
	"charging_console/internal/models"

	"golang.org/x/sync/errgroup"
)

// OverviewData is one committed overview tick: the charger list and the
// derived connector boards, in backend order.
type OverviewData struct {
	Chargers       []models.Charger  `json:"chargers"`
	Boards         []correlate.Board `json:"boards"`
	Total          int               `json:"total"`
	Online         int               `json:"online"`
	ActiveSessions int               `json:"active_sessions"`
}

// DetailData is one committed charger-detail tick. Charger, sessions and
// logs always come from the same tick.
type DetailData struct {
	Charger  models.Charger    `json:"charger"`
	Board    correlate.Board   `json:"board"`
	Sessions []models.Session  `json:"sessions"`
	Logs     []models.LogEntry `json:"logs"`
	LogCount int               `json:"log_count"`
}

func fetchOverview(ctx context.Context, b Backend) (OverviewData, error) {
	chargers, err := b.ListChargers(ctx)
	if err != nil {
		return OverviewData{}, fmt.Errorf("list chargers: %w", err)
	}
	return buildOverview(chargers), nil
}

func buildOverview(chargers []models.Charger) OverviewData {
	out := OverviewData{
		Chargers: chargers,
		Boards:   make([]correlate.Board, 0, len(chargers)),
		Total:    len(chargers),
	}
	if out.Chargers == nil {
		out.Chargers = []models.Charger{}
	}
	for _, ch := range chargers {
		if ch.IsOnline {
			out.Online++
		}
		if ch.ActiveSession != nil {
			out.ActiveSessions++
		}
		out.Boards = append(out.Boards, correlate.BuildBoard(ch, nil))
	}
	return out
}

// fetchDetail issues the three detail requests concurrently. The first failure
// cancels the others and fails the whole set.
func fetchDetail(ctx context.Context, b Backend, chargerID string) (DetailData, error) {
	var (
		ch       models.Charger
		sessions []models.Session
		logs     []models.LogEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if ch, err = b.GetCharger(gctx, chargerID); err != nil {
			return fmt.Errorf("get charger: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if sessions, err = b.ListSessions(gctx, chargerID); err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if logs, err = b.ListLogs(gctx, chargerID); err != nil {
			return fmt.Errorf("list logs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return DetailData{}, err
	}

	if sessions == nil {
		sessions = []models.Session{}
	}
	if logs == nil {
		logs = []models.LogEntry{}
	}
	return DetailData{
		Charger:  ch,
		Board:    correlate.BuildBoard(ch, sessions),
		Sessions: sessions,
		Logs:     logs,
		LogCount: len(logs),
	}, nil
}
