package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"charging_console/internal/models"
	"charging_console/internal/poller"
	"charging_console/internal/repository"
)

const waitFor = 2 * time.Second

func intPtr(v int) *int { return &v }

// backendStub answers every read with the configured function; nil
// functions return zero values.
type backendStub struct {
	ListChargersFn func(ctx context.Context) ([]models.Charger, error)
	GetChargerFn   func(ctx context.Context, id string) (models.Charger, error)
	ListSessionsFn func(ctx context.Context, id string) ([]models.Session, error)
	ListLogsFn     func(ctx context.Context, id string) ([]models.LogEntry, error)
	ListReadingsFn func(ctx context.Context, tx int) ([]models.Reading, error)
	SystemInfoFn   func(ctx context.Context) (models.SystemInfo, error)

	chargerCalls  atomic.Int32
	readingsCalls atomic.Int32
	lastReadingTx atomic.Int64
}

func (b *backendStub) ListChargers(ctx context.Context) ([]models.Charger, error) {
	if b.ListChargersFn == nil {
		return nil, nil
	}
	return b.ListChargersFn(ctx)
}

func (b *backendStub) GetCharger(ctx context.Context, id string) (models.Charger, error) {
	b.chargerCalls.Add(1)
	if b.GetChargerFn == nil {
		return models.Charger{ID: id}, nil
	}
	return b.GetChargerFn(ctx, id)
}

func (b *backendStub) ListSessions(ctx context.Context, id string) ([]models.Session, error) {
	if b.ListSessionsFn == nil {
		return nil, nil
	}
	return b.ListSessionsFn(ctx, id)
}

func (b *backendStub) ListLogs(ctx context.Context, id string) ([]models.LogEntry, error) {
	if b.ListLogsFn == nil {
		return nil, nil
	}
	return b.ListLogsFn(ctx, id)
}

func (b *backendStub) ListReadings(ctx context.Context, tx int) ([]models.Reading, error) {
	b.readingsCalls.Add(1)
	b.lastReadingTx.Store(int64(tx))
	if b.ListReadingsFn == nil {
		return nil, nil
	}
	return b.ListReadingsFn(ctx, tx)
}

func (b *backendStub) SystemInfo(ctx context.Context) (models.SystemInfo, error) {
	if b.SystemInfoFn == nil {
		return models.SystemInfo{}, nil
	}
	return b.SystemInfoFn(ctx)
}

// snapshotRepoStub is an in-memory repository.SnapshotRepo.
type snapshotRepoStub struct {
	mu    sync.Mutex
	items map[string]models.ViewSnapshot
	saves int

	// loads of gated block until gate is closed; each one is announced on loading
	gated   string
	gate    chan struct{}
	loading chan string
}

func newSnapshotRepoStub() *snapshotRepoStub {
	return &snapshotRepoStub{items: make(map[string]models.ViewSnapshot)}
}

func (r *snapshotRepoStub) Save(_ context.Context, s models.ViewSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[s.View] = s
	r.saves++
	return nil
}

func (r *snapshotRepoStub) Load(ctx context.Context, view string) (models.ViewSnapshot, error) {
	if r.gate != nil && view == r.gated {
		r.loading <- view
		select {
		case <-r.gate:
		case <-ctx.Done():
			return models.ViewSnapshot{}, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[view], nil
}

func (r *snapshotRepoStub) get(view string) (models.ViewSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[view]
	return s, ok
}

// pollEventRepoStub records appended events and the last query.
type pollEventRepoStub struct {
	mu       sync.Mutex
	events   []models.PollEvent
	gotQuery repository.PollEventQuery
	listErr  error
	appendCh chan models.PollEvent
	pruned   time.Time
}

func newPollEventRepoStub() *pollEventRepoStub {
	return &pollEventRepoStub{appendCh: make(chan models.PollEvent, 64)}
}

func (r *pollEventRepoStub) Append(_ context.Context, e models.PollEvent) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	r.appendCh <- e
	return nil
}

func (r *pollEventRepoStub) List(_ context.Context, q repository.PollEventQuery) ([]models.PollEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gotQuery = q
	return r.events, r.listErr
}

func (r *pollEventRepoStub) Prune(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruned = before
	return 0, nil
}

// fakeClock hands out tickers the test fires by hand.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers map[*fakeTicker]struct{}
	order   []*fakeTicker
}

type fakeTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) Chan() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()                  { f.stopped.Store(true) }

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		tickers: make(map[*fakeTicker]struct{}),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Ticker(time.Duration) poller.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time)}
	c.tickers[t] = struct{}{}
	c.order = append(c.order, t)
	return t
}

func (c *fakeClock) all() []*fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeTicker(nil), c.order...)
}

func (c *fakeClock) running() int {
	n := 0
	for _, t := range c.all() {
		if !t.stopped.Load() {
			n++
		}
	}
	return n
}

// fire ticks the i-th ticker ever created and waits until its loop took it.
func (c *fakeClock) fire(t *testing.T, i int) {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		if ts := c.all(); len(ts) > i {
			select {
			case ts[i].c <- c.Now():
				return
			case <-deadline:
				t.Fatal("tick not consumed")
			}
		}
		select {
		case <-deadline:
			t.Fatal("ticker never created")
		case <-time.After(time.Millisecond):
		}
	}
}

func nextState(t *testing.T, sub *Subscription) ViewState {
	t.Helper()
	select {
	case st := <-sub.Updates:
		return st
	case <-time.After(waitFor):
		t.Fatalf("no update on %s", sub.Key)
		return ViewState{}
	}
}

// waitTick reads updates until one at or past tick arrives.
func waitTick(t *testing.T, sub *Subscription, tick uint64) ViewState {
	t.Helper()
	for {
		if st := nextState(t, sub); st.Tick >= tick {
			return st
		}
	}
}

// tickRecorder is a poller.Observer that forwards outcomes to a channel.
type tickRecorder struct {
	ch chan string
}

func newTickRecorder() *tickRecorder { return &tickRecorder{ch: make(chan string, 64)} }

func (r *tickRecorder) TickCommitted(view string, _ uint64, _ time.Duration) {
	r.ch <- view + " " + models.OutcomeCommitted
}

func (r *tickRecorder) TickDiscarded(view string, _ uint64, _ time.Duration, _ error) {
	r.ch <- view + " " + models.OutcomeDiscarded
}

func (r *tickRecorder) TickSkipped(view string, _ uint64) {
	r.ch <- view + " " + models.OutcomeSkipped
}

func (r *tickRecorder) TickDropped(view string, _, _ uint64) {
	r.ch <- view + " " + models.OutcomeDropped
}

func (r *tickRecorder) next(t *testing.T) string {
	t.Helper()
	select {
	case s := <-r.ch:
		return s
	case <-time.After(waitFor):
		t.Fatal("no tick outcome observed")
		return ""
	}
}

type gaugeStub struct{ n atomic.Int32 }

func (g *gaugeStub) SetLiveViews(n int) { g.n.Store(int32(n)) }
