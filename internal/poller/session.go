// Package poller keeps one view's data fresh by refetching it on a fixed
// cadence and publishing each fully successful fetch as an immutable snapshot.
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// maxInFlight bounds concurrent fetches: one timer tick plus one manual
// refresh. Refreshes beyond that collapse into a single queued dispatch.
const maxInFlight = 2

var (
	ErrClosed          = errors.New("poller: session closed")
	ErrAlreadyStarted  = errors.New("poller: session already started")
	errInvalidInterval = errors.New("poller: interval must be positive")
)

// FetchFunc loads one complete snapshot of a view. It either returns the
// whole result or an error; partial data is never committed.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Snapshot is a committed view state. Stale is set on seeded snapshots that
// did not come from a live fetch of this session.
type Snapshot[T any] struct {
	Tick        uint64    `json:"tick"`
	Version     uint64    `json:"version"`
	Data        T         `json:"data"`
	CommittedAt time.Time `json:"committed_at"`
	Stale       bool      `json:"stale"`
}

// Options tunes a Session. Zero FetchTimeout means fetches are bounded only by
// the session lifetime.
type Options struct {
	Interval     time.Duration
	FetchTimeout time.Duration
	Clock        Clock
	Observer     Observer
}

type result[T any] struct {
	tick uint64
	data T
	err  error
	took time.Duration
}

// Session is the poll loop of a single view. All state transitions happen on
// the owner goroutine started by Start; readers only ever load the published
// snapshot pointer.
type Session[T any] struct {
	name     string
	fetch    FetchFunc[T]
	opts     Options
	onCommit func(Snapshot[T])

	snap atomic.Pointer[Snapshot[T]]

	results chan result[T]
	refresh chan struct{}
	done    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startOnce sync.Once
	closeOnce sync.Once
	started   atomic.Bool
	closed    atomic.Bool
}

// NewSession builds a stopped session named name. onCommit, if not nil, is
// called on the owner goroutine after every commit.
func NewSession[T any](name string, fetch FetchFunc[T], opts Options, onCommit func(Snapshot[T])) (*Session[T], error) {
	if opts.Interval <= 0 {
		return nil, errInvalidInterval
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Session[T]{
		name:     name,
		fetch:    fetch,
		opts:     opts,
		onCommit: onCommit,
		results:  make(chan result[T]),
		refresh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Name returns the view identity the session was created for.
func (s *Session[T]) Name() string { return s.name }

// Start dispatches the first fetch immediately and then one per interval
// until ctx is canceled or Close is called.
func (s *Session[T]) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	err := ErrAlreadyStarted
	s.startOnce.Do(func() {
		s.ctx, s.cancel = context.WithCancel(ctx)
		s.started.Store(true)
		go s.run()
		err = nil
	})
	return err
}

// Close stops the timer, cancels outstanding fetches and waits for the loop
// and its fetch goroutines to exit. Results that arrive afterwards are
// ignored. Close is idempotent.
func (s *Session[T]) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		// a Start racing with Close either sees closed or is consumed here
		s.startOnce.Do(func() {})
		if !s.started.Load() {
			close(s.done)
			return
		}
		s.cancel()
		<-s.done
		s.wg.Wait()
	})
}

// Done is closed once the loop has exited.
func (s *Session[T]) Done() <-chan struct{} { return s.done }

// Refresh asks for one fetch outside the cadence. The timer is neither reset
// nor duplicated. A refresh requested while another is still pending, or
// while maxInFlight fetches are outstanding, is coalesced into one fetch
// dispatched when a slot frees up.
func (s *Session[T]) Refresh() error {
	if s.closed.Load() {
		return ErrClosed
	}
	select {
	case s.refresh <- struct{}{}:
	default:
	}
	return nil
}

// Snapshot returns the latest committed state.
func (s *Session[T]) Snapshot() (Snapshot[T], bool) {
	p := s.snap.Load()
	if p == nil {
		return Snapshot[T]{}, false
	}
	return *p, true
}

// Seed publishes data as a stale snapshot so readers have something to show
// before the first live tick. It is a no-op once anything was published.
func (s *Session[T]) Seed(data T, at time.Time) bool {
	return s.snap.CompareAndSwap(nil, &Snapshot[T]{Data: data, CommittedAt: at, Stale: true})
}

func (s *Session[T]) run() {
	ticker := s.opts.Clock.Ticker(s.opts.Interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	var (
		lastTick  uint64
		committed uint64
		version   uint64
		inFlight  int
		queued    bool
	)
	if p := s.snap.Load(); p != nil {
		version = p.Version
	}

	dispatch := func() {
		lastTick++
		inFlight++
		s.wg.Add(1)
		go s.fetchOnce(lastTick)
	}

	dispatch()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.Chan():
			if inFlight > 0 {
				s.opts.Observer.TickSkipped(s.name, lastTick)
				continue
			}
			dispatch()
		case <-s.refresh:
			if inFlight >= maxInFlight {
				queued = true
				continue
			}
			dispatch()
		case r := <-s.results:
			inFlight--
			if s.ctx.Err() != nil {
				return
			}
			if queued {
				queued = false
				dispatch()
			}
			if r.err != nil {
				s.opts.Observer.TickDiscarded(s.name, r.tick, r.took, r.err)
				continue
			}
			if r.tick < committed {
				s.opts.Observer.TickDropped(s.name, r.tick, committed)
				continue
			}
			committed = r.tick
			version++
			snap := &Snapshot[T]{
				Tick:        r.tick,
				Version:     version,
				Data:        r.data,
				CommittedAt: s.opts.Clock.Now(),
			}
			s.snap.Store(snap)
			s.opts.Observer.TickCommitted(s.name, r.tick, r.took)
			if s.onCommit != nil {
				s.onCommit(*snap)
			}
		}
	}
}

func (s *Session[T]) fetchOnce(tick uint64) {
	defer s.wg.Done()

	ctx := s.ctx
	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}

	start := s.opts.Clock.Now()
	data, err := s.fetch(ctx)
	r := result[T]{tick: tick, data: data, err: err, took: s.opts.Clock.Now().Sub(start)}

	select {
	case s.results <- r:
	case <-s.ctx.Done():
	}
}
