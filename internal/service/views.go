package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"charging_console/internal/logger"
	"charging_console/internal/models"
	"charging_console/internal/poller"
	"charging_console/internal/repository"

	"github.com/google/uuid"
)

const (
	ViewOverview = "overview"
	ViewCharger  = "charger"

	cacheIOTimeout = 2 * time.Second
)

var (
	ErrUnknownView    = errors.New("unknown view")
	ErrMissingID      = errors.New("charger view requires an id")
	ErrViewNotLive    = errors.New("view has no live poll session")
	ErrManagerStopped = errors.New("view manager stopped")
)

// ViewKey identifies a view. Two pages open on the same key share one poll
// session.
type ViewKey struct {
	Kind string
	ID   string
}

func OverviewKey() ViewKey { return ViewKey{Kind: ViewOverview} }

func ChargerKey(id string) ViewKey { return ViewKey{Kind: ViewCharger, ID: id} }

// ParseViewKey validates a kind/id pair coming from a client.
func ParseViewKey(kind, id string) (ViewKey, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	id = strings.TrimSpace(id)
	switch kind {
	case ViewOverview, "":
		return OverviewKey(), nil
	case ViewCharger:
		if id == "" {
			return ViewKey{}, ErrMissingID
		}
		return ChargerKey(id), nil
	}
	return ViewKey{}, fmt.Errorf("%w: %q", ErrUnknownView, kind)
}

func (k ViewKey) String() string {
	if k.Kind == ViewCharger {
		return ViewCharger + ":" + k.ID
	}
	return ViewOverview
}

// ViewState is what readers and subscribers see of a committed snapshot.
type ViewState struct {
	View        string    `json:"view"`
	Tick        uint64    `json:"tick"`
	Version     uint64    `json:"version"`
	CommittedAt time.Time `json:"committed_at"`
	Stale       bool      `json:"stale"`
	Live        bool      `json:"live"`
	Data        any       `json:"data"`
}

func stateOf[T any](view string, s poller.Snapshot[T]) ViewState {
	return ViewState{
		View:        view,
		Tick:        s.Tick,
		Version:     s.Version,
		CommittedAt: s.CommittedAt,
		Stale:       s.Stale,
		Live:        true,
		Data:        s.Data,
	}
}

// LiveViewGauge is told how many poll sessions are running.
type LiveViewGauge interface {
	SetLiveViews(n int)
}

type ViewOptions struct {
	DetailInterval   time.Duration
	OverviewInterval time.Duration
	FetchTimeout     time.Duration
	Clock            poller.Clock
	Observer         poller.Observer
	LiveViews        LiveViewGauge
}

// liveView hides the data type of a poll session from the registry.
type liveView interface {
	start(ctx context.Context) error
	close()
	refresh() error
	state() (ViewState, bool)
}

type typedView[T any] struct {
	name string
	sess *poller.Session[T]
}

func (v *typedView[T]) start(ctx context.Context) error { return v.sess.Start(ctx) }
func (v *typedView[T]) close() { v.sess.Close() }
func (v *typedView[T]) refresh() error { return v.sess.Refresh() }

func (v *typedView[T]) state() (ViewState, bool) {
	s, ok := v.sess.Snapshot()
	if !ok {
		return ViewState{}, false
	}
	return stateOf(v.name, s), true
}

type viewEntry struct {
	key  ViewKey
	view liveView
	refs int

	mu   sync.Mutex
	subs map[string]chan ViewState
}

// publish hands st to every subscriber, replacing any state a slow reader
// has not picked up yet.
func (e *viewEntry) publish(st ViewState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs {
		offer(ch, st)
	}
}

func offer(ch chan ViewState, st ViewState) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}

// Subscription is one reader of a live view. Updates carries the latest
// committed state; intermediate states may be skipped for slow readers.
type Subscription struct {
	ID      string
	Key     ViewKey
	Updates <-chan ViewState

	release func()
	once    sync.Once
}

// NewSubscription builds a subscription on key fed by updates. release runs
// once, on the first Close.
func NewSubscription(key ViewKey, updates <-chan ViewState, release func()) *Subscription {
	return &Subscription{ID: uuid.NewString(), Key: key, Updates: updates, release: release}
}

// Close releases the reader's hold on the view. When it was the last one the
// poll session stops.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}

// ViewManager is a reference-counted registry of poll sessions keyed by view.
type ViewManager struct {
	ctx       context.Context
	backend   Backend
	snapshots repository.SnapshotRepo
	opts      ViewOptions
	log       *logger.Logger

	mu     sync.Mutex
	views  map[string]*viewEntry
	closed bool
}

func NewViewManager(ctx context.Context, backend Backend, snapshots repository.SnapshotRepo, opts ViewOptions, log *logger.Logger) *ViewManager {
	if log == nil {
		log = logger.NewNop()
	}
	return &ViewManager{
		ctx:       ctx,
		backend:   backend,
		snapshots: snapshots,
		opts:      opts,
		log:       log,
		views:     make(map[string]*viewEntry),
	}
}

// Acquire subscribes to key, starting its poll session on first use.
func (m *ViewManager) Acquire(key ViewKey) (*Subscription, error) {
	if m.ctx.Err() != nil {
		return nil, ErrManagerStopped
	}
	name := key.String()

	e, live, err := m.join(name)
	if err != nil {
		return nil, err
	}
	if e == nil {
		// seeding reads the cache, so the view is built outside the lock
		v, err := m.newView(key)
		if err != nil {
			return nil, err
		}
		if e, live, err = m.insert(key, v); err != nil {
			return nil, err
		}
	}
	m.setLive(live)

	ch := make(chan ViewState, 1)
	sub := NewSubscription(key, ch, nil)
	sub.release = func() { m.release(e, sub.ID) }
	e.mu.Lock()
	e.subs[sub.ID] = ch
	e.mu.Unlock()

	// new readers start from whatever is already there, seeded or live
	if st, ok := e.view.state(); ok {
		offer(ch, st)
	}
	return sub, nil
}

// join takes a reference on the running view of name, if any.
func (m *ViewManager) join(name string) (*viewEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, 0, ErrManagerStopped
	}
	e, ok := m.views[name]
	if !ok {
		return nil, 0, nil
	}
	e.refs++
	return e, len(m.views), nil
}

// insert registers and starts v unless another Acquire got there first, in
// which case v is dropped unstarted and the existing view is joined.
func (m *ViewManager) insert(key ViewKey, v liveView) (*viewEntry, int, error) {
	name := key.String()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		v.close()
		return nil, 0, ErrManagerStopped
	}
	if e, ok := m.views[name]; ok {
		v.close()
		e.refs++
		return e, len(m.views), nil
	}
	if err := v.start(m.ctx); err != nil {
		return nil, 0, err
	}
	e := &viewEntry{key: key, view: v, refs: 1, subs: make(map[string]chan ViewState)}
	m.views[name] = e
	m.log.Infow("view_started", "view", name)
	return e, len(m.views), nil
}

func (m *ViewManager) release(e *viewEntry, subID string) {
	e.mu.Lock()
	delete(e.subs, subID)
	e.mu.Unlock()

	name := e.key.String()
	m.mu.Lock()
	e.refs--
	last := e.refs <= 0
	if last && m.views[name] == e {
		delete(m.views, name)
	}
	live := len(m.views)
	m.mu.Unlock()

	if last {
		// outside the registry lock: Close waits for the loop, which may be
		// publishing
		e.view.close()
		m.log.Infow("view_stopped", "view", name)
		m.setLive(live)
	}
}

func (m *ViewManager) setLive(n int) {
	if m.opts.LiveViews != nil {
		m.opts.LiveViews.SetLiveViews(n)
	}
}

// Refresh dispatches a one-shot fetch on a live view.
func (m *ViewManager) Refresh(key ViewKey) error {
	m.mu.Lock()
	e, ok := m.views[key.String()]
	m.mu.Unlock()
	if !ok {
		return ErrViewNotLive
	}
	return e.view.refresh()
}

// Live lists the views that currently have a poll session, sorted.
func (m *ViewManager) Live() []string {
	m.mu.Lock()
	out := make([]string, 0, len(m.views))
	for name := range m.views {
		out = append(out, name)
	}
	m.mu.Unlock()
	sort.Strings(out)
	return out
}

// Overview returns the live overview snapshot, or a freshly fetched one when
// no page holds the view open.
func (m *ViewManager) Overview(ctx context.Context) (ViewState, error) {
	key := OverviewKey()
	if st, ok := m.liveState(key); ok {
		return st, nil
	}
	data, err := fetchOverview(ctx, m.backend)
	if err != nil {
		return ViewState{}, err
	}
	return m.oneShot(key, data), nil
}

// Detail is Overview for a single charger.
func (m *ViewManager) Detail(ctx context.Context, chargerID string) (ViewState, error) {
	key := ChargerKey(chargerID)
	if st, ok := m.liveState(key); ok {
		return st, nil
	}
	data, err := fetchDetail(ctx, m.backend, chargerID)
	if err != nil {
		return ViewState{}, err
	}
	return m.oneShot(key, data), nil
}

// detailData returns the charger's current DetailData, from the live view if
// there is one.
func (m *ViewManager) detailData(ctx context.Context, chargerID string) (DetailData, error) {
	st, err := m.Detail(ctx, chargerID)
	if err != nil {
		return DetailData{}, err
	}
	d, ok := st.Data.(DetailData)
	if !ok {
		return DetailData{}, fmt.Errorf("unexpected detail payload %T", st.Data)
	}
	return d, nil
}

func (m *ViewManager) liveState(key ViewKey) (ViewState, bool) {
	m.mu.Lock()
	e, ok := m.views[key.String()]
	m.mu.Unlock()
	if !ok {
		return ViewState{}, false
	}
	return e.view.state()
}

func (m *ViewManager) oneShot(key ViewKey, data any) ViewState {
	return ViewState{View: key.String(), CommittedAt: m.now(), Data: data}
}

func (m *ViewManager) now() time.Time {
	if m.opts.Clock != nil {
		return m.opts.Clock.Now()
	}
	return time.Now()
}

// Close stops every live view. Subscriptions still held become inert.
func (m *ViewManager) Close() {
	m.mu.Lock()
	m.closed = true
	entries := make([]*viewEntry, 0, len(m.views))
	for name, e := range m.views {
		entries = append(entries, e)
		delete(m.views, name)
	}
	m.mu.Unlock()

	for _, e := range entries {
		e.view.close()
	}
	m.setLive(0)
}

func (m *ViewManager) newView(key ViewKey) (liveView, error) {
	switch key.Kind {
	case ViewOverview:
		return newTypedView(m, key, m.opts.OverviewInterval, func(ctx context.Context) (OverviewData, error) {
			return fetchOverview(ctx, m.backend)
		})
	case ViewCharger:
		id := key.ID
		return newTypedView(m, key, m.opts.DetailInterval, func(ctx context.Context) (DetailData, error) {
			return fetchDetail(ctx, m.backend, id)
		})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownView, key.Kind)
}

// newTypedView builds the poll session of key, seeds it from the snapshot
// cache and makes every commit reach subscribers and the cache.
func newTypedView[T any](m *ViewManager, key ViewKey, interval time.Duration, fetch poller.FetchFunc[T]) (*typedView[T], error) {
	name := key.String()
	v := &typedView[T]{name: name}

	sess, err := poller.NewSession(name, fetch, poller.Options{
		Interval:     interval,
		FetchTimeout: m.opts.FetchTimeout,
		Clock:        m.opts.Clock,
		Observer:     m.opts.Observer,
	}, func(s poller.Snapshot[T]) {
		m.mu.Lock()
		e := m.views[name]
		m.mu.Unlock()
		// a released session may still commit once before its loop exits
		if e != nil && e.view == liveView(v) {
			e.publish(stateOf(name, s))
		}
		m.persist(name, s.Tick, s.CommittedAt, s.Data)
	})
	if err != nil {
		return nil, err
	}
	v.sess = sess
	seedFromCache(m, name, sess)
	return v, nil
}

// seedFromCache publishes the last cached snapshot of the view as stale. A
// missing or unreadable cache entry leaves the session empty.
func seedFromCache[T any](m *ViewManager, name string, sess *poller.Session[T]) {
	if m.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, cacheIOTimeout)
	defer cancel()

	cached, err := m.snapshots.Load(ctx, name)
	if err != nil {
		m.log.Warnw("snapshot_load_failed", "view", name, "err", err)
		return
	}
	if cached.Empty() {
		return
	}
	var data T
	if err := json.Unmarshal(cached.Payload, &data); err != nil {
		m.log.Warnw("snapshot_decode_failed", "view", name, "err", err)
		return
	}
	if sess.Seed(data, cached.CommittedAt) {
		m.log.Debugw("view_seeded", "view", name, "cached_tick", cached.Tick, "cached_at", cached.CommittedAt)
	}
}

// persist stores a committed snapshot as the view's last-known-good state.
// Failures are logged only.
func (m *ViewManager) persist(name string, tick uint64, at time.Time, data any) {
	if m.snapshots == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		m.log.Warnw("snapshot_encode_failed", "view", name, "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheIOTimeout)
	defer cancel()

	if err := m.snapshots.Save(ctx, models.ViewSnapshot{
		View:        name,
		Tick:        tick,
		CommittedAt: at,
		Payload:     payload,
	}); err != nil {
		m.log.Warnw("snapshot_save_failed", "view", name, "tick", tick, "err", err)
	}
}
