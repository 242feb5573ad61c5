package service

import (
	"context"
	"time"

	"charging_console/internal/logger"
	"charging_console/internal/models"
	"charging_console/internal/poller"
	"charging_console/internal/repository"
)

// Backend is the read side of the charging backend the console mirrors.
type Backend interface {
	ListChargers(ctx context.Context) ([]models.Charger, error)
	GetCharger(ctx context.Context, id string) (models.Charger, error)
	ListSessions(ctx context.Context, chargerID string) ([]models.Session, error)
	ListLogs(ctx context.Context, chargerID string) ([]models.LogEntry, error)
	ListReadings(ctx context.Context, transactionID int) ([]models.Reading, error)
	SystemInfo(ctx context.Context) (models.SystemInfo, error)
}

// AuthBackend is the backend's opaque login capability.
type AuthBackend interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (models.User, error)
}

type Authorization interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (models.User, error)
	ParseToken(accessToken string) (Claims, error)
}

// Views owns the live poll sessions behind every open page.
type Views interface {
	Acquire(key ViewKey) (*Subscription, error)
	Refresh(key ViewKey) error
	Overview(ctx context.Context) (ViewState, error)
	Detail(ctx context.Context, chargerID string) (ViewState, error)
	Live() []string
}

// Telemetry resolves connector sessions and their reading series.
type Telemetry interface {
	ConnectorSession(ctx context.Context, chargerID string, connectorID int) (SessionPanel, error)
	Readings(ctx context.Context, transactionID int) ReadingsPanel
}

// PollLog exposes the tick journal with filtering access.
type PollLog interface {
	List(ctx context.Context, f PollEventFilter) ([]models.PollEvent, error)
}

type System interface {
	Installer(ctx context.Context) (InstallerInfo, error)
}

// ReadingsRecorder is told about every readings fetch.
type ReadingsRecorder interface {
	ReadingsFetched(err error)
}

// Service aggregates all sub-services.
type Service struct {
	Views
	Telemetry
	PollLog
	System
	Authorization
}

// Deps carries everything NewService wires together. Observer and Readings
// may be nil.
type Deps struct {
	Backend     Backend
	AuthBackend AuthBackend
	Repos       *repository.Repository
	Journal     *PollJournal
	Observer    poller.Observer
	Readings    ReadingsRecorder
	LiveViews   LiveViewGauge
	Log         *logger.Logger

	JWTSecret        string
	DetailInterval   time.Duration
	OverviewInterval time.Duration
	FetchTimeout     time.Duration
	OCPPPort         int
	Clock            poller.Clock
}

// NewService wires the backend client and repositories into concrete
// services. ctx bounds the lifetime of every poll session.
func NewService(ctx context.Context, d Deps) *Service {
	views := NewViewManager(ctx, d.Backend, d.Repos.Snapshots, ViewOptions{
		DetailInterval:   d.DetailInterval,
		OverviewInterval: d.OverviewInterval,
		FetchTimeout:     d.FetchTimeout,
		Clock:            d.Clock,
		Observer:         poller.Observers{d.Observer, d.Journal},
		LiveViews:        d.LiveViews,
	}, d.Log)

	return &Service{
		Views:         views,
		Telemetry:     NewTelemetryService(d.Backend, views, d.Readings),
		PollLog:       NewPollLogService(d.Repos.PollEvents),
		System:        NewSystemService(d.Backend, d.OCPPPort),
		Authorization: NewAuthService(d.AuthBackend, d.JWTSecret),
	}
}
