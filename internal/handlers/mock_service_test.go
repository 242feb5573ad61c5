package handlers

import (
	"context"
	"net/http"
	"sync"

	"charging_console/internal/models"
	"charging_console/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ---- Service Mocks ----

type mockAuth struct {
	loginToken string
	loginErr   error
	logoutErr  error
	meUser     models.User
	meErr      error
	parseErr   error
	claims     service.Claims

	lastLoginUsername string
	lastLoginPassword string
	lastLogoutToken   string
	lastMeToken       string
	lastParseToken    string
}

func (m *mockAuth) Login(_ context.Context, username, password string) (string, error) {
	m.lastLoginUsername = username
	m.lastLoginPassword = password
	return m.loginToken, m.loginErr
}
func (m *mockAuth) Logout(_ context.Context, token string) error {
	m.lastLogoutToken = token
	return m.logoutErr
}
func (m *mockAuth) Me(_ context.Context, token string) (models.User, error) {
	m.lastMeToken = token
	return m.meUser, m.meErr
}
func (m *mockAuth) ParseToken(token string) (service.Claims, error) {
	m.lastParseToken = token
	return m.claims, m.parseErr
}

// mockViews hands out subscriptions fed by per-view channels the test writes to.
type mockViews struct {
	mu         sync.Mutex
	feeds      map[string]chan service.ViewState
	acquired   []string
	released   []string
	refreshed  []string
	acquireErr error
	refreshErr error

	overview  service.ViewState
	detail    service.ViewState
	fetchErr  error
	lastID    string
	liveViews []string
}

func newMockViews() *mockViews {
	return &mockViews{feeds: make(map[string]chan service.ViewState)}
}

func (m *mockViews) feed(name string) chan service.ViewState {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.feeds[name]
	if !ok {
		ch = make(chan service.ViewState, 4)
		m.feeds[name] = ch
	}
	return ch
}

func (m *mockViews) Acquire(key service.ViewKey) (*service.Subscription, error) {
	if m.acquireErr != nil {
		return nil, m.acquireErr
	}
	name := key.String()
	ch := m.feed(name)
	m.mu.Lock()
	m.acquired = append(m.acquired, name)
	m.mu.Unlock()
	return service.NewSubscription(key, ch, func() {
		m.mu.Lock()
		m.released = append(m.released, name)
		m.mu.Unlock()
	}), nil
}

func (m *mockViews) Refresh(key service.ViewKey) error {
	m.mu.Lock()
	m.refreshed = append(m.refreshed, key.String())
	m.mu.Unlock()
	return m.refreshErr
}

func (m *mockViews) Overview(context.Context) (service.ViewState, error) {
	return m.overview, m.fetchErr
}

func (m *mockViews) Detail(_ context.Context, chargerID string) (service.ViewState, error) {
	m.lastID = chargerID
	return m.detail, m.fetchErr
}

func (m *mockViews) Live() []string { return m.liveViews }

func (m *mockViews) snapshot() (acquired, released, refreshed []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acquired...), append([]string(nil), m.released...), append([]string(nil), m.refreshed...)
}

type mockTelemetry struct {
	panel    service.SessionPanel
	err      error
	readings service.ReadingsPanel

	lastCharger   string
	lastConnector int
	lastTx        int
}

func (m *mockTelemetry) ConnectorSession(_ context.Context, chargerID string, connectorID int) (service.SessionPanel, error) {
	m.lastCharger = chargerID
	m.lastConnector = connectorID
	return m.panel, m.err
}

func (m *mockTelemetry) Readings(_ context.Context, tx int) service.ReadingsPanel {
	m.lastTx = tx
	return m.readings
}

type mockPollLog struct {
	resp []models.PollEvent
	err  error
	last service.PollEventFilter
}

func (m *mockPollLog) List(_ context.Context, f service.PollEventFilter) ([]models.PollEvent, error) {
	m.last = f
	return m.resp, m.err
}

type mockSystem struct {
	info service.InstallerInfo
	err  error
}

func (m *mockSystem) Installer(context.Context) (service.InstallerInfo, error) {
	return m.info, m.err
}

// ---- Shared Test Helpers ----

func validAuth() *mockAuth {
	return &mockAuth{claims: service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "admin"},
		Role:             "admin",
	}}
}

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
