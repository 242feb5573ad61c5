package handlers

import (
	"net/http"

	"charging_console/internal/logger"
	"charging_console/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// StreamGauge is told when a WebSocket view stream opens or closes.
type StreamGauge interface {
	WSConnected()
	WSDisconnected()
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	streams  StreamGauge
	metrics  http.Handler
	origins  map[string]struct{}
}

type Option func(*Handler)

// WithStreamGauge reports WebSocket stream counts to g.
func WithStreamGauge(g StreamGauge) Option {
	return func(h *Handler) { h.streams = g }
}

// WithMetricsHandler serves /metrics from m instead of the default registry.
func WithMetricsHandler(m http.Handler) Option {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log}
	for _, o := range opts {
		o(h)
	}
	if h.metrics == nil {
		h.metrics = promhttp.Handler()
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(h.metrics))

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// live view stream, same port and same credentials as the API
	router.GET("/ws", h.authMiddleware, h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.login)
		auth.POST("/logout", h.logout)
		auth.GET("/me", h.me)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware)
	{
		h.registerViewRoutes(api)
		h.registerSessionRoutes(api)
		api.GET("/system-info", h.systemInfo)
		api.GET("/poll-events", h.getPollEvents)
	}
}

func (h *Handler) registerViewRoutes(api *gin.RouterGroup) {
	api.GET("/views", h.liveViews)
	api.GET("/overview", h.getOverview)
	api.POST("/overview/refresh", h.refreshOverview)

	chargers := api.Group("/chargers")
	{
		chargers.GET("/:id", h.getCharger)
		chargers.POST("/:id/refresh", h.refreshCharger)
		chargers.GET("/:id/connectors/:connectorId/session", h.connectorSession)
	}
}

func (h *Handler) registerSessionRoutes(api *gin.RouterGroup) {
	api.GET("/sessions/:transactionId/readings", h.sessionReadings)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}
