package handlers

import (
	"errors"
	"net/http"
	"strings"

	"charging_console/internal/poller"
	"charging_console/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Live views
// @Description  Views that currently have a running poll session.
// @Tags         views
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "live"
// @Router       /api/v1/views [get]
// @Security     BearerAuth
func (h *Handler) liveViews(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"live": h.services.Live()})
}

// @Summary      Charger overview
// @Description  Latest committed overview snapshot; fetched once when no stream holds the view open.
// @Tags         views
// @Produce      json
// @Success      200  {object}  service.ViewState
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/overview [get]
// @Security     BearerAuth
func (h *Handler) getOverview(c *gin.Context) {
	st, err := h.services.Overview(c.Request.Context())
	if err != nil {
		h.upstreamError(c, "overview_fetch_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Charger detail
// @Description  Charger, its sessions and OCPP logs from one committed tick.
// @Tags         views
// @Produce      json
// @Param        id   path      string  true  "Charger id"
// @Success      200  {object}  service.ViewState
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/chargers/{id} [get]
// @Security     BearerAuth
func (h *Handler) getCharger(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	st, err := h.services.Detail(c.Request.Context(), id)
	if err != nil {
		h.upstreamError(c, "charger_fetch_failed", err, "charger_id", id)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Refresh overview
// @Description  Dispatches one fetch outside the cadence. refreshed is false when no stream holds the view open.
// @Tags         views
// @Produce      json
// @Success      202  {object}  map[string]interface{}  "view, refreshed"
// @Router       /api/v1/overview/refresh [post]
// @Security     BearerAuth
func (h *Handler) refreshOverview(c *gin.Context) {
	h.refresh(c, service.OverviewKey())
}

// @Summary      Refresh charger detail
// @Tags         views
// @Produce      json
// @Param        id   path      string  true  "Charger id"
// @Success      202  {object}  map[string]interface{}  "view, refreshed"
// @Router       /api/v1/chargers/{id}/refresh [post]
// @Security     BearerAuth
func (h *Handler) refreshCharger(c *gin.Context) {
	key, err := service.ParseViewKey(service.ViewCharger, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.refresh(c, key)
}

func (h *Handler) refresh(c *gin.Context, key service.ViewKey) {
	err := h.services.Refresh(key)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"view": key.String(), "refreshed": true})
	case errors.Is(err, service.ErrViewNotLive), errors.Is(err, poller.ErrClosed):
		c.JSON(http.StatusAccepted, gin.H{"view": key.String(), "refreshed": false})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to refresh view", "view_refresh_failed", err, "view", key.String())
	}
}
