package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"charging_console/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Connector session
// @Description  Resolves the session bound to a connector and loads its meter readings. Unknown transactions yield a placeholder session.
// @Tags         sessions
// @Produce      json
// @Param        id           path      string  true  "Charger id"
// @Param        connectorId  path      int     true  "Connector index (1..n)"
// @Success      200  {object}  service.SessionPanel
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/chargers/{id}/connectors/{connectorId}/session [get]
// @Security     BearerAuth
func (h *Handler) connectorSession(c *gin.Context) {
	chargerID := c.Param("id")
	connectorID, err := strconv.Atoi(c.Param("connectorId"))
	if err != nil || connectorID < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "connectorId must be a non-negative integer"})
		return
	}

	panel, err := h.services.ConnectorSession(c.Request.Context(), chargerID, connectorID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, panel)
	case errors.Is(err, service.ErrConnectorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotActionable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.upstreamError(c, "connector_session_failed", err, "charger_id", chargerID, "connector_id", connectorID)
	}
}

// @Summary      Session readings
// @Description  Meter readings of a transaction grouped into series. A failed fetch still answers 200 with an error field and no series.
// @Tags         sessions
// @Produce      json
// @Param        transactionId  path      int  true  "Transaction id"
// @Success      200  {object}  service.ReadingsPanel
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/sessions/{transactionId}/readings [get]
// @Security     BearerAuth
func (h *Handler) sessionReadings(c *gin.Context) {
	tx, err := strconv.Atoi(c.Param("transactionId"))
	if err != nil || tx <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transactionId must be a positive integer"})
		return
	}
	panel := h.services.Readings(c.Request.Context(), tx)
	if panel.Error != "" && h.log != nil {
		h.log.Warnw("session_readings_failed", "transaction_id", tx)
	}
	c.JSON(http.StatusOK, panel)
}

// @Summary      Installer info
// @Description  Address a new charger should be configured with.
// @Tags         system
// @Produce      json
// @Success      200  {object}  service.InstallerInfo
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/system-info [get]
// @Security     BearerAuth
func (h *Handler) systemInfo(c *gin.Context) {
	info, err := h.services.Installer(c.Request.Context())
	if err != nil {
		h.upstreamError(c, "system_info_failed", err)
		return
	}
	c.JSON(http.StatusOK, info)
}
