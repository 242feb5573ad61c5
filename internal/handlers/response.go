package handlers

import (
	"context"
	"errors"
	"net/http"

	"charging_console/internal/upstream"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errUpstreamNotFound     = "not found"
	errUpstreamUnauthorized = "backend rejected the credentials"
	errUpstreamTimeout      = "backend did not answer in time"
	errUpstreamUnavailable  = "backend unavailable"
	errInvalidBodyPref      = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// upstreamError maps a failed backend call to the status the client sees.
func (h *Handler) upstreamError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	switch {
	case errors.Is(err, upstream.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errUpstreamNotFound})
	case errors.Is(err, upstream.ErrUnauthorized):
		h.logAndJSONError(c, http.StatusUnauthorized, errUpstreamUnauthorized, logKey, err, kv...)
	case errors.Is(err, context.DeadlineExceeded):
		h.logAndJSONError(c, http.StatusGatewayTimeout, errUpstreamTimeout, logKey, err, kv...)
	default:
		h.logAndJSONError(c, http.StatusBadGateway, errUpstreamUnavailable, logKey, err, kv...)
	}
}
