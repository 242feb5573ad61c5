package handlers

import (
	"net/http"
	"strings"

	"charging_console/internal/upstream"

	"github.com/gin-gonic/gin"
)

const (
	ctxUsername = "username"
	ctxRole     = "role"

	errMissingAuth   = "missing Authorization header"
	errInvalidFormat = "invalid Authorization header format"
	errInvalidToken  = "invalid or expired token"
)

// requestToken returns the bearer token of the request, falling back to the
// session cookie. On failure the token is empty and msg says why.
func requestToken(c *gin.Context) (token, msg string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if cookie, err := c.Cookie(upstream.AccessTokenCookie); err == nil && cookie != "" {
			return cookie, ""
		}
		return "", errMissingAuth
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errInvalidFormat
	}
	return parts[1], ""
}

func (h *Handler) authMiddleware(c *gin.Context) {
	token, msg := requestToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}

	claims, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidToken})
		return
	}

	c.Set(ctxUsername, claims.Username())
	c.Set(ctxRole, claims.Role)
	c.Next()
}
