package handlers

import (
	"errors"
	"net/http"
	"time"

	"charging_console/internal/service"
	"charging_console/internal/upstream"

	"github.com/gin-gonic/gin"
)

const sessionCookieMaxAge = int(12 * time.Hour / time.Second)

type loginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"secret"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}

func setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(upstream.AccessTokenCookie, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

// @Summary      Log in
// @Description  Forwards the credentials to the backend and stores the issued token in the access_token cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  map[string]string  "token"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input loginRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.Login(c.Request.Context(), input.Username, input.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, upstream.ErrUnauthorized):
		if h.log != nil {
			h.log.Infow("auth_login_failed", "username", input.Username, "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	default:
		h.upstreamError(c, "auth_login_upstream_failed", err, "username", input.Username)
		return
	}

	setSessionCookie(c, token, sessionCookieMaxAge)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	if token, _ := requestToken(c); token != "" {
		if err := h.services.Logout(c.Request.Context(), token); err != nil && h.log != nil {
			h.log.Infow("auth_logout_upstream_failed", "err", err)
		}
	}
	setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  models.User
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *Handler) me(c *gin.Context) {
	token, msg := requestToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}
	user, err := h.services.Me(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, upstream.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidToken})
			return
		}
		h.upstreamError(c, "auth_me_failed", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
