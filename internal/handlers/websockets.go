package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"charging_console/internal/poller"
	"charging_console/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	wsTypeState   = "state"
	wsTypeError   = "error"
	wsTypeView    = "view"
	wsTypeRefresh = "refresh"
)

// Envelope used for server to client messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// wsCommand is a client message. {"type":"view","view":"charger","id":"CP-1"}
// switches the stream to another view, {"type":"refresh"} asks for a fetch
// outside the cadence.
type wsCommand struct {
	Type string `json:"type"`
	View string `json:"view,omitempty"`
	ID   string `json:"id,omitempty"`
}

// WithAllowedOrigins restricts the Origin a browser may open the stream from.
// Without it every origin is accepted.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) {
		h.origins = make(map[string]struct{}, len(origins))
		for _, o := range origins {
			h.origins[o] = struct{}{}
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.origins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, ok := h.origins[origin]
	return ok
}

// @Summary      Live view stream
// @Description  WebSocket. Sends {"type":"state","data":ViewState} on every commit of the selected view.
// @Tags         views
// @Param        view  query  string  false  "overview (default) or charger"
// @Param        id    query  string  false  "Charger id when view=charger"
// @Router       /ws [get]
// @Security     BearerAuth
func (h *Handler) wsConnect(c *gin.Context) {
	key, err := service.ParseViewKey(c.Query("view"), c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sub, err := h.services.Acquire(key)
	if err != nil {
		h.logAndJSONError(c, http.StatusServiceUnavailable, "live view unavailable", "ws_acquire_failed", err, "view", key.String())
		return
	}
	defer func() { sub.Close() }()

	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	if h.streams != nil {
		h.streams.WSConnected()
		defer h.streams.WSDisconnected()
	}

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	quit := make(chan struct{})
	defer close(quit)
	cmds := make(chan wsCommand, 4)
	go h.startReader(conn, cmds, done, quit)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case st := <-sub.Updates:
			if err := writeEnvelope(conn, wsEnvelope{Type: wsTypeState, Data: st}); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "view", sub.Key.String(), "err", err)
				}
				return
			}
		case cmd := <-cmds:
			next, err := h.handleCommand(sub, cmd)
			if err != nil {
				if werr := writeEnvelope(conn, wsEnvelope{Type: wsTypeError, Error: err.Error()}); werr != nil {
					return
				}
				continue
			}
			sub = next
		}
	}
}

// handleCommand applies a client command and returns the subscription the
// stream continues on. A view switch releases the previous view.
func (h *Handler) handleCommand(sub *service.Subscription, cmd wsCommand) (*service.Subscription, error) {
	switch cmd.Type {
	case wsTypeView:
		key, err := service.ParseViewKey(cmd.View, cmd.ID)
		if err != nil {
			return sub, err
		}
		if key == sub.Key {
			return sub, nil
		}
		next, err := h.services.Acquire(key)
		if err != nil {
			return sub, err
		}
		sub.Close()
		if h.log != nil {
			h.log.Debugw("ws_view_switched", "view", key.String())
		}
		return next, nil
	case wsTypeRefresh:
		err := h.services.Refresh(sub.Key)
		if err != nil && !errors.Is(err, service.ErrViewNotLive) && !errors.Is(err, poller.ErrClosed) {
			return sub, err
		}
		return sub, nil
	}
	return sub, errors.New("unknown message type")
}

// startReader decodes client commands until the connection closes.
func (h *Handler) startReader(conn *websocket.Conn, cmds chan<- wsCommand, done chan<- struct{}, quit <-chan struct{}) {
	defer close(done)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		var cmd wsCommand
		if err := json.Unmarshal(msg, &cmd); err != nil {
			cmd = wsCommand{}
		}
		select {
		case cmds <- cmd:
		case <-quit:
			return
		}
	}
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
