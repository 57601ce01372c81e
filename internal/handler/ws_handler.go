package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/preptly/cbt-gateway/internal/middleware"
	"github.com/preptly/cbt-gateway/internal/session"
	ws "github.com/preptly/cbt-gateway/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live session snapshots and accepts exam actions
// over a single WebSocket, so the client sees the countdown move and
// an expiry-triggered submission without polling.
type WSHandler struct {
	manager  *session.Manager
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(manager *session.Manager, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		manager:  manager,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/quiz/stream?token=...
// Pushes a snapshot once per second and after every action frame.
func (h *WSHandler) SessionStream(c *gin.Context) {
	userID := middleware.GetUserID(c)
	ctrl, ok := h.manager.Get(userID, middleware.TokenSource(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().Str("user_id", userID).Logger()
	wsLog.Info().Msg("Client connected")

	// Tick streamer: one snapshot per second mirrors the countdown.
	done := make(chan struct{})
	defer close(done)
	go h.streamTicks(conn, ctrl, done)

	conn.WriteState(ctrl.Snapshot())

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}
		h.handleAction(conn, ctrl, &msg, wsLog)
	}
}

func (h *WSHandler) streamTicks(conn *ws.Conn, ctrl *session.Controller, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteState(ctrl.Snapshot()); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) handleAction(conn *ws.Conn, ctrl *session.Controller, msg *ws.RequestPayload, wsLog zerolog.Logger) {
	ctx := context.Background()

	var err error
	switch msg.Action {
	case ws.ActionAnswer:
		err = ctrl.SelectAnswer(ctx, msg.QuestionID, msg.Option)
	case ws.ActionNext:
		err = ctrl.Next()
	case ws.ActionPrev:
		err = ctrl.Prev()
	case ws.ActionJump:
		err = ctrl.Jump(msg.Index)
	case ws.ActionSubject:
		err = ctrl.SwitchSubject(msg.Subject)
	case ws.ActionKey:
		err = ctrl.Key(ctx, msg.Key)
	case ws.ActionSubmit:
		err = ctrl.Submit(ctx)
	case ws.ActionPing:
		conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		return
	default:
		wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		conn.WriteError("unknown action: " + string(msg.Action))
		return
	}

	if err != nil {
		conn.WriteError(err.Error())
	}
	conn.WriteState(ctrl.Snapshot())
}
