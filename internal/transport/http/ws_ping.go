package http

import (
	"context"
	"strings"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Ping runs the serve/ping/pong session. The client must send "serve"
// before "ping" frames are answered with "pong"; everything else is
// ignored. No state is shared with other connections.
// GET /ws/ping
func (h *WSHandlers) Ping(c *gin.Context) {
	conn := h.accept(c)
	if conn == nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	connID := uuid.NewString()
	log := h.log.With().Str("conn_id", connID).Logger()
	log.Info().Msg("ping session started")

	h.runPingSession(c.Request.Context(), conn, &log)

	conn.Close(websocket.StatusNormalClosure, "closing")
	log.Info().Msg("ping session finished")
}

func (h *WSHandlers) runPingSession(ctx context.Context, conn *websocket.Conn, log *zerolog.Logger) {
	started := false
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Info().Msg("ping session closed by peer")
			} else {
				log.Warn().Err(err).Msg("ping session read error")
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		switch strings.TrimSpace(string(data)) {
		case "serve":
			started = true
		case "ping":
			if !started {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, []byte("pong")); err != nil {
				log.Error().Err(err).Msg("write pong")
				return
			}
		}
	}
}
