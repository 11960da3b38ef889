package http

import (
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/config"
	"github.com/chatrelay/chatrelay-server/internal/core"
)

// WSHandlers upgrades HTTP connections into websocket sessions.
type WSHandlers struct {
	state           *core.State
	limiter         *rateLimiter
	maxMessageChars int
	log             *zerolog.Logger
}

// NewWSHandlers builds the websocket handlers.
func NewWSHandlers(state *core.State, cfg config.Config, logger *zerolog.Logger) *WSHandlers {
	return &WSHandlers{
		state:           state,
		limiter:         newRateLimiter(cfg.WSConnsPerMinute),
		maxMessageChars: cfg.MaxMessageChars,
		log:             logger,
	}
}

// accept applies the connection limit and upgrades the request. A nil
// connection means the response has already been written.
func (h *WSHandlers) accept(c *gin.Context) *websocket.Conn {
	if !h.limiter.allow() {
		c.JSON(stdhttp.StatusTooManyRequests, ErrorResponse{Error: "connection limit reached"})
		return nil
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return nil
	}
	return conn
}
