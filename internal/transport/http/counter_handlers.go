package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/core"
)

// CounterHandlers serves the view counter endpoints. The counter tracks
// successful per-subscriber deliveries across all rooms.
type CounterHandlers struct {
	state *core.State
	log   *zerolog.Logger
}

// NewCounterHandlers creates a new counter handlers instance.
func NewCounterHandlers(state *core.State, logger *zerolog.Logger) *CounterHandlers {
	return &CounterHandlers{
		state: state,
		log:   logger,
	}
}

// Views returns the current view count as a decimal plain-text body.
// GET /views
func (h *CounterHandlers) Views(c *gin.Context) {
	c.String(http.StatusOK, strconv.FormatUint(h.state.Views(), 10))
}

// Reset unconditionally sets the view counter back to zero.
// POST /reset
func (h *CounterHandlers) Reset(c *gin.Context) {
	h.state.ResetViews()
	h.log.Info().Msg("view counter reset")
	c.Status(http.StatusOK)
}

// StatsResponse reports delivery counters.
type StatsResponse struct {
	Views       uint64 `json:"views"`
	Dropped     uint64 `json:"dropped"`
	Subscribers int    `json:"subscribers"`
}

// Stats reports the view counter alongside deliveries lost to slow
// consumers and the current subscriber count.
// GET /stats
func (h *CounterHandlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, StatsResponse{
		Views:       h.state.Views(),
		Dropped:     h.state.Bus.Dropped(),
		Subscribers: h.state.Bus.Subscribers(),
	})
}
