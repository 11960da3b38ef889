package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"strconv"
	"unicode/utf8"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/core"
)

// roomMessage is the inbound chat payload.
type roomMessage struct {
	Message string `json:"message"`
}

// Room bridges one websocket connection to the broadcast bus for a
// (room, user) pair. Inbound frames are published to the bus; bus
// messages for the same room are written back out. The two loops run
// concurrently and whichever finishes first tears down the other, so a
// client disconnect frees both halves promptly.
// GET /ws/room/:room_id/user/:user
func (h *WSHandlers) Room(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("room_id"), 10, 64)
	if err != nil {
		c.JSON(stdhttp.StatusBadRequest, ErrorResponse{Error: "room_id must be an unsigned integer"})
		return
	}
	user := c.Param("user")

	conn := h.accept(c)
	if conn == nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	sub := h.state.Bus.Subscribe()
	defer sub.Close()

	log := h.log.With().
		Str("conn_id", uuid.NewString()).
		Uint64("room", roomID).
		Str("user", user).
		Logger()
	log.Info().Msg("chatroom session started")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readFromClient(ctx, conn, roomID, user, &log)
	}()
	go func() {
		errCh <- h.writeToClient(ctx, conn, sub, roomID, &log)
	}()

	err = <-errCh
	cancel() // stop the sibling loop
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		switch s := websocket.CloseStatus(err); {
		case s == websocket.StatusNormalClosure, s == websocket.StatusGoingAway:
			// clean shutdown initiated by the peer
		case s != -1:
			status = s
			reason = err.Error()
			log.Warn().Err(err).Msg("chatroom session closed with error")
		default:
			// transport failure without a close frame
			status = websocket.StatusInternalError
			reason = err.Error()
			log.Warn().Err(err).Msg("chatroom session read error")
		}
	}

	conn.Close(status, reason)
	log.Info().Msg("chatroom session finished")
}

// readFromClient is the inbound duty: client frames become bus messages.
// Malformed payloads, oversize messages, and publishes into an empty bus
// are logged and skipped without ending the session.
func (h *WSHandlers) readFromClient(ctx context.Context, conn *websocket.Conn, roomID uint64, user string, log *zerolog.Logger) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Info().Msg("peer closed chatroom session")
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		var in roomMessage
		if err := json.Unmarshal(data, &in); err != nil {
			log.Warn().Err(err).Msg("malformed chat payload")
			continue
		}
		if n := utf8.RuneCountInString(in.Message); n > h.maxMessageChars {
			log.Warn().Int("chars", n).Msg("message too long, dropped")
			continue
		}

		msg := core.ChatMessage{
			Room: roomID,
			Body: core.ChatMessageBody{User: user, Message: in.Message},
		}
		if err := h.state.Bus.Publish(msg); err != nil {
			log.Warn().Err(err).Msg("publish failed")
		}
	}
}

// writeToClient is the outbound duty: bus messages for this room are
// serialized and written to the client. A write failure is logged and the
// loop keeps going; each successful write counts as one view.
func (h *WSHandlers) writeToClient(ctx context.Context, conn *websocket.Conn, sub *core.Subscription, roomID uint64, log *zerolog.Logger) error {
	for {
		select {
		case msg, ok := <-sub.C():
			if !ok {
				return nil
			}
			if msg.Room != roomID {
				continue
			}

			data, err := json.Marshal(msg.Body)
			if err != nil {
				log.Error().Err(err).Msg("serialize chat message")
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				log.Warn().Err(err).Msg("write chat message")
				continue
			}
			h.state.AddView()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
