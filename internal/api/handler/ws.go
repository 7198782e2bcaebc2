package handler

import (
	"context"
	"net/http"
	"time"

	"footybot/backend/internal/logging"
	"footybot/backend/internal/roster"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeFeed upgrades to a WebSocket and streams the chat's roster events as
// JSON until either side goes away. Admin only.
func (h *Handler) ServeFeed(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if !h.Roster.IsAdmin(ctx, chatID, userIDFrom(c)) {
		abortRosterError(c, roster.ErrUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		l := logging.Ctx(ctx)
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, closeFeed, err := h.Feed.Subscribe(ctx, chatID)
	if err != nil {
		l := logging.Ctx(ctx)
		l.Error().Err(err).Int64(logging.FieldChatID, chatID).Msg("failed to subscribe to roster events")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "feed unavailable"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	defer closeFeed()

	go readPump(conn, cancel)
	writePump(ctx, conn, events)
}

// readPump discards client frames and keeps the read deadline fresh. It
// cancels the feed when the client disconnects.
func readPump(conn *websocket.Conn, cancel func()) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(ctx context.Context, conn *websocket.Conn, events <-chan roster.Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case event, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
