package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/neonsnooker/internal/game"
	"go.uber.org/zap"
)

// Sessions is the part of the session manager the websocket layer needs.
type Sessions interface {
	Get(id string) (*game.ManagedSession, error)
	Send(ctx context.Context, id string, in game.Input) error
}

// HandleWebSocket upgrades a request for the session named by :id and
// streams its snapshots. The token is checked by middleware beforehand.
func HandleWebSocket(h *Hub, sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		codec, err := CodecFor(c.Query("codec"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ms, err := sessions.Get(id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("upgrade error", zap.String("session", id), zap.Error(err))
			return
		}

		client := newClient(h, conn, id, codec)
		snaps, stop := ms.Runner().Subscribe()
		client.stop = stop
		if !h.Register(client) {
			stop()
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump(sessions)
		go client.forward(snaps)
	}
}

// forward relays snapshots until the runner or the client goes away. A
// runner that stops means the session ended.
func (c *Client) forward(snaps <-chan game.Snapshot) {
	for snap := range snaps {
		c.sendFrame(Frame{Type: FrameSnapshot, Data: snap})
	}
	select {
	case <-c.done:
	default:
		c.sendFrame(Frame{Type: FrameEvent, Data: closedEvent(c.sessionID, "")})
		c.hub.Unregister(c)
	}
}

// readPump turns client messages into session input.
func (c *Client) readPump(sessions Sessions) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg ClientMessage
		if err := c.codec.Unmarshal(message, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}
		if !c.handleMessage(sessions, msg) {
			return
		}
	}
}

// handleMessage returns false when the session is gone.
func (c *Client) handleMessage(sessions Sessions, msg ClientMessage) bool {
	in, err := msg.Input()
	if err != nil {
		c.sendError(err.Error())
		return true
	}
	err = sessions.Send(context.Background(), c.sessionID, in)
	switch {
	case err == nil:
	case errors.Is(err, game.ErrSessionNotFound), errors.Is(err, game.ErrSessionClosed):
		c.sendError("session not found")
		return false
	default:
		c.sendError(err.Error())
	}
	return true
}
