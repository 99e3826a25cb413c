package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 30 * time.Second
	readLimit    = 65536
	sendBuffer   = 256
	closeTimeout = 5 * time.Second
)

// Origins are checked by middleware before the upgrade.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection watching one session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	codec     Codec
	send      chan []byte
	stop      func()
	done      chan struct{}
	closeOnce sync.Once
	log       *zap.Logger
}

func newClient(h *Hub, conn *websocket.Conn, sessionID string, codec Codec) *Client {
	return &Client{
		hub:       h,
		conn:      conn,
		sessionID: sessionID,
		codec:     codec,
		send:      make(chan []byte, sendBuffer),
		stop:      func() {},
		done:      make(chan struct{}),
		log:       h.log.With(zap.String("session", sessionID), zap.String("codec", codec.Name())),
	}
}

// close ends the snapshot feed and lets writePump flush and hang up.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.stop()
		close(c.done)
	})
}

// Hub maintains the set of active clients, grouped by session.
type Hub struct {
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	mu         sync.RWMutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		log:        log.Named("ws"),
	}
}

// Run serves registrations until ctx is done, then drops every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.quit)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.sessionID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[c.sessionID] = room
			}
			room[c] = struct{}{}
			size := len(room)
			h.mu.Unlock()
			c.log.Info("client connected", zap.Int("room_size", size))

		case c := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[c.sessionID]; ok {
				if _, ok := room[c]; ok {
					delete(room, c)
					c.log.Info("client disconnected")
				}
				if len(room) == 0 {
					delete(h.rooms, c.sessionID)
				}
			}
			h.mu.Unlock()
			c.close()

		case <-ctx.Done():
			h.mu.Lock()
			for id, room := range h.rooms {
				for c := range room {
					c.close()
				}
				delete(h.rooms, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
		c.close()
	}
}

// RoomSize is the number of clients watching a session.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// BroadcastToSession sends a frame to every client of a session, each in
// its own codec.
func (h *Hub) BroadcastToSession(sessionID string, f Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[sessionID] {
		c.sendFrame(f)
	}
}

// CloseSession sends a final frame to the clients of a session and hangs
// them up.
func (h *Hub) CloseSession(sessionID string, f Frame) int {
	h.mu.Lock()
	room := h.rooms[sessionID]
	delete(h.rooms, sessionID)
	h.mu.Unlock()

	for c := range room {
		c.sendFrame(f)
		c.close()
	}
	return len(room)
}

// sendFrame queues f without blocking. A full buffer drops the frame.
func (c *Client) sendFrame(f Frame) bool {
	data, err := c.codec.Marshal(f)
	if err != nil {
		c.log.Warn("encode frame failed", zap.String("type", f.Type), zap.Error(err))
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		c.log.Debug("send buffer full, dropping frame", zap.String("type", f.Type))
		return false
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendFrame(Frame{Type: FrameError, Message: message})
}

// writePump writes queued frames to the connection and keeps it alive with
// pings. Once the client is closed it flushes what is queued and hangs up.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(c.codec.MessageType(), message); err != nil {
				c.log.Debug("websocket write error", zap.Error(err))
				c.close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug("websocket ping error", zap.Error(err))
				c.close()
				return
			}

		case <-c.done:
			c.flush()
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
				time.Now().Add(closeTimeout))
			return
		}
	}
}

func (c *Client) flush() {
	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(c.codec.MessageType(), message); err != nil {
				return
			}
		default:
			return
		}
	}
}
