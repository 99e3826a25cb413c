package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/neonsnooker/internal/ws"
)

// HandleSessionWebSocket streams a session over a websocket
func HandleSessionWebSocket(hub *ws.Hub, sessions Sessions) gin.HandlerFunc {
	return ws.HandleWebSocket(hub, sessions)
}
