package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Frames outside these limits produce a table too small to play on or
// geometry no client can draw.
const (
	minFrameSize = 200
	maxFrameSize = 4000
)

// queryDimension parses a frame dimension from the query string.
func queryDimension(c *gin.Context, key string, fallback float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < minFrameSize || v > maxFrameSize {
		return 0, fmt.Errorf("%s must be a number between %d and %d", key, minFrameSize, maxFrameSize)
	}
	return v, nil
}

// wsURL builds the websocket address for a session relative to the
// request's host.
func wsURL(c *gin.Context, sessionID, token string) string {
	scheme := "ws"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s/api/v1/sessions/%s/ws?token=%s", scheme, c.Request.Host, sessionID, token)
}
