package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/neonsnooker/internal/config"
	"github.com/playmatatu/neonsnooker/internal/game"
)

// GetTable returns the table geometry for a frame size, defaulting to the
// server's frame.
func GetTable(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		width, err := queryDimension(c, "width", cfg.FrameWidth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		height, err := queryDimension(c, "height", cfg.FrameHeight)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, game.NewTable(width, height))
	}
}
