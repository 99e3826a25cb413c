package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/neonsnooker/internal/config"
	"github.com/playmatatu/neonsnooker/internal/game"
)

// GetConfig returns the values a client needs to draw and drive a session
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"frame_width":         cfg.FrameWidth,
			"frame_height":        cfg.FrameHeight,
			"tick_rate":           cfg.TickRate,
			"modes":               []game.Mode{game.ModeStandard, game.ModeRandomReds, game.ModeRandomBalls},
			"min_force_increment": game.MinForceIncrement,
			"max_force_increment": game.MaxForceIncrement,
			"codecs":              []string{"json", "msgpack"},
		})
	}
}
