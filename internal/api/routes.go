package api

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/neonsnooker/internal/api/handlers"
	"github.com/playmatatu/neonsnooker/internal/auth"
	"github.com/playmatatu/neonsnooker/internal/config"
	"github.com/playmatatu/neonsnooker/internal/middleware"
	"github.com/playmatatu/neonsnooker/internal/ws"
	"go.uber.org/zap"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, sessions handlers.Sessions, hub *ws.Hub, cfg *config.Config, log *zap.Logger) {
	router.Use(middleware.CORSMiddleware(cfg, log))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
	}

	router.GET("/health", handlers.HealthCheck(sessions))

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(sessions))
		v1.GET("/config", handlers.GetConfig(cfg))
		v1.GET("/table", handlers.GetTable(cfg))

		s := v1.Group("/sessions")
		{
			s.POST("", handlers.CreateSession(sessions, cfg, log))
			s.GET("/:id", handlers.GetSession(sessions))
			s.GET("/:id/summary", handlers.GetSessionSummary(sessions, log))

			owner := auth.RequireSession(cfg.JWTSecret)
			s.POST("/:id/input", owner, handlers.SendInput(sessions))
			s.DELETE("/:id", owner, handlers.DeleteSession(sessions))
			s.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), owner, handlers.HandleSessionWebSocket(hub, sessions))
		}
	}
}
