package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/neonsnooker/internal/auth"
	"github.com/playmatatu/neonsnooker/internal/config"
	"github.com/playmatatu/neonsnooker/internal/game"
	"github.com/playmatatu/neonsnooker/internal/models"
	"github.com/playmatatu/neonsnooker/internal/store"
	"go.uber.org/zap"
)

// Sessions is the session manager as the HTTP layer sees it.
type Sessions interface {
	SessionCounter
	Create(ctx context.Context, mode game.Mode) (*game.ManagedSession, error)
	Get(id string) (*game.ManagedSession, error)
	Send(ctx context.Context, id string, in game.Input) error
	Snapshot(ctx context.Context, id string) (*game.Snapshot, error)
	Summary(ctx context.Context, id string) (*models.SessionSummary, error)
	Close(ctx context.Context, id, reason string) error
}

// CreateSession starts a session and hands back the token that controls it.
func CreateSession(sessions Sessions, cfg *config.Config, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Mode int `json:"mode"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}

		ms, err := sessions.Create(c.Request.Context(), game.Mode(req.Mode))
		switch {
		case errors.Is(err, game.ErrInvalidMode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be 1, 2 or 3"})
			return
		case errors.Is(err, game.ErrTooManySessions):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is full, try again later"})
			return
		case err != nil:
			log.Error("create session failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		token, err := auth.Issue(cfg.JWTSecret, ms.ID, cfg.SessionTTL())
		if err != nil {
			log.Error("sign session token failed", zap.String("session", ms.ID), zap.Error(err))
			sessions.Close(c.Request.Context(), ms.ID, game.EndReasonClosed)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"session_id": ms.ID,
			"token":      token,
			"expires_at": ms.ExpiresAt,
			"ws_url":     wsURL(c, ms.ID, token),
		})
	}
}

// GetSession returns the latest snapshot of a session.
func GetSession(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := sessions.Snapshot(c.Request.Context(), c.Param("id"))
		if errors.Is(err, game.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// GetSessionSummary returns the recorded pot history of a session.
func GetSessionSummary(sessions Sessions, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		summary, err := sessions.Summary(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if err != nil {
			log.Warn("session summary failed", zap.String("session", id), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session history unavailable"})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// SendInput queues one input for a session, for clients that poll instead
// of holding a websocket open.
func SendInput(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in game.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
			return
		}
		switch in.Kind {
		case game.InputPointer, game.InputClick, game.InputKey, game.InputForce, game.InputMode:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown input type"})
			return
		}

		err := sessions.Send(c.Request.Context(), c.Param("id"), in)
		switch {
		case err == nil:
			c.Status(http.StatusAccepted)
		case errors.Is(err, game.ErrSessionNotFound), errors.Is(err, game.ErrSessionClosed):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, game.ErrInboxFull):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too much input, slow down"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
	}
}

// DeleteSession ends a session.
func DeleteSession(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := sessions.Close(c.Request.Context(), c.Param("id"), game.EndReasonClosed)
		if errors.Is(err, game.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
