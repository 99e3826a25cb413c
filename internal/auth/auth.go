// Package auth issues and checks the bearer tokens that bind a client to
// one session.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// Issue signs a token for sessionID valid for ttl.
func Issue(secret, sessionID string, ttl time.Duration) (string, error) {
	exp := time.Now().Add(ttl)
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	custom := jwt.MapClaims{"session_id": sessionID, "exp": claims.ExpiresAt.Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, custom)
	return token.SignedString([]byte(secret))
}

// Parse validates token and returns the session it was issued for.
func Parse(secret, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	id, ok := claims["session_id"].(string)
	if !ok || id == "" {
		return "", ErrInvalidToken
	}
	return id, nil
}

// BearerToken reads the token from the Authorization header, falling back
// to the token query parameter browsers use for websocket upgrades.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("token")
}

// RequireSession aborts unless the request carries a token for the session
// named by the :id path parameter.
func RequireSession(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		id, err := Parse(secret, token)
		if err != nil || id != c.Param("id") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("session_id", id)
		c.Next()
	}
}
