package game

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StartIdleWorker closes sessions whose idle deadline in the session_idle
// sorted set has passed, and sessions past their ExpiresAt. Idle deadlines
// are pushed forward by SessionManager.Touch.
func StartIdleWorker(ctx context.Context, m *SessionManager, rdb *redis.Client, poll time.Duration, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	if rdb == nil || m == nil {
		log.Info("redis or manager missing; idle worker not started")
		return
	}
	if poll <= 0 {
		poll = 5 * time.Second
	}

	log.Info("idle worker started", zap.Duration("poll", poll))
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("idle worker stopping")
				return
			case <-ticker.C:
				now := time.Now()
				sweepIdle(ctx, m, rdb, now, log)
				sweepExpired(ctx, m, now, log)
			}
		}
	}()
}

// sweepIdle closes every session due at or before now and returns how many
// it closed.
func sweepIdle(ctx context.Context, m *SessionManager, rdb *redis.Client, now time.Time, log *zap.Logger) int {
	members, err := rdb.ZRangeByScore(ctx, idleSetKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		log.Warn("fetch idle sessions failed", zap.Error(err))
		return 0
	}

	closed := 0
	for _, id := range members {
		// only the worker that removes the member closes the session
		removed, err := rdb.ZRem(ctx, idleSetKey, id).Result()
		if err != nil || removed == 0 {
			continue
		}
		if err := m.Close(ctx, id, EndReasonIdle); err != nil {
			log.Debug("idle session already gone", zap.String("session", id), zap.Error(err))
			continue
		}
		log.Info("closed idle session", zap.String("session", id))
		closed++
	}
	return closed
}

// sweepExpired closes sessions that outlived their TTL.
func sweepExpired(ctx context.Context, m *SessionManager, now time.Time, log *zap.Logger) int {
	closed := 0
	for _, id := range m.Expired(now) {
		if err := m.Close(ctx, id, EndReasonExpired); err != nil {
			continue
		}
		log.Info("closed expired session", zap.String("session", id))
		closed++
	}
	return closed
}
