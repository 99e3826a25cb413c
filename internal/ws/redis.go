package ws

import (
	"context"
	"encoding/json"

	"github.com/playmatatu/neonsnooker/internal/game"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StartEventSubscriber forwards session events published on redis to the
// clients watching those sessions.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, h *Hub) {
	if rdb == nil {
		h.log.Info("redis client not set; event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, game.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		<-ctx.Done()
		pubsub.Close()
	}()
	go func() {
		h.log.Info("event subscriber started", zap.String("channel", game.EventsChannel))
		for msg := range ch {
			handleEvent(h, []byte(msg.Payload))
		}
	}()
}

func handleEvent(h *Hub, payload []byte) {
	var ev game.SessionClosedEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		h.log.Warn("invalid event payload", zap.Error(err))
		return
	}

	switch ev.Type {
	case "session_closed":
		n := h.CloseSession(ev.SessionID, Frame{Type: FrameEvent, Data: ev})
		h.log.Debug("session_closed delivered", zap.String("session", ev.SessionID), zap.Int("clients", n))
	default:
		h.log.Debug("unknown event type", zap.String("type", ev.Type))
	}
}
