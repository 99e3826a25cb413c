package ws

import (
	"fmt"

	"github.com/playmatatu/neonsnooker/internal/game"
)

// Server frame types
const (
	FrameSnapshot = "snapshot"
	FrameEvent    = "event"
	FrameError    = "error"
)

// Frame is everything the server writes to a client.
type Frame struct {
	Type    string      `json:"type" msgpack:"type"`
	Data    interface{} `json:"data,omitempty" msgpack:"data,omitempty"`
	Message string      `json:"message,omitempty" msgpack:"message,omitempty"`
}

// ClientMessage is everything a client sends: {type, data}.
type ClientMessage struct {
	Type string    `json:"type" msgpack:"type"`
	Data InputData `json:"data" msgpack:"data"`
}

type InputData struct {
	X      float64          `json:"x" msgpack:"x"`
	Y      float64          `json:"y" msgpack:"y"`
	Button game.MouseButton `json:"button" msgpack:"button"`
	Key    game.Key         `json:"key" msgpack:"key"`
	Up     bool             `json:"up" msgpack:"up"`
	Down   bool             `json:"down" msgpack:"down"`
	Mode   game.Mode        `json:"mode" msgpack:"mode"`
}

// Input converts the message into session input.
func (m ClientMessage) Input() (game.Input, error) {
	kind := game.InputKind(m.Type)
	switch kind {
	case game.InputPointer, game.InputClick, game.InputKey, game.InputForce, game.InputMode:
	default:
		return game.Input{}, fmt.Errorf("unknown message type %q", m.Type)
	}
	return game.Input{
		Kind:   kind,
		X:      m.Data.X,
		Y:      m.Data.Y,
		Button: m.Data.Button,
		Key:    m.Data.Key,
		Up:     m.Data.Up,
		Down:   m.Data.Down,
		Mode:   m.Data.Mode,
	}, nil
}

func closedEvent(id, reason string) game.SessionClosedEvent {
	msg := "Session closed"
	if reason != "" {
		msg += " (" + reason + ")"
	}
	return game.SessionClosedEvent{
		Type:      "session_closed",
		SessionID: id,
		Reason:    reason,
		Message:   msg,
	}
}
