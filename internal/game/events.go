package game

// EventType classifies something that happened during a tick.
type EventType string

const (
	EventCollision  EventType = "collision"
	EventPocketed   EventType = "pocketed"
	EventRespawned  EventType = "respawned"
	EventAlert      EventType = "alert"
	EventSpeedBoost EventType = "speed_boost"
	EventStrike     EventType = "strike"
	EventModeChange EventType = "mode_change"
)

// Event is one entry in a tick's event log. Only the fields relevant to the
// type are set.
type Event struct {
	Type     EventType `json:"type" msgpack:"type"`
	Tick     uint64    `json:"tick" msgpack:"tick"`
	BallID   int       `json:"ball_id,omitempty" msgpack:"ball_id,omitempty"`
	Color    Color     `json:"color,omitempty" msgpack:"color,omitempty"`
	Role     string    `json:"role,omitempty" msgpack:"role,omitempty"`
	Position *Vec2     `json:"position,omitempty" msgpack:"position,omitempty"`
	Pocket   int       `json:"pocket,omitempty" msgpack:"pocket,omitempty"`
	Alert    AlertKind `json:"alert,omitempty" msgpack:"alert,omitempty"`
	Message  string    `json:"message,omitempty" msgpack:"message,omitempty"`
	Mode     Mode      `json:"mode,omitempty" msgpack:"mode,omitempty"`
	Foul     bool      `json:"foul,omitempty" msgpack:"foul,omitempty"`
	Streak   int       `json:"streak,omitempty" msgpack:"streak,omitempty"`
}

func ballEvent(t EventType, tick uint64, b *Ball) Event {
	p := b.Position()
	return Event{
		Type:     t,
		Tick:     tick,
		BallID:   b.ID,
		Color:    b.Color,
		Role:     b.Role.String(),
		Position: &p,
	}
}
