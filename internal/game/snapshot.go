package game

// BallState is a read-only view of a ball for renderers.
type BallState struct {
	ID        int     `json:"id" msgpack:"id"`
	Role      string  `json:"role" msgpack:"role"`
	Color     Color   `json:"color" msgpack:"color"`
	Fill      string  `json:"fill" msgpack:"fill"`
	Stroke    string  `json:"stroke" msgpack:"stroke"`
	Position  Vec2    `json:"position" msgpack:"position"`
	Velocity  Vec2    `json:"velocity" msgpack:"velocity"`
	Diameter  float64 `json:"diameter" msgpack:"diameter"`
	Moving    bool    `json:"moving" msgpack:"moving"`
	NeonTrail bool    `json:"neon_trail" msgpack:"neon_trail"`
	Trail     []Vec2  `json:"trail,omitempty" msgpack:"trail,omitempty"`
}

// CueState is a read-only view of the cue.
type CueState struct {
	Visible        bool    `json:"visible" msgpack:"visible"`
	Angle          float64 `json:"angle" msgpack:"angle"`
	Anchor         Vec2    `json:"anchor" msgpack:"anchor"`
	Length         float64 `json:"length" msgpack:"length"`
	Width          float64 `json:"width" msgpack:"width"`
	ForceIncrement float64 `json:"force_increment" msgpack:"force_increment"`
	ForceLevel     float64 `json:"force_level" msgpack:"force_level"`
	Striking       bool    `json:"striking" msgpack:"striking"`
	Phase          string  `json:"phase" msgpack:"phase"`
}

// BoostState is a read-only view of the speed-boost zone.
type BoostState struct {
	Center Vec2    `json:"center" msgpack:"center"`
	Size   float64 `json:"size" msgpack:"size"`
	Color  string  `json:"color" msgpack:"color"`
}

// Snapshot is everything a renderer needs to draw one frame.
type Snapshot struct {
	SessionID        string      `json:"session_id" msgpack:"session_id"`
	Tick             uint64      `json:"tick" msgpack:"tick"`
	Mode             Mode        `json:"mode" msgpack:"mode"`
	PowerMode        bool        `json:"power_mode" msgpack:"power_mode"`
	Repositioning    bool        `json:"repositioning" msgpack:"repositioning"`
	InitialPlacement bool        `json:"initial_placement" msgpack:"initial_placement"`
	ColouredStreak   int         `json:"coloured_streak" msgpack:"coloured_streak"`
	PendingRespawns  int         `json:"pending_respawns" msgpack:"pending_respawns"`
	AnyMoving        bool        `json:"any_moving" msgpack:"any_moving"`
	Balls            []BallState `json:"balls" msgpack:"balls"`
	Cue              CueState    `json:"cue" msgpack:"cue"`
	Boost            *BoostState `json:"boost,omitempty" msgpack:"boost,omitempty"`
	Alerts           []Alert     `json:"alerts" msgpack:"alerts"`
	Banner           *Alert      `json:"banner,omitempty" msgpack:"banner,omitempty"`
	Events           []Event     `json:"events,omitempty" msgpack:"events,omitempty"`
}

// Snapshot captures the session as of the last tick.
func (s *Session) Snapshot() Snapshot {
	balls := s.balls.Balls()
	snap := Snapshot{
		SessionID:        s.ID,
		Tick:             s.tick,
		Mode:             s.mode,
		PowerMode:        s.powerMode,
		Repositioning:    s.repositioning,
		InitialPlacement: s.initialPlacement,
		ColouredStreak:   s.colouredStreak,
		PendingRespawns:  len(s.respawnQueue),
		AnyMoving:        s.balls.AnyMoving(),
		Balls:            make([]BallState, 0, len(balls)),
		Alerts:           s.alerts.Active(),
		Events:           append([]Event(nil), s.events...),
	}

	for _, b := range balls {
		sw := Palette[b.Color]
		st := BallState{
			ID:        b.ID,
			Role:      b.Role.String(),
			Color:     b.Color,
			Fill:      sw.Fill,
			Stroke:    sw.Stroke,
			Position:  b.Position(),
			Velocity:  b.Velocity(),
			Diameter:  b.Diameter,
			Moving:    b.IsMoving(),
			NeonTrail: b.NeonTrail,
		}
		if b.NeonTrail {
			st.Trail = b.Trail()
		}
		snap.Balls = append(snap.Balls, st)
	}

	c := s.cue.Cue()
	snap.Cue = CueState{
		Visible:        s.cueVisible,
		Angle:          c.Angle,
		Anchor:         c.Anchor,
		Length:         c.Length,
		Width:          c.Width,
		ForceIncrement: s.cue.ForceIncrement(),
		ForceLevel:     s.cue.ForceLevel(),
		Striking:       s.cue.IsStriking(),
		Phase:          s.cue.Phase().String(),
	}

	if s.powerMode {
		snap.Boost = &BoostState{Center: s.boost.Center, Size: s.boost.Size, Color: s.boost.Color}
	}
	if banner, ok := s.alerts.Banner(); ok {
		snap.Banner = &banner
	}
	return snap
}
