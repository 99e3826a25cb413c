package game

import (
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultFrameWidth  = 800.0
	DefaultFrameHeight = 400.0
	DefaultTickRate    = 60
)

var ErrInvalidMode = errors.New("invalid ball mode")

// Key is a discrete key press the session understands.
type Key string

const (
	KeyMode1 Key = "1"
	KeyMode2 Key = "2"
	KeyMode3 Key = "3"
	KeyPower Key = "4"
	KeyTrail Key = "t"
	KeyReset Key = "r"
)

// MouseButton identifies which button was clicked.
type MouseButton int

const (
	ButtonLeft MouseButton = iota
	ButtonRight
	ButtonMiddle
)

// SessionOptions configures a new Session. World is required; everything
// else has a default.
type SessionOptions struct {
	ID          string
	FrameWidth  float64
	FrameHeight float64
	Mode        Mode
	World       PhysicsWorld
	Audio       Audio
	Tuning      *Tuning
	Rand        *rand.Rand
	Logger      *zap.Logger
	Now         func() time.Time
}

// Session is one game of snooker: the table, the balls, the cue, the boost
// zone and every flag the tick loop consults. It is not safe for concurrent
// use; a Runner serialises access when one is needed.
type Session struct {
	ID string

	table  *Table
	world  PhysicsWorld
	balls  *BallManager
	cue    *CueController
	boost  *SpeedBoost
	alerts *AlertFeed
	audio  Audio
	tuning Tuning
	log    *zap.Logger
	now    func() time.Time

	mode             Mode
	powerMode        bool
	repositioning    bool
	initialPlacement bool
	colouredStreak   int
	respawnQueue     []*Ball

	pointer    Vec2
	forceUp    bool
	forceDown  bool
	cueVisible bool
	collided   bool

	tick    uint64
	pending []Event
	events  []Event
}

// NewSession builds the table, registers its walls with the world and lays
// out the balls for the requested mode.
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.World == nil {
		return nil, errors.New("session needs a physics world")
	}
	if opts.FrameWidth <= 0 {
		opts.FrameWidth = DefaultFrameWidth
	}
	if opts.FrameHeight <= 0 {
		opts.FrameHeight = DefaultFrameHeight
	}
	if opts.Mode == 0 {
		opts.Mode = ModeStandard
	}
	if !opts.Mode.Valid() {
		return nil, ErrInvalidMode
	}
	if opts.Audio == nil {
		opts.Audio = silentAudio{}
	}
	tuning := DefaultTuning()
	if opts.Tuning != nil {
		tuning = *opts.Tuning
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	log := opts.Logger
	if opts.ID != "" {
		log = log.With(zap.String("session", opts.ID))
	}

	table := NewTable(opts.FrameWidth, opts.FrameHeight)
	s := &Session{
		ID:               opts.ID,
		table:            table,
		world:            opts.World,
		balls:            NewBallManager(table, opts.World, tuning, opts.Rand, log),
		cue:              NewCueController(NewCue(opts.FrameWidth), opts.World, tuning, log),
		boost:            NewSpeedBoost(opts.FrameWidth),
		alerts:           NewAlertFeed(),
		audio:            opts.Audio,
		tuning:           tuning,
		log:              log,
		now:              opts.Now,
		repositioning:    true,
		initialPlacement: true,
	}

	for _, wall := range table.StaticBodies(tuning) {
		s.world.AddStatic(wall)
	}
	s.world.OnCollisionStart(s.handleCollisions)

	s.mode = opts.Mode
	s.balls.InitMode(s.mode)
	s.pointer = table.CueStart()
	s.boost.Relocate(s.balls)

	log.Info("session created", zap.Int("mode", int(s.mode)), zap.Int("balls", s.balls.Set().Len()))
	return s, nil
}

func (s *Session) Table() *Table { return s.table }

func (s *Session) Balls() *BallManager { return s.balls }

func (s *Session) Cue() *CueController { return s.cue }

func (s *Session) SpeedBoost() *SpeedBoost { return s.boost }

func (s *Session) Alerts() *AlertFeed { return s.alerts }

func (s *Session) Mode() Mode { return s.mode }

func (s *Session) PowerMode() bool { return s.powerMode }

func (s *Session) Repositioning() bool { return s.repositioning }

// InitialPlacement is true until the cue ball is first struck from the D.
func (s *Session) InitialPlacement() bool { return s.initialPlacement }

func (s *Session) ColouredStreak() int { return s.colouredStreak }

func (s *Session) PendingRespawns() int { return len(s.respawnQueue) }

func (s *Session) TickCount() uint64 { return s.tick }

func (s *Session) handleCollisions(pairs []CollisionPair) {
	for _, p := range pairs {
		if p.CueBallContact() {
			s.collided = true
		}
	}
}

// emit queues e for the current or next tick's event log. Input handled
// between ticks lands in the following tick.
func (s *Session) emit(e Event) {
	s.pending = append(s.pending, e)
}

func (s *Session) raise(kind AlertKind) {
	a := s.alerts.Raise(kind, s.now())
	s.emit(Event{Type: EventAlert, Alert: kind, Message: a.Message, Foul: kind.Foul()})
}

// Tick runs one frame of the game and returns the events it produced.
func (s *Session) Tick(dt time.Duration) []Event {
	s.tick++
	s.alerts.Expire(s.now())

	if s.cue.Advance(dt) {
		s.emit(Event{Type: EventStrike, Message: "cue ball struck"})
	}

	moving := s.balls.AnyMoving()
	if s.repositioning && !moving {
		if cue := s.balls.CueBall(); cue != nil && cue.Body() != nil {
			s.world.SetPosition(cue.Body(), s.table.DZone.Confine(s.pointer))
		}
	} else {
		s.world.Step()
	}

	if s.powerMode {
		s.applySpeedBoost()
	}

	if !s.repositioning {
		for _, b := range s.balls.Balls() {
			b.Update()
		}
	}

	s.cueVisible = !s.repositioning && (!s.balls.AnyMoving() || s.cue.IsStriking())
	if s.cueVisible {
		s.cue.Follow(s.balls.CueBall())
	}

	s.detectPots()
	s.flushRespawns()

	if s.collided {
		s.audio.Play(SoundCollision)
		s.emit(Event{Type: EventCollision})
		s.collided = false
	}

	if s.forceUp {
		s.cue.IncreaseForce()
	}
	if s.forceDown {
		s.cue.DecreaseForce()
	}

	s.events, s.pending = s.pending, nil
	for i := range s.events {
		s.events[i].Tick = s.tick
	}
	return s.events
}

func (s *Session) applySpeedBoost() {
	cue := s.balls.CueBall()
	if cue == nil || cue.Body() == nil || !s.boost.IsWithin(cue) {
		return
	}
	s.world.SetVelocity(cue.Body(), cue.Velocity().Times(s.tuning.BoostFactor))
	s.boost.Relocate(s.balls)
	e := ballEvent(EventSpeedBoost, s.tick, cue)
	s.emit(e)
	s.log.Debug("speed boost", zap.Float64("x", s.boost.Center.X), zap.Float64("y", s.boost.Center.Y))
}

func (s *Session) detectPots() {
	for _, b := range s.balls.Balls() {
		pocket, ok := s.table.PocketAt(b.Position())
		if !ok {
			continue
		}
		s.audio.Play(SoundPocket)
		e := ballEvent(EventPocketed, s.tick, b)
		e.Pocket = pocket.ID
		s.balls.RemoveBall(b)

		switch {
		case b.IsCue():
			s.respawnQueue = append(s.respawnQueue, b)
			e.Foul = true
			s.emit(e)
			s.raise(AlertCueBallPocketed)
		case b.Color.IsColoured():
			s.respawnQueue = append(s.respawnQueue, b)
			s.colouredStreak++
			e.Foul = true
			e.Streak = s.colouredStreak
			s.emit(e)
			s.raise(AlertColouredPocketed)
			if s.colouredStreak == 2 {
				s.alerts.ShowBanner(s.now())
				s.raise(AlertTwoColouredInARow)
			}
		default:
			s.colouredStreak = 0
			s.emit(e)
			s.raise(AlertRedPocketed)
		}
		s.log.Debug("ball potted", zap.String("color", string(b.Color)), zap.Int("pocket", pocket.ID))
	}
}

func (s *Session) flushRespawns() {
	if len(s.respawnQueue) == 0 || s.balls.AnyMoving() {
		return
	}
	for _, b := range s.respawnQueue {
		fresh := s.balls.RespawnBall(b)
		if fresh == nil {
			continue
		}
		if fresh.IsCue() {
			s.repositioning = true
		}
		s.audio.Play(SoundRespawn)
		s.emit(ballEvent(EventRespawned, s.tick, fresh))
	}
	s.respawnQueue = nil
}

// PointerMove records the pointer and re-aims the cue when it is free to move.
func (s *Session) PointerMove(p Vec2) {
	s.pointer = p
	if s.cue.IsStriking() || s.repositioning {
		return
	}
	s.cue.Aim(s.balls.CueBall(), p)
}

// Click either strikes or, while placing the cue ball, confirms its spot.
func (s *Session) Click(p Vec2, button MouseButton) error {
	s.pointer = p
	cue := s.balls.CueBall()

	if !s.repositioning {
		if cue != nil && (cue.IsMoving() || s.cue.IsStriking()) {
			return nil
		}
		if err := s.cue.Strike(cue); err != nil {
			return err
		}
		s.initialPlacement = false
		return nil
	}

	if button != ButtonLeft || !s.table.DZone.Contains(p) {
		return nil
	}
	s.repositioning = false
	s.initialPlacement = true
	if cue != nil && cue.Body() != nil {
		s.world.SetVelocity(cue.Body(), Vec2{})
	}
	return nil
}

// SelectMode lays the table out again. Any stroke in flight and any queued
// respawns belong to the old layout and are dropped. The coloured streak
// carries over; only a red pot clears it.
func (s *Session) SelectMode(mode Mode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}
	s.powerMode = false
	s.cue.Cancel()
	s.respawnQueue = nil
	s.mode = mode
	s.balls.InitMode(mode)
	s.commonReset()
	s.emit(Event{Type: EventModeChange, Mode: mode})
	s.log.Info("mode selected", zap.Int("mode", int(mode)))
	return nil
}

// commonReset returns the cue ball to the D for placement and unlocks the cue.
func (s *Session) commonReset() {
	s.balls.ResetCueBallPosition()
	s.repositioning = true
	s.cue.Cancel()
}

// ResetCueBall sends the cue ball back to the D, but only before the first
// stroke from it.
func (s *Session) ResetCueBall() bool {
	if !s.initialPlacement {
		return false
	}
	if cue := s.balls.CueBall(); cue != nil {
		cue.ResetTrail()
	}
	s.commonReset()
	return true
}

// SetPowerMode turns the speed-boost zone on or off. Turning it on moves
// the zone to a spot clear of every ball.
func (s *Session) SetPowerMode(on bool) {
	if on && !s.powerMode {
		s.boost.Relocate(s.balls)
	}
	s.powerMode = on
}

// ToggleTrails flips the neon trail on every ball.
func (s *Session) ToggleTrails() bool {
	return s.balls.ToggleNeonTrail()
}

// SetForceKeys records which force keys are held; they act every tick.
func (s *Session) SetForceKeys(up, down bool) {
	s.forceUp = up
	s.forceDown = down
}

// PressKey dispatches a discrete key press.
func (s *Session) PressKey(k Key) error {
	switch k {
	case KeyMode1:
		return s.SelectMode(ModeStandard)
	case KeyMode2:
		return s.SelectMode(ModeRandomReds)
	case KeyMode3:
		return s.SelectMode(ModeRandomBalls)
	case KeyPower:
		s.SetPowerMode(true)
	case KeyTrail:
		s.ToggleTrails()
	case KeyReset:
		s.ResetCueBall()
	}
	return nil
}

// Close removes every ball from the world.
func (s *Session) Close() {
	s.cue.Cancel()
	for _, b := range s.balls.Balls() {
		s.balls.RemoveBall(b)
	}
	s.respawnQueue = nil
	s.pending = nil
}
