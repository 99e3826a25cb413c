package game

import (
	"math/rand"

	"go.uber.org/zap"
)

// maxPlacementAttempts caps rejection sampling. Past it the last candidate
// is used.
const maxPlacementAttempts = 10000

// Mode selects the opening layout.
type Mode int

const (
	ModeStandard    Mode = 1 // full rack, colours on their spots
	ModeRandomReds  Mode = 2 // colours on their spots, reds scattered
	ModeRandomBalls Mode = 3 // everything scattered
)

// Valid reports whether m is one of the three layouts.
func (m Mode) Valid() bool {
	return m >= ModeStandard && m <= ModeRandomBalls
}

// BallSet is the live balls in insertion order plus a handle on the cue ball.
type BallSet struct {
	balls []*Ball
	cue   *Ball
}

// Balls returns the live balls in insertion order. The slice is a copy.
func (s *BallSet) Balls() []*Ball {
	out := make([]*Ball, len(s.balls))
	copy(out, s.balls)
	return out
}

// Cue returns the cue ball, or nil while it is off the table.
func (s *BallSet) Cue() *Ball { return s.cue }

func (s *BallSet) Len() int { return len(s.balls) }

func (s *BallSet) indexOf(b *Ball) int {
	for i, x := range s.balls {
		if x == b {
			return i
		}
	}
	return -1
}

// Contains reports whether b is live.
func (s *BallSet) Contains(b *Ball) bool { return s.indexOf(b) >= 0 }

// add appends b unless it, or its body, is already present.
func (s *BallSet) add(b *Ball) bool {
	if b == nil || s.Contains(b) {
		return false
	}
	if body := b.Body(); body != nil {
		for _, x := range s.balls {
			if x.Body() == body {
				return false
			}
		}
	}
	s.balls = append(s.balls, b)
	if b.IsCue() {
		s.cue = b
	}
	return true
}

func (s *BallSet) remove(b *Ball) bool {
	i := s.indexOf(b)
	if i < 0 {
		return false
	}
	s.balls = append(s.balls[:i], s.balls[i+1:]...)
	if s.cue == b {
		s.cue = nil
	}
	return true
}

// AnyMoving reports whether any live ball is above the movement threshold.
func (s *BallSet) AnyMoving() bool {
	for _, b := range s.balls {
		if b.IsMoving() {
			return true
		}
	}
	return false
}

// BallManager owns the ball set and keeps it consistent with the physics world.
type BallManager struct {
	set    BallSet
	table  *Table
	world  PhysicsWorld
	tuning Tuning
	rng    *rand.Rand
	log    *zap.Logger
	nextID int
	trails bool
}

func NewBallManager(table *Table, world PhysicsWorld, tuning Tuning, rng *rand.Rand, log *zap.Logger) *BallManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &BallManager{
		table:  table,
		world:  world,
		tuning: tuning,
		rng:    rng,
		log:    log,
	}
}

// Set exposes the live collection.
func (m *BallManager) Set() *BallSet { return &m.set }

func (m *BallManager) Balls() []*Ball { return m.set.Balls() }

func (m *BallManager) CueBall() *Ball { return m.set.Cue() }

func (m *BallManager) AnyMoving() bool { return m.set.AnyMoving() }

// InitMode clears the table and lays it out for mode. It reports false for
// an unknown mode and leaves the table untouched.
func (m *BallManager) InitMode(mode Mode) bool {
	if !mode.Valid() {
		return false
	}
	m.clear()
	m.spawnCueBall()

	switch mode {
	case ModeStandard:
		for _, p := range m.table.Layout.Reds {
			m.spawn(ColorRed, p)
		}
		m.spawnColorsOnSpots()
	case ModeRandomReds:
		m.spawnColorsOnSpots()
		m.spawnRandom(ColorRed, RedCount)
	case ModeRandomBalls:
		for _, c := range Colors {
			m.spawnRandom(c, 1)
		}
		m.spawnRandom(ColorRed, RedCount)
	}
	m.log.Debug("table laid out", zap.Int("mode", int(mode)), zap.Int("balls", m.set.Len()))
	return true
}

func (m *BallManager) clear() {
	for _, b := range m.set.balls {
		if b.Body() != nil {
			m.world.RemoveBody(b.Body())
		}
	}
	m.set = BallSet{}
}

func (m *BallManager) spawnColorsOnSpots() {
	for _, c := range Colors {
		if p, ok := m.table.ColorSlot(c); ok {
			m.spawn(c, p)
		}
	}
}

func (m *BallManager) spawnRandom(c Color, n int) {
	for i := 0; i < n; i++ {
		m.spawn(c, m.RandomSafePosition(m.table.BallDiameter*2))
	}
}

func (m *BallManager) spawn(c Color, p Vec2) *Ball {
	m.nextID++
	b := newBall(m.nextID, RoleStandard, c, p, m.table.BallDiameter)
	b.NeonTrail = m.trails
	b.enablePhysics(m.world, m.tuning)
	m.set.add(b)
	return b
}

func (m *BallManager) spawnCueBall() *Ball {
	m.nextID++
	b := newBall(m.nextID, RoleCue, ColorWhite, m.table.CueStart(), m.table.BallDiameter)
	bounds := m.table.Layout.CueBound
	b.Bounds = &bounds
	b.NeonTrail = m.trails
	b.enablePhysics(m.world, m.tuning)
	m.set.add(b)
	return b
}

// RemoveBall takes b off the table and out of the world. Removing a ball
// that is not live does nothing.
func (m *BallManager) RemoveBall(b *Ball) bool {
	if !m.set.remove(b) {
		return false
	}
	if b.Body() != nil {
		m.world.RemoveBody(b.Body())
	}
	return true
}

// RespawnBall puts a fresh copy of a potted ball back on the table. The cue
// ball returns to the D; colours return to their spots. Reds never come
// back and unknown colours are ignored; both return nil.
func (m *BallManager) RespawnBall(b *Ball) *Ball {
	if b == nil {
		return nil
	}
	if b.IsCue() {
		if m.set.Cue() != nil {
			return nil
		}
		return m.spawnCueBall()
	}
	p, ok := m.table.ColorSlot(b.Color)
	if !ok {
		return nil
	}
	return m.spawn(b.Color, p)
}

// ResetCueBallPosition moves the existing cue ball back to the D and stops it.
func (m *BallManager) ResetCueBallPosition() {
	cue := m.set.Cue()
	if cue == nil || cue.Body() == nil {
		return
	}
	m.world.SetPosition(cue.Body(), m.table.CueStart())
	m.world.SetVelocity(cue.Body(), Vec2{})
}

// IsSafeSpot reports whether p is at least minDist from every live ball.
// With one ball or none on the table every spot is safe.
func (m *BallManager) IsSafeSpot(p Vec2, minDist float64) bool {
	if m.set.Len() <= 1 {
		return true
	}
	for _, b := range m.set.balls {
		if b.Position().Distance(p) < minDist {
			return false
		}
	}
	return true
}

// RandomSafePosition samples the playable area until a spot clears every
// ball by minDist.
func (m *BallManager) RandomSafePosition(minDist float64) Vec2 {
	var p Vec2
	for i := 0; i < maxPlacementAttempts; i++ {
		p = m.table.RandomPosition(m.rng)
		if m.IsSafeSpot(p, minDist) {
			return p
		}
	}
	m.log.Warn("no safe spot found, placing anyway", zap.Float64("min_dist", minDist))
	return p
}

// ToggleNeonTrail flips the trail effect on every live ball. Balls spawned
// later follow the new setting.
func (m *BallManager) ToggleNeonTrail() bool {
	m.trails = !m.trails
	for _, b := range m.set.balls {
		b.NeonTrail = m.trails
	}
	return m.trails
}
