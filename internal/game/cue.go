package game

import (
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
)

const (
	baseForce = 0.001

	MinForceIncrement     = 1.0
	MaxForceIncrement     = 10.0
	DefaultForceIncrement = 5.0
	ForceStep             = 0.2

	minStrikeMillis   = 375.0
	maxStrikeMillis   = 625.0
	strikeFrameBudget = 60

	// StrikeCooldown is how long after contact the cue stays locked.
	StrikeCooldown = 500 * time.Millisecond
)

var (
	ErrNoCueBall        = errors.New("no cue ball on the table")
	ErrStrikeInProgress = errors.New("strike already in progress")
	ErrCueBallMoving    = errors.New("cue ball is still moving")
)

// CuePhase is where the cue is in its strike cycle.
type CuePhase int

const (
	PhaseAiming CuePhase = iota
	PhasePullingBack
	PhaseStriking
	PhaseCooldown
)

func (p CuePhase) String() string {
	switch p {
	case PhaseAiming:
		return "aiming"
	case PhasePullingBack:
		return "pulling_back"
	case PhaseStriking:
		return "striking"
	case PhaseCooldown:
		return "cooldown"
	}
	return "unknown"
}

// Cue is the stick: its size, aim and where its tip currently sits.
type Cue struct {
	Length float64
	Width  float64
	Angle  float64 // radians, pointing from the pointer through the cue ball
	Anchor Vec2
}

// NewCue sizes the cue for a frame width.
func NewCue(frameWidth float64) Cue {
	return Cue{
		Length: frameWidth / 4,
		Width:  frameWidth / 120,
	}
}

// StrikeTiming is how long each half of the stroke takes.
type StrikeTiming struct {
	Total    time.Duration
	PullBack time.Duration
	Strike   time.Duration
}

// AnimationDurations maps the force increment onto the stroke length and
// splits it three to one between pull-back and release.
func AnimationDurations(increment float64) StrikeTiming {
	total := mapRange(increment, MinForceIncrement, MaxForceIncrement, minStrikeMillis, maxStrikeMillis)
	return StrikeTiming{
		Total:    millis(total),
		PullBack: millis(total * 3 / 4),
		Strike:   millis(total / 4),
	}
}

// FrameCounts shares the frame budget between the two halves of a stroke in
// proportion to their durations.
func FrameCounts(t StrikeTiming) (pullBack, strike int) {
	if t.Total <= 0 {
		return 0, strikeFrameBudget
	}
	pullBack = int(math.Round(strikeFrameBudget * float64(t.PullBack) / float64(t.Total)))
	return pullBack, strikeFrameBudget - pullBack
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// strikeAnim is one stroke in flight. Frames are numbered across both
// halves; frame i is due once elapsed reaches dueAt(i).
type strikeAnim struct {
	ball       *Ball
	timing     StrikeTiming
	pullFrames int
	hitFrames  int
	from       Vec2
	to         Vec2
	next       int
	elapsed    time.Duration
	releasedAt time.Duration
}

func (a *strikeAnim) frames() int { return a.pullFrames + a.hitFrames }

func (a *strikeAnim) dueAt(i int) time.Duration {
	if i < a.pullFrames {
		return time.Duration(float64(a.timing.PullBack) / float64(a.pullFrames) * float64(i))
	}
	k := i - a.pullFrames
	return a.timing.PullBack + time.Duration(float64(a.timing.Strike)/float64(a.hitFrames)*float64(k))
}

// position of the tip at frame i
func (a *strikeAnim) at(i int) Vec2 {
	if i < a.pullFrames {
		return a.from.Lerp(a.to, float64(i)/float64(a.pullFrames))
	}
	k := i - a.pullFrames
	return a.to.Lerp(a.from, float64(k)/float64(a.hitFrames))
}

// CueController aims the cue, accumulates force and runs the strike.
type CueController struct {
	cue       Cue
	force     float64
	increment float64
	phase     CuePhase
	anim      *strikeAnim
	world     PhysicsWorld
	log       *zap.Logger
}

func NewCueController(cue Cue, world PhysicsWorld, tuning Tuning, log *zap.Logger) *CueController {
	if log == nil {
		log = zap.NewNop()
	}
	return &CueController{
		cue:       cue,
		force:     tuning.BaseForce,
		increment: DefaultForceIncrement,
		world:     world,
		log:       log,
	}
}

func (c *CueController) Cue() Cue { return c.cue }

func (c *CueController) Phase() CuePhase { return c.phase }

// IsStriking is true from the start of the pull-back until the cooldown ends.
func (c *CueController) IsStriking() bool { return c.phase != PhaseAiming }

func (c *CueController) ForceIncrement() float64 { return c.increment }

// ForceLevel is the increment as a fraction of its range, for the power bar.
func (c *CueController) ForceLevel() float64 {
	return mapRange(c.increment, MinForceIncrement, MaxForceIncrement, 0, 1)
}

// Aim points the cue from pointer through the ball. Ignored mid-strike.
func (c *CueController) Aim(ball *Ball, pointer Vec2) {
	if ball == nil || c.IsStriking() {
		return
	}
	c.cue.Angle = ball.Position().Minus(pointer).Heading()
}

// Follow parks the tip one ball diameter behind the ball along the aim.
func (c *CueController) Follow(ball *Ball) {
	if ball == nil || c.IsStriking() {
		return
	}
	c.cue.Anchor = ball.Position().Minus(FromAngle(c.cue.Angle).Times(ball.Diameter))
	ball.ConstrainPosition()
}

func (c *CueController) IncreaseForce() {
	c.increment = math.Min(c.increment+ForceStep, MaxForceIncrement)
}

func (c *CueController) DecreaseForce() {
	c.increment = math.Max(c.increment-ForceStep, MinForceIncrement)
}

// ForceVector is the push the cue will deliver at the current settings.
func (c *CueController) ForceVector() Vec2 {
	return FromAngle(c.cue.Angle).Times(c.force * c.increment)
}

// PullBackDistance scales the backswing with the force increment.
func (c *CueController) PullBackDistance() float64 {
	return mapRange(c.increment, MinForceIncrement, MaxForceIncrement, 0, c.cue.Length/2)
}

// Strike starts a stroke at ball. The ball must exist and be at rest, and
// no other stroke may be running.
func (c *CueController) Strike(ball *Ball) error {
	if ball == nil || ball.Body() == nil {
		c.log.Warn("strike without a cue ball")
		return ErrNoCueBall
	}
	if c.IsStriking() {
		return ErrStrikeInProgress
	}
	if ball.IsMoving() {
		return ErrCueBallMoving
	}

	timing := AnimationDurations(c.increment)
	pull, hit := FrameCounts(timing)
	from := c.cue.Anchor
	c.anim = &strikeAnim{
		ball:       ball,
		timing:     timing,
		pullFrames: pull,
		hitFrames:  hit,
		from:       from,
		to:         from.Minus(FromAngle(c.cue.Angle).Times(c.PullBackDistance())),
	}
	c.phase = PhasePullingBack
	c.log.Debug("strike started",
		zap.Float64("increment", c.increment),
		zap.Duration("duration", timing.Total),
		zap.Int("pull_frames", pull),
		zap.Int("strike_frames", hit),
	)
	return nil
}

// Advance moves the stroke forward by dt, playing every frame that has come
// due. It reports true on the tick the ball is hit.
func (c *CueController) Advance(dt time.Duration) bool {
	a := c.anim
	if a == nil {
		return false
	}
	a.elapsed += dt
	hit := false

	for a.next < a.frames() && a.dueAt(a.next) <= a.elapsed {
		c.cue.Anchor = a.at(a.next)
		if a.next >= a.pullFrames {
			c.phase = PhaseStriking
		}
		if a.next == a.frames()-1 {
			c.applyForce(a.ball, c.ForceVector())
			a.releasedAt = a.dueAt(a.next)
			c.phase = PhaseCooldown
			hit = true
		}
		a.next++
	}

	if c.phase == PhaseCooldown && a.elapsed-a.releasedAt >= StrikeCooldown {
		c.anim = nil
		c.phase = PhaseAiming
	}
	return hit
}

func (c *CueController) applyForce(ball *Ball, force Vec2) {
	if ball == nil || ball.Body() == nil {
		c.log.Warn("force applied without a cue ball")
		return
	}
	if math.IsNaN(force.X) || math.IsNaN(force.Y) {
		c.log.Warn("force applied without a valid vector")
		return
	}
	c.world.ApplyForce(ball.Body(), ball.Position(), force)
}

// Cancel drops any stroke in flight and unlocks the cue at once.
func (c *CueController) Cancel() {
	c.anim = nil
	c.phase = PhaseAiming
}
