package game

// Body labels, shared with the physics world so collision pairs can be
// classified without a lookup.
const (
	LabelCueBall = "cueBall"
	LabelBall    = "ball"
	LabelCushion = "cushion"
	LabelBorder  = "border"
)

// Body is a rigid body owned by a PhysicsWorld.
type Body interface {
	Position() Vec2
	Velocity() Vec2
	Label() string
}

// BodySpec describes a dynamic circle.
type BodySpec struct {
	Label       string
	Position    Vec2
	Radius      float64
	Mass        float64
	Restitution float64
	Friction    float64
	AirFriction float64
}

// StaticSpec describes an immovable convex polygon.
type StaticSpec struct {
	Label       string
	Vertices    []Vec2
	Restitution float64
}

// CollisionPair is two bodies that started touching during a step.
type CollisionPair struct {
	A, B Body
}

// CueBallContact reports whether the pair is a cue ball touching another ball.
func (p CollisionPair) CueBallContact() bool {
	a, b := p.A.Label(), p.B.Label()
	return (a == LabelCueBall && b == LabelBall) || (a == LabelBall && b == LabelCueBall)
}

// PhysicsWorld is the rigid-body simulation the session drives. One Step
// advances one tick; velocities are in pixels per tick.
type PhysicsWorld interface {
	AddCircle(spec BodySpec) Body
	AddStatic(spec StaticSpec)
	RemoveBody(b Body)
	Step()
	SetPosition(b Body, p Vec2)
	SetVelocity(b Body, v Vec2)
	// ApplyForce acts on b for the next step only.
	ApplyForce(b Body, point, force Vec2)
	OnCollisionStart(fn func(pairs []CollisionPair))
}

// Sound identifies a fire-and-forget audio cue.
type Sound int

const (
	SoundCollision Sound = iota
	SoundPocket
	SoundRespawn
)

func (s Sound) String() string {
	switch s {
	case SoundCollision:
		return "collision"
	case SoundPocket:
		return "pocket"
	case SoundRespawn:
		return "respawn"
	}
	return "unknown"
}

// Audio plays sound cues without blocking.
type Audio interface {
	Play(s Sound)
}

type silentAudio struct{}

func (silentAudio) Play(Sound) {}
