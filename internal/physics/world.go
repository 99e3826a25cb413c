// Package physics runs the table on the chipmunk rigid-body engine.
package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/playmatatu/neonsnooker/internal/game"
	"go.uber.org/zap"
)

const (
	ballCollision cp.CollisionType = iota + 1
	wallCollision
)

const (
	// wallRadius rounds the wall polygons by a pixel.
	wallRadius = 1.0
	// substeps splits each tick so a full-power ball moves well under its
	// own radius per cp step.
	substeps = 4
)

// World implements game.PhysicsWorld on a cp.Space. Gravity is off and one
// Step advances one tick in substeps, so every velocity is in pixels per
// tick.
type World struct {
	space     *cp.Space
	tuning    game.Tuning
	bodies    map[*cp.Body]*circle
	started   []game.CollisionPair
	onCollide func([]game.CollisionPair)
	log       *zap.Logger
}

type circle struct {
	body  *cp.Body
	shape *cp.Shape
	label string
}

func (c *circle) Position() game.Vec2 { return fromCP(c.body.Position()) }
func (c *circle) Velocity() game.Vec2 { return fromCP(c.body.Velocity()) }
func (c *circle) Label() string       { return c.label }

// NewWorld builds an empty space tuned by t.
func NewWorld(t game.Tuning, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	space.SetDamping(1 - t.BallAirFriction)
	if t.Iterations > 0 {
		space.Iterations = uint(t.Iterations)
	}

	w := &World{
		space:  space,
		tuning: t,
		bodies: make(map[*cp.Body]*circle),
		log:    log.Named("physics"),
	}
	handler := space.NewCollisionHandler(ballCollision, ballCollision)
	handler.BeginFunc = w.begin
	return w
}

// Factory adapts NewWorld to the session manager's world constructor.
func Factory(log *zap.Logger) func(game.Tuning) game.PhysicsWorld {
	return func(t game.Tuning) game.PhysicsWorld {
		return NewWorld(t, log)
	}
}

func (w *World) begin(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	a, b := arb.Bodies()
	ca, okA := w.bodies[a]
	cb, okB := w.bodies[b]
	if okA && okB {
		w.started = append(w.started, game.CollisionPair{A: ca, B: cb})
	}
	return true
}

func (w *World) AddCircle(spec game.BodySpec) game.Body {
	mass := spec.Mass
	if mass <= 0 {
		mass = w.tuning.BallMass
	}
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, spec.Radius, cp.Vector{}))
	body.SetPosition(toCP(spec.Position))
	w.space.AddBody(body)

	shape := cp.NewCircle(body, spec.Radius, cp.Vector{})
	shape.SetElasticity(spec.Restitution)
	shape.SetFriction(spec.Friction)
	shape.SetCollisionType(ballCollision)
	w.space.AddShape(shape)

	c := &circle{body: body, shape: shape, label: spec.Label}
	body.UserData = c
	w.bodies[body] = c
	return c
}

// AddStatic adds the polygon as a solid shape on the space's static body.
// Two vertices make a segment.
func (w *World) AddStatic(spec game.StaticSpec) {
	n := len(spec.Vertices)
	var shape *cp.Shape
	switch {
	case n < 2:
		w.log.Warn("static body skipped", zap.String("label", spec.Label), zap.Int("vertices", n))
		return
	case n == 2:
		shape = cp.NewSegment(w.space.StaticBody, toCP(spec.Vertices[0]), toCP(spec.Vertices[1]), wallRadius)
	default:
		verts := make([]cp.Vector, n)
		for i, v := range spec.Vertices {
			verts[i] = toCP(v)
		}
		shape = cp.NewPolyShape(w.space.StaticBody, n, verts, cp.NewTransformIdentity(), wallRadius)
	}
	shape.SetElasticity(spec.Restitution)
	shape.SetFriction(0)
	shape.SetCollisionType(wallCollision)
	w.space.AddShape(shape)
}

func (w *World) RemoveBody(b game.Body) {
	c, ok := b.(*circle)
	if !ok {
		return
	}
	if _, live := w.bodies[c.body]; !live {
		return
	}
	delete(w.bodies, c.body)
	w.space.RemoveShape(c.shape)
	w.space.RemoveBody(c.body)
}

// Step advances the space by one tick and then reports the ball contacts
// that began during it.
func (w *World) Step() {
	w.started = w.started[:0]
	for i := 0; i < substeps; i++ {
		w.space.Step(1.0 / substeps)
	}
	if len(w.started) > 0 && w.onCollide != nil {
		pairs := make([]game.CollisionPair, len(w.started))
		copy(pairs, w.started)
		w.onCollide(pairs)
	}
}

func (w *World) SetPosition(b game.Body, p game.Vec2) {
	if c, ok := b.(*circle); ok {
		c.body.SetPosition(toCP(p))
	}
}

func (w *World) SetVelocity(b game.Body, v game.Vec2) {
	if c, ok := b.(*circle); ok {
		c.body.SetVelocityVector(toCP(v))
	}
}

// ApplyForce turns a one-step force into an impulse at point.
func (w *World) ApplyForce(b game.Body, point, force game.Vec2) {
	c, ok := b.(*circle)
	if !ok {
		return
	}
	c.body.ApplyImpulseAtWorldPoint(toCP(force.Times(w.tuning.ForceScale)), toCP(point))
}

func (w *World) OnCollisionStart(fn func(pairs []game.CollisionPair)) {
	w.onCollide = fn
}

// BodyCount is the number of live dynamic bodies.
func (w *World) BodyCount() int {
	return len(w.bodies)
}

func toCP(v game.Vec2) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func fromCP(v cp.Vector) game.Vec2 {
	return game.Vec2{X: v.X, Y: v.Y}
}
