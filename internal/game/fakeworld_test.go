package game

import (
	"math/rand"
	"testing"
	"time"
)

// fakeBody is a point mass moved by a plain Euler step.
type fakeBody struct {
	label   string
	pos     Vec2
	vel     Vec2
	force   Vec2
	mass    float64
	air     float64
	radius  float64
	removed bool
}

func (b *fakeBody) Position() Vec2 { return b.pos }
func (b *fakeBody) Velocity() Vec2 { return b.vel }
func (b *fakeBody) Label() string { return b.label }

type appliedForce struct {
	body  Body
	point Vec2
	force Vec2
}

// fakeWorld has no collisions of its own; tests queue pairs with collide.
type fakeWorld struct {
	bodies  []*fakeBody
	statics []StaticSpec
	forces  []appliedForce
	pending []CollisionPair
	onStart func([]CollisionPair)
	scale   float64
	steps   int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{scale: DefaultTuning().ForceScale}
}

func (w *fakeWorld) AddCircle(spec BodySpec) Body {
	b := &fakeBody{
		label:  spec.Label,
		pos:    spec.Position,
		mass:   spec.Mass,
		air:    spec.AirFriction,
		radius: spec.Radius,
	}
	w.bodies = append(w.bodies, b)
	return b
}

func (w *fakeWorld) AddStatic(spec StaticSpec) { w.statics = append(w.statics, spec) }

func (w *fakeWorld) RemoveBody(b Body) {
	for i, x := range w.bodies {
		if Body(x) == b {
			x.removed = true
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}

func (w *fakeWorld) Step() {
	w.steps++
	for _, b := range w.bodies {
		if !b.force.IsZero() && b.mass > 0 {
			b.vel = b.vel.Plus(b.force.Times(w.scale / b.mass))
			b.force = Vec2{}
		}
		b.pos = b.pos.Plus(b.vel)
		b.vel = b.vel.Times(1 - b.air)
	}
	if len(w.pending) > 0 && w.onStart != nil {
		pairs := w.pending
		w.pending = nil
		w.onStart(pairs)
	}
}

func (w *fakeWorld) SetPosition(b Body, p Vec2) { b.(*fakeBody).pos = p }
func (w *fakeWorld) SetVelocity(b Body, v Vec2) { b.(*fakeBody).vel = v }

func (w *fakeWorld) ApplyForce(b Body, point, force Vec2) {
	fb := b.(*fakeBody)
	fb.force = fb.force.Plus(force)
	w.forces = append(w.forces, appliedForce{body: b, point: point, force: force})
}

func (w *fakeWorld) OnCollisionStart(fn func([]CollisionPair)) { w.onStart = fn }

func (w *fakeWorld) collide(a, b Body) {
	w.pending = append(w.pending, CollisionPair{A: a, B: b})
}

// stopAll zeroes every velocity.
func (w *fakeWorld) stopAll() {
	for _, b := range w.bodies {
		b.vel = Vec2{}
	}
}

type recordingAudio struct{ played []Sound }

func (a *recordingAudio) Play(s Sound) { a.played = append(a.played, s) }

func (a *recordingAudio) count(s Sound) int {
	n := 0
	for _, p := range a.played {
		if p == s {
			n++
		}
	}
	return n
}

// fakeClock is advanced by hand.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) add(d time.Duration) { c.t = c.t.Add(d) }
func newFakeClock() *fakeClock { return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)} }
func tickDuration() time.Duration { return time.Second / DefaultTickRate }
func seededRand(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }
func approx(a, b, eps float64) bool { return a-b < eps && b-a < eps }
func vecApprox(a, b Vec2, eps float64) bool { return approx(a.X, b.X, eps) && approx(a.Y, b.Y, eps) }

type testRig struct {
	session *Session
	world   *fakeWorld
	audio   *recordingAudio
	clock   *fakeClock
}

func newTestRig(t *testing.T, mode Mode) *testRig {
	t.Helper()
	rig := &testRig{world: newFakeWorld(), audio: &recordingAudio{}, clock: newFakeClock()}
	s, err := NewSession(SessionOptions{
		ID:    "test",
		Mode:  mode,
		World: rig.world,
		Audio: rig.audio,
		Rand:  seededRand(42),
		Now:   rig.clock.now,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	rig.session = s
	return rig
}

// tick advances the clock and the session by one frame.
func (r *testRig) tick() []Event {
	r.clock.add(tickDuration())
	return r.session.Tick(tickDuration())
}

// placeCue confirms the cue ball at its starting spot.
func (r *testRig) placeCue(t *testing.T) {
	t.Helper()
	start := r.session.Table().CueStart()
	r.session.PointerMove(start)
	r.tick()
	if err := r.session.Click(start, ButtonLeft); err != nil {
		t.Fatalf("confirm placement: %v", err)
	}
	if r.session.Repositioning() {
		t.Fatal("still repositioning after a click inside the D")
	}
}

// settle ticks with all balls stopped until respawns have run.
func (r *testRig) settle() []Event {
	r.world.stopAll()
	return r.tick()
}

func (r *testRig) ballOf(c Color) *Ball {
	for _, b := range r.session.Balls().Balls() {
		if b.Color == c {
			return b
		}
	}
	return nil
}

// pot drops b into the first pocket.
func (r *testRig) pot(b *Ball) {
	r.world.SetPosition(b.Body(), r.session.Table().Pockets[0].Position)
}

func countColor(balls []*Ball, c Color) int {
	n := 0
	for _, b := range balls {
		if b.Color == c {
			n++
		}
	}
	return n
}

func hasEvent(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}
