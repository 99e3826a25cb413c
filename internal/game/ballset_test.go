package game

import (
	"testing"

	"go.uber.org/zap"
)

func newTestManager(world PhysicsWorld) *BallManager {
	return NewBallManager(NewTable(800, 400), world, DefaultTuning(), seededRand(1), zap.NewNop())
}

func TestInitModeStandard(t *testing.T) {
	world := newFakeWorld()
	m := newTestManager(world)

	if !m.InitMode(ModeStandard) {
		t.Fatal("InitMode(1) = false")
	}
	balls := m.Balls()
	if len(balls) != 22 {
		t.Fatalf("balls = %d, want 22", len(balls))
	}
	if len(world.bodies) != 22 {
		t.Errorf("world bodies = %d, want 22", len(world.bodies))
	}
	if countColor(balls, ColorRed) != RedCount {
		t.Errorf("reds = %d", countColor(balls, ColorRed))
	}

	cue := m.CueBall()
	if cue == nil || !cue.IsCue() || cue.Color != ColorWhite {
		t.Fatalf("cue ball = %+v", cue)
	}
	if cue.Bounds == nil {
		t.Error("cue ball has no bounds")
	}
	if !vecApprox(cue.Position(), m.table.CueStart(), 1e-9) {
		t.Errorf("cue ball at %+v, want %+v", cue.Position(), m.table.CueStart())
	}
	if balls[0] != cue {
		t.Error("cue ball should be spawned first")
	}

	for _, c := range Colors {
		slot, _ := m.table.ColorSlot(c)
		n := 0
		for _, b := range balls {
			if b.Color == c {
				n++
				if !vecApprox(b.Position(), slot, 1e-9) {
					t.Errorf("%s at %+v, want %+v", c, b.Position(), slot)
				}
				if b.Bounds != nil {
					t.Errorf("%s should carry no bounds", c)
				}
			}
		}
		if n != 1 {
			t.Errorf("%d %s balls, want 1", n, c)
		}
	}

	for i, b := range balls {
		if b.Color == ColorRed && b.Body().Label() != LabelBall {
			t.Errorf("red %d labelled %q", i, b.Body().Label())
		}
	}
	if cue.Body().Label() != LabelCueBall {
		t.Errorf("cue labelled %q", cue.Body().Label())
	}
}

func TestInitModeRandomReds(t *testing.T) {
	m := newTestManager(newFakeWorld())
	m.InitMode(ModeRandomReds)

	balls := m.Balls()
	if len(balls) != 22 {
		t.Fatalf("balls = %d, want 22", len(balls))
	}
	for _, c := range Colors {
		slot, _ := m.table.ColorSlot(c)
		b := findColor(balls, c)
		if b == nil || !vecApprox(b.Position(), slot, 1e-9) {
			t.Errorf("%s not on its spot", c)
		}
	}
	area := m.table.PlayableArea()
	for _, b := range balls {
		if b.Color != ColorRed {
			continue
		}
		p := b.Position()
		if p.X < area.MinX || p.X > area.MaxX || p.Y < area.MinY || p.Y > area.MaxY {
			t.Errorf("red at %+v outside the playable area", p)
		}
	}
}

func TestInitModeRandomBallsSpacing(t *testing.T) {
	m := newTestManager(newFakeWorld())
	m.InitMode(ModeRandomBalls)

	balls := m.Balls()
	if len(balls) != 22 {
		t.Fatalf("balls = %d, want 22", len(balls))
	}
	minDist := 2 * m.table.BallDiameter
	var placed []*Ball
	for _, b := range balls {
		if !b.IsCue() {
			placed = append(placed, b)
		}
	}
	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			d := placed[i].Position().Distance(placed[j].Position())
			if d < minDist {
				t.Errorf("%s#%d and %s#%d only %.2f apart (min %.2f)",
					placed[i].Color, placed[i].ID, placed[j].Color, placed[j].ID, d, minDist)
			}
		}
	}
}

func TestInitModeRejectsUnknown(t *testing.T) {
	m := newTestManager(newFakeWorld())
	m.InitMode(ModeStandard)
	if m.InitMode(Mode(4)) {
		t.Error("InitMode(4) = true")
	}
	if len(m.Balls()) != 22 {
		t.Error("unknown mode changed the table")
	}
}

func TestInitModeReplacesBodies(t *testing.T) {
	world := newFakeWorld()
	m := newTestManager(world)
	m.InitMode(ModeStandard)
	old := m.Balls()

	m.InitMode(ModeRandomBalls)
	if len(world.bodies) != 22 {
		t.Fatalf("world bodies after re-init = %d, want 22", len(world.bodies))
	}
	for _, b := range old {
		if !b.Body().(*fakeBody).removed {
			t.Fatalf("body of old %s still in the world", b.Color)
		}
		if m.Set().Contains(b) {
			t.Fatalf("old %s still live", b.Color)
		}
	}
}

func TestRemoveBallIdempotent(t *testing.T) {
	world := newFakeWorld()
	m := newTestManager(world)
	m.InitMode(ModeStandard)
	red := findColor(m.Balls(), ColorRed)

	if !m.RemoveBall(red) {
		t.Fatal("first removal failed")
	}
	if m.RemoveBall(red) {
		t.Error("second removal reported success")
	}
	if len(m.Balls()) != 21 || len(world.bodies) != 21 {
		t.Errorf("balls=%d bodies=%d, want 21", len(m.Balls()), len(world.bodies))
	}
}

func TestRespawnBall(t *testing.T) {
	m := newTestManager(newFakeWorld())
	m.InitMode(ModeStandard)

	red := findColor(m.Balls(), ColorRed)
	m.RemoveBall(red)
	if got := m.RespawnBall(red); got != nil {
		t.Error("red came back")
	}

	pink := findColor(m.Balls(), ColorPink)
	m.RemoveBall(pink)
	fresh := m.RespawnBall(pink)
	if fresh == nil || fresh == pink {
		t.Fatal("pink was not respawned as a new ball")
	}
	slot, _ := m.table.ColorSlot(ColorPink)
	if !vecApprox(fresh.Position(), slot, 1e-9) {
		t.Errorf("pink respawned at %+v, want %+v", fresh.Position(), slot)
	}

	cue := m.CueBall()
	if m.RespawnBall(cue) != nil {
		t.Error("second cue ball spawned while one is live")
	}
	m.RemoveBall(cue)
	if m.CueBall() != nil {
		t.Fatal("cue handle not cleared on removal")
	}
	newCue := m.RespawnBall(cue)
	if newCue == nil || m.CueBall() != newCue {
		t.Fatal("cue ball not respawned")
	}
	if !vecApprox(newCue.Position(), m.table.CueStart(), 1e-9) {
		t.Errorf("cue respawned at %+v", newCue.Position())
	}

	if m.RespawnBall(nil) != nil {
		t.Error("RespawnBall(nil) returned a ball")
	}
	stray := newBall(99, RoleStandard, Color("purple"), Vec2{}, 10)
	if m.RespawnBall(stray) != nil {
		t.Error("unknown colour respawned")
	}
}

func TestBallSetRejectsDuplicates(t *testing.T) {
	world := newFakeWorld()
	var set BallSet
	b := newBall(1, RoleStandard, ColorRed, Vec2{X: 1}, 10)
	b.enablePhysics(world, DefaultTuning())

	if !set.add(b) {
		t.Fatal("first add failed")
	}
	if set.add(b) {
		t.Error("same ball added twice")
	}
	clone := *b
	if set.add(&clone) {
		t.Error("ball sharing a body added")
	}
	if set.Len() != 1 {
		t.Errorf("set has %d balls", set.Len())
	}
}

func TestIsSafeSpot(t *testing.T) {
	m := newTestManager(newFakeWorld())
	if !m.IsSafeSpot(Vec2{}, 1000) {
		t.Error("empty table should be safe everywhere")
	}
	m.InitMode(ModeStandard)
	brown, _ := m.table.ColorSlot(ColorBrown)
	if m.IsSafeSpot(brown, 1) {
		t.Error("spot on the brown reported safe")
	}
	if !m.IsSafeSpot(Vec2{X: -1000, Y: -1000}, 10) {
		t.Error("spot off the table reported unsafe")
	}
}

func TestToggleNeonTrailInherited(t *testing.T) {
	m := newTestManager(newFakeWorld())
	m.InitMode(ModeStandard)

	if !m.ToggleNeonTrail() {
		t.Fatal("toggle did not switch trails on")
	}
	for _, b := range m.Balls() {
		if !b.NeonTrail {
			t.Fatalf("%s has no trail", b.Color)
		}
	}
	black := findColor(m.Balls(), ColorBlack)
	m.RemoveBall(black)
	if fresh := m.RespawnBall(black); !fresh.NeonTrail {
		t.Error("respawned ball lost the trail setting")
	}
}

func TestBallTrailFIFO(t *testing.T) {
	world := newFakeWorld()
	b := newBall(1, RoleStandard, ColorRed, Vec2{}, 10)
	b.enablePhysics(world, DefaultTuning())

	for i := 1; i <= 8; i++ {
		world.SetPosition(b.Body(), Vec2{X: float64(i)})
		b.Update()
	}
	trail := b.Trail()
	if len(trail) != TrailLength {
		t.Fatalf("trail length = %d", len(trail))
	}
	if trail[0].X != 4 || trail[TrailLength-1].X != 8 {
		t.Errorf("trail = %+v, want x 4..8", trail)
	}
	b.ResetTrail()
	if len(b.Trail()) != 0 {
		t.Error("trail not cleared")
	}
}

func TestBallIsMovingPerAxis(t *testing.T) {
	world := newFakeWorld()
	b := newBall(1, RoleStandard, ColorRed, Vec2{}, 10)
	b.enablePhysics(world, DefaultTuning())

	world.SetVelocity(b.Body(), Vec2{X: 0.029, Y: -0.029})
	if b.IsMoving() {
		t.Error("ball under threshold on both axes reported moving")
	}
	world.SetVelocity(b.Body(), Vec2{Y: -0.031})
	if !b.IsMoving() {
		t.Error("ball over threshold on y reported stopped")
	}
}

func findColor(balls []*Ball, c Color) *Ball {
	for _, b := range balls {
		if b.Color == c {
			return b
		}
	}
	return nil
}
