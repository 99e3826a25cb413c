package game

import (
	"math"
	"testing"
)

func TestTableDimensions(t *testing.T) {
	table := NewTable(800, 400)

	if table.Width != 640 || table.Height != 320 {
		t.Fatalf("table size = %vx%v, want 640x320", table.Width, table.Height)
	}
	if !approx(table.BallDiameter, 640.0/36, 1e-9) {
		t.Errorf("ball diameter = %v, want %v", table.BallDiameter, 640.0/36)
	}
	if !approx(table.PocketDiameter, table.BallDiameter*1.5, 1e-9) {
		t.Errorf("pocket diameter = %v, want 1.5 ball diameters", table.PocketDiameter)
	}
	if len(table.Pockets) != 6 {
		t.Fatalf("pockets = %d, want 6", len(table.Pockets))
	}
	if len(table.Cushions) != 6 {
		t.Errorf("cushions = %d, want 6", len(table.Cushions))
	}
	if len(table.Borders) != 4 || len(table.Rails) != 4 {
		t.Errorf("borders=%d rails=%d, want 4 and 4", len(table.Borders), len(table.Rails))
	}
}

func TestPocketPositions(t *testing.T) {
	table := NewTable(800, 400)
	want := []Vec2{
		{X: 80, Y: 40}, {X: 80, Y: 360},
		{X: 400, Y: 40}, {X: 400, Y: 360},
		{X: 720, Y: 40}, {X: 720, Y: 360},
	}
	for i, p := range table.Pockets {
		if p.ID != i {
			t.Errorf("pocket %d has id %d", i, p.ID)
		}
		if !vecApprox(p.Position, want[i], 1e-9) {
			t.Errorf("pocket %d at %+v, want %+v", i, p.Position, want[i])
		}
	}
}

func TestPocketCaptureRadius(t *testing.T) {
	table := NewTable(800, 400)
	pk := table.Pockets[2]
	r := table.PocketDiameter / 2

	if !table.InPocket(pk.Position.Plus(Vec2{X: r - 0.01})) {
		t.Error("point just inside the capture radius not in pocket")
	}
	if table.InPocket(pk.Position.Plus(Vec2{X: r + 0.01})) {
		t.Error("point just outside the capture radius counted as potted")
	}
	if table.InPocket(Vec2{X: 400, Y: 200}) {
		t.Error("table centre counted as potted")
	}
}

func TestDZoneContains(t *testing.T) {
	d := NewTable(800, 400).DZone

	if !d.Contains(d.Center) {
		t.Error("centre of the D not contained")
	}
	if !d.Contains(d.Center.Plus(Vec2{X: -d.Radius + 0.01})) {
		t.Error("point just inside the arc not contained")
	}
	if d.Contains(d.Center.Plus(Vec2{X: 1})) {
		t.Error("point on the spot side of the baulk line contained")
	}
	if d.Contains(d.Center.Plus(Vec2{X: -d.Radius - 1})) {
		t.Error("point beyond the radius contained")
	}
}

func TestDZoneConfine(t *testing.T) {
	d := NewTable(800, 400).DZone

	tests := []struct {
		name string
		in   Vec2
		want Vec2
	}{
		{"inside", d.Center.Plus(Vec2{X: -10, Y: 10}), d.Center.Plus(Vec2{X: -10, Y: 10})},
		{"far left", d.Center.Plus(Vec2{X: -200}), d.Center.Plus(Vec2{X: -d.Radius})},
		{"far right", d.Center.Plus(Vec2{X: 200}), d.Center},
		{"right of line", d.Center.Plus(Vec2{X: 5, Y: 10}), d.Center.Plus(Vec2{Y: 10})},
		{"straight up", d.Center.Plus(Vec2{Y: -500}), d.Center.Plus(Vec2{Y: -d.Radius})},
	}
	for _, tt := range tests {
		got := d.Confine(tt.in)
		if !vecApprox(got, tt.want, 1e-9) {
			t.Errorf("%s: Confine(%+v) = %+v, want %+v", tt.name, tt.in, got, tt.want)
		}
		if got.Distance(d.Center) > d.Radius+1e-9 || got.X > d.Center.X {
			t.Errorf("%s: confined point %+v not in the D", tt.name, got)
		}
	}
}

func TestCueStartInsideD(t *testing.T) {
	table := NewTable(800, 400)
	start := table.CueStart()
	if !table.DZone.Contains(start) {
		t.Fatalf("cue start %+v outside the D", start)
	}
	want := Vec2{X: table.DZone.Center.X - table.DZone.Radius/2, Y: table.DZone.Center.Y}
	if !vecApprox(start, want, 1e-9) {
		t.Errorf("cue start = %+v, want %+v", start, want)
	}
}

func TestColourSlots(t *testing.T) {
	table := NewTable(800, 400)
	d := table.DZone

	checks := map[Color]Vec2{
		ColorGreen:  {X: d.Center.X, Y: d.Center.Y - d.Radius},
		ColorBrown:  d.Center,
		ColorYellow: {X: d.Center.X, Y: d.Center.Y + d.Radius},
	}
	for c, want := range checks {
		got, ok := table.ColorSlot(c)
		if !ok || !vecApprox(got, want, 1e-9) {
			t.Errorf("%s slot = %+v (ok=%v), want %+v", c, got, ok, want)
		}
	}

	pink, _ := table.ColorSlot(ColorPink)
	black, _ := table.ColorSlot(ColorBlack)
	if !approx(black.X-pink.X, 7*table.BallDiameter, 1e-9) {
		t.Errorf("black is %v from pink, want 7 ball diameters", black.X-pink.X)
	}
	if _, ok := table.ColorSlot(ColorRed); ok {
		t.Error("reds should have no slot")
	}
	if _, ok := table.ColorSlot(ColorWhite); ok {
		t.Error("the cue ball should have no colour slot")
	}
}

func TestRackIsTight(t *testing.T) {
	table := NewTable(800, 400)
	reds := table.Layout.Reds
	if len(reds) != RedCount {
		t.Fatalf("rack has %d reds, want %d", len(reds), RedCount)
	}

	pink, _ := table.ColorSlot(ColorPink)
	if !vecApprox(reds[0], Vec2{X: pink.X + table.BallDiameter, Y: pink.Y}, 1e-9) {
		t.Errorf("apex red at %+v, want one diameter behind pink", reds[0])
	}

	minDist := math.Inf(1)
	for i := range reds {
		for j := i + 1; j < len(reds); j++ {
			minDist = math.Min(minDist, reds[i].Distance(reds[j]))
		}
	}
	if !approx(minDist, table.BallDiameter, 1e-9) {
		t.Errorf("closest reds are %v apart, want touching at %v", minDist, table.BallDiameter)
	}
}

func TestCushionVerticesCentred(t *testing.T) {
	table := NewTable(800, 400)
	for i, c := range table.Cushions {
		if len(c.Vertices) != 4 {
			t.Fatalf("cushion %d has %d vertices", i, len(c.Vertices))
		}
		centroid := polygonCentroid(c.Vertices)
		if !vecApprox(centroid, c.Center, 1e-6) {
			t.Errorf("cushion %d centroid %+v, want %+v", i, centroid, c.Center)
		}
	}
}

func TestStaticBodiesUseTuning(t *testing.T) {
	table := NewTable(800, 400)
	tuning := DefaultTuning()
	tuning.CushionRestitution = 0.5
	tuning.BorderRestitution = 0.7

	specs := table.StaticBodies(tuning)
	if len(specs) != 10 {
		t.Fatalf("static bodies = %d, want 10", len(specs))
	}
	for _, s := range specs {
		switch s.Label {
		case LabelCushion:
			if s.Restitution != 0.5 {
				t.Errorf("cushion restitution = %v", s.Restitution)
			}
		case LabelBorder:
			if s.Restitution != 0.7 {
				t.Errorf("border restitution = %v", s.Restitution)
			}
		default:
			t.Errorf("unexpected label %q", s.Label)
		}
	}
}

func TestRandomPositionInPlayableArea(t *testing.T) {
	table := NewTable(800, 400)
	area := table.PlayableArea()
	rng := seededRand(7)
	for i := 0; i < 1000; i++ {
		p := table.RandomPosition(rng)
		if p.X < area.MinX || p.X > area.MaxX || p.Y < area.MinY || p.Y > area.MaxY {
			t.Fatalf("random position %+v outside %+v", p, area)
		}
	}
}
