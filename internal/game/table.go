package game

import (
	"math"
	"math/rand"
)

const (
	// placementPadding keeps random spots clear of the rails.
	placementPadding = 20.0

	borderRestitution  = 0.96
	cushionRestitution = 0.8

	redRows = 5
	// RedCount is the number of reds in a full rack.
	RedCount = redRows * (redRows + 1) / 2
)

// Pocket is one of the six pocket mouths.
type Pocket struct {
	ID       int     `json:"id" msgpack:"id"`
	Position Vec2    `json:"position" msgpack:"position"`
	Diameter float64 `json:"diameter" msgpack:"diameter"` // drawn size, not the capture radius
}

// Cushion is one of the six trapezoid rails between pockets.
type Cushion struct {
	Center   Vec2    `json:"center" msgpack:"center"`
	Rotation float64 `json:"rotation" msgpack:"rotation"` // degrees
	Length   float64 `json:"length" msgpack:"length"`
	Width    float64 `json:"width" msgpack:"width"`
	Vertices []Vec2  `json:"vertices" msgpack:"vertices"` // world coordinates
}

// DZone is the half-disc the cue ball is placed in.
type DZone struct {
	Center Vec2    `json:"center" msgpack:"center"`
	Radius float64 `json:"radius" msgpack:"radius"`
}

// Contains reports whether p lies on the baulk side of the D.
func (d DZone) Contains(p Vec2) bool {
	return p.Distance(d.Center) <= d.Radius && p.X <= d.Center.X
}

// Confine projects p onto the D: points beyond the radius are pulled back
// along the same angle, then x is clamped to the straight edge.
func (d DZone) Confine(p Vec2) Vec2 {
	offset := p.Minus(d.Center)
	if offset.Magnitude() > d.Radius {
		p = d.Center.Plus(FromAngle(offset.Heading()).Times(d.Radius))
	}
	if p.X > d.Center.X {
		p.X = d.Center.X
	}
	return p
}

// Layout holds the canonical starting coordinates of every ball.
type Layout struct {
	Colors   map[Color]Vec2 `json:"colors" msgpack:"colors"`
	Reds     []Vec2         `json:"reds" msgpack:"reds"`
	CueStart Vec2           `json:"cue_start" msgpack:"cue_start"`
	CueBound Bounds         `json:"cue_bounds" msgpack:"cue_bounds"`
}

// Table is the static geometry of the table, derived from the frame size.
// Nothing on it changes after NewTable returns.
type Table struct {
	FrameWidth     float64   `json:"frame_width" msgpack:"frame_width"`
	FrameHeight    float64   `json:"frame_height" msgpack:"frame_height"`
	Width          float64   `json:"width" msgpack:"width"`
	Height         float64   `json:"height" msgpack:"height"`
	BallDiameter   float64   `json:"ball_diameter" msgpack:"ball_diameter"`
	PocketDiameter float64   `json:"pocket_diameter" msgpack:"pocket_diameter"`
	PocketRadius   float64   `json:"pocket_radius" msgpack:"pocket_radius"`
	Surface        Rect      `json:"surface" msgpack:"surface"`
	Rails          []Rect    `json:"rails" msgpack:"rails"` // top, bottom, left, right
	Borders        []Rect    `json:"borders" msgpack:"borders"`
	Cushions       []Cushion `json:"cushions" msgpack:"cushions"`
	Pockets        []Pocket  `json:"pockets" msgpack:"pockets"`
	DZone          DZone     `json:"d_zone" msgpack:"d_zone"`
	Layout         Layout    `json:"layout" msgpack:"layout"`
}

// NewTable computes the table for a frame of the given size.
func NewTable(frameWidth, frameHeight float64) *Table {
	t := &Table{
		FrameWidth:  frameWidth,
		FrameHeight: frameHeight,
	}
	t.Width = frameWidth * 0.8
	t.Height = t.Width / 2
	t.BallDiameter = t.Width / 36
	t.PocketDiameter = t.BallDiameter * 1.5
	t.PocketRadius = t.PocketDiameter / 2

	t.Surface = Rect{
		X:      t.Width*0.103 - t.PocketDiameter,
		Y:      (frameHeight - t.Height) / 3,
		Width:  t.Width*1.085 + t.PocketDiameter,
		Height: t.Width*0.5 + t.PocketDiameter,
	}
	t.Rails = t.rails()
	t.Borders = t.borders()
	t.Cushions = t.cushions()
	t.Pockets = t.pockets()
	t.DZone = DZone{
		Center: Vec2{X: frameWidth/4 + t.BallDiameter*1.2, Y: frameHeight / 2},
		Radius: t.Width / 12,
	}
	t.Layout = t.layout()
	return t
}

// left edge of the cloth
func (t *Table) left() float64 { return (t.FrameWidth - t.Width) / 2 }

// top edge of the cloth
func (t *Table) top() float64 { return (t.FrameHeight - t.Height) / 2 }

func (t *Table) rails() []Rect {
	s := t.Surface
	return []Rect{
		{X: s.X, Y: 0, Width: s.Width, Height: s.Y},
		{X: s.X, Y: s.Height + s.Y, Width: s.Width, Height: s.Y},
		{X: s.X, Y: s.Y, Width: s.Y, Height: s.Height},
		{X: s.Width + s.X - s.Y, Y: s.Y, Width: s.Y, Height: s.Height},
	}
}

// borders are the solid walls just outside the cloth, as centered rects
// converted to top-left form.
func (t *Table) borders() []Rect {
	bt := t.BallDiameter * 1.5
	w, h := t.FrameWidth, t.FrameHeight
	centered := []struct{ cx, cy, w, h float64 }{
		{w / 2, (h-t.Height)/2 - bt, t.Width + bt*2, bt},
		{w / 2, (h+t.Height)/2 + bt, t.Width + bt*2, bt},
		{(w-t.Width)/2 - bt, h / 2, bt, t.Height + bt*2},
		{(w+t.Width)/2 + bt, h / 2, bt, t.Height + bt*2},
	}
	out := make([]Rect, 0, len(centered))
	for _, c := range centered {
		out = append(out, Rect{X: c.cx - c.w/2, Y: c.cy - c.h/2, Width: c.w, Height: c.h})
	}
	return out
}

func (t *Table) cushions() []Cushion {
	lengthH := (t.Width - 2*t.PocketDiameter) / 2
	lengthV := t.Height - t.PocketDiameter
	cw := t.BallDiameter * 1.5
	left, top := t.left(), t.top()

	xLeft := left + t.PocketDiameter/2 + lengthH/2
	xRight := left + t.Width - t.PocketDiameter/2 - lengthH/2
	yTop := top + t.PocketRadius - cw/2
	yBottom := top + t.Height - t.PocketRadius + cw/2
	yMid := top + t.PocketDiameter/2 + lengthV/2

	specs := []struct {
		x, y, rot, length float64
	}{
		{xLeft, yTop, 0, lengthH},
		{xRight, yTop, 0, lengthH},
		{xLeft, yBottom, 180, lengthH},
		{xRight, yBottom, 180, lengthH},
		{left + t.PocketRadius - cw/2, yMid, 270, lengthV},
		{left + t.Width - t.PocketRadius + cw/2, yMid, 90, lengthV},
	}

	out := make([]Cushion, 0, len(specs))
	for _, s := range specs {
		center := Vec2{X: s.x, Y: s.y}
		out = append(out, Cushion{
			Center:   center,
			Rotation: s.rot,
			Length:   s.length,
			Width:    cw,
			Vertices: cushionVertices(center, s.length, cw, s.rot),
		})
	}
	return out
}

// cushionVertices places the trapezoid with its centroid on center, long
// edge facing away from the cloth before rotation.
func cushionVertices(center Vec2, length, width, rotation float64) []Vec2 {
	local := []Vec2{
		{X: -length / 2, Y: -width / 2},
		{X: length / 2, Y: -width / 2},
		{X: length/2 - width, Y: width / 2},
		{X: -length/2 + width, Y: width / 2},
	}
	c := polygonCentroid(local)
	out := make([]Vec2, len(local))
	for i, v := range local {
		out[i] = v.Minus(c).Rotate(rotation).Plus(center)
	}
	return out
}

func polygonCentroid(pts []Vec2) Vec2 {
	var area, cx, cy float64
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		cross := a.X*b.Y - b.X*a.Y
		area += cross
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	}
	if area == 0 {
		return Vec2{}
	}
	area /= 2
	return Vec2{X: cx / (6 * area), Y: cy / (6 * area)}
}

func (t *Table) pockets() []Pocket {
	out := make([]Pocket, 0, 6)
	for _, x := range []float64{0, t.Width / 2, t.Width} {
		for _, y := range []float64{0, t.Height} {
			out = append(out, Pocket{
				ID:       len(out),
				Position: Vec2{X: t.left() + x, Y: t.top() + y},
				Diameter: t.PocketDiameter*1.3 + 5,
			})
		}
	}
	return out
}

func (t *Table) layout() Layout {
	s := t.Surface
	d := t.DZone
	midY := s.Y + s.Height/2
	pink := Vec2{X: s.X + s.Width/2 + s.Width/5, Y: midY}

	l := Layout{
		Colors: map[Color]Vec2{
			ColorGreen:  {X: d.Center.X, Y: d.Center.Y - d.Radius},
			ColorBrown:  d.Center,
			ColorYellow: {X: d.Center.X, Y: d.Center.Y + d.Radius},
			ColorBlue:   {X: s.X + s.Width/2, Y: midY},
			ColorPink:   pink,
			ColorBlack:  {X: pink.X + 7*t.BallDiameter, Y: midY},
		},
		Reds:     make([]Vec2, 0, RedCount),
		CueStart: Vec2{X: d.Center.X - d.Radius/2, Y: d.Center.Y},
		CueBound: Bounds{
			MinX: (t.FrameWidth-t.Width)/2 + t.BallDiameter/2,
			MaxX: (t.FrameWidth+t.Width)/2 - t.BallDiameter/2,
			MinY: (t.FrameHeight-t.Height)/2 + t.BallDiameter/2,
			MaxY: (t.FrameHeight+t.Height)/2 - t.BallDiameter/2,
		},
	}

	apex := Vec2{X: pink.X + t.BallDiameter, Y: midY}
	for row := 0; row < redRows; row++ {
		for col := 0; col <= row; col++ {
			l.Reds = append(l.Reds, Vec2{
				X: apex.X + float64(row)*t.BallDiameter*math.Sqrt(3)/2,
				Y: apex.Y - float64(row)*t.BallDiameter/2 + float64(col)*t.BallDiameter,
			})
		}
	}
	return l
}

// ColorSlot returns the canonical spot for a coloured ball.
func (t *Table) ColorSlot(c Color) (Vec2, bool) {
	p, ok := t.Layout.Colors[c]
	return p, ok
}

// CueStart is the cue ball's starting spot, confined to the D.
func (t *Table) CueStart() Vec2 {
	return t.DZone.Confine(t.Layout.CueStart)
}

// PlayableArea is the region random placement draws from.
func (t *Table) PlayableArea() Bounds {
	top, bottom, left, right := t.Rails[0], t.Rails[1], t.Rails[2], t.Rails[3]
	return Bounds{
		MinX: left.X + left.Width*2 + placementPadding,
		MaxX: right.X - right.Width - placementPadding,
		MinY: top.Y + top.Height*2 + placementPadding,
		MaxY: bottom.Y - bottom.Height - placementPadding,
	}
}

// RandomPosition draws a uniform point from the playable area.
func (t *Table) RandomPosition(rng *rand.Rand) Vec2 {
	a := t.PlayableArea()
	return Vec2{
		X: a.MinX + rng.Float64()*(a.MaxX-a.MinX),
		Y: a.MinY + rng.Float64()*(a.MaxY-a.MinY),
	}
}

// PocketAt returns the pocket whose capture radius contains p.
func (t *Table) PocketAt(p Vec2) (Pocket, bool) {
	for _, pk := range t.Pockets {
		if p.Distance(pk.Position) < t.PocketDiameter/2 {
			return pk, true
		}
	}
	return Pocket{}, false
}

// InPocket reports whether a ball centred at p has dropped.
func (t *Table) InPocket(p Vec2) bool {
	_, ok := t.PocketAt(p)
	return ok
}

// StaticBodies lists the walls to register with the physics world.
func (t *Table) StaticBodies(tuning Tuning) []StaticSpec {
	out := make([]StaticSpec, 0, len(t.Borders)+len(t.Cushions))
	for _, b := range t.Borders {
		out = append(out, StaticSpec{
			Label: LabelBorder,
			Vertices: []Vec2{
				{X: b.X, Y: b.Y},
				{X: b.X + b.Width, Y: b.Y},
				{X: b.X + b.Width, Y: b.Y + b.Height},
				{X: b.X, Y: b.Y + b.Height},
			},
			Restitution: tuning.BorderRestitution,
		})
	}
	for _, c := range t.Cushions {
		out = append(out, StaticSpec{
			Label:       LabelCushion,
			Vertices:    c.Vertices,
			Restitution: tuning.CushionRestitution,
		})
	}
	return out
}
