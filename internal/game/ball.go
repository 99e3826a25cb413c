package game

import "math"

const (
	// MovingThreshold is the per-axis speed below which a ball counts as stopped.
	MovingThreshold = 0.03

	// TrailLength is how many past positions a ball keeps for its trail.
	TrailLength = 5

	ballRestitution = 0.96
	ballFriction    = 0.05
	ballAirFriction = 0.01
	ballMass        = 0.1
	// bodyRadiusScale pads the physical circle slightly beyond the drawn one.
	bodyRadiusScale = 1.05
)

// Role distinguishes the cue ball from every other ball.
type Role int

const (
	RoleStandard Role = iota
	RoleCue
)

func (r Role) String() string {
	if r == RoleCue {
		return "cue"
	}
	return "standard"
}

// Color is a ball colour token.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBrown  Color = "brown"
	ColorBlue   Color = "blue"
	ColorPink   Color = "pink"
	ColorBlack  Color = "black"
	ColorWhite  Color = "white"
)

// Colors lists the six coloured balls in slot order.
var Colors = []Color{ColorGreen, ColorBrown, ColorYellow, ColorBlue, ColorPink, ColorBlack}

// IsColoured reports whether c is neither red nor the cue ball.
func (c Color) IsColoured() bool {
	return c != ColorRed && c != ColorWhite && c != ""
}

// Swatch is the fill and outline used to draw a ball.
type Swatch struct {
	Fill   string `json:"fill" msgpack:"fill"`
	Stroke string `json:"stroke" msgpack:"stroke"`
}

// Palette maps every colour token to its swatch.
var Palette = map[Color]Swatch{
	ColorRed:    {Fill: "#f00001", Stroke: "#a30000"},
	ColorYellow: {Fill: "#feff00", Stroke: "#b1b200"},
	ColorGreen:  {Fill: "#9ef01a", Stroke: "#003600"},
	ColorBrown:  {Fill: "#9d5d1f", Stroke: "#502f0f"},
	ColorBlue:   {Fill: "blue", Stroke: "#001430"},
	ColorPink:   {Fill: "pink", Stroke: "#b2868e"},
	ColorBlack:  {Fill: "black", Stroke: "black"},
	ColorWhite:  {Fill: "white", Stroke: "#ede7e3"},
}

// Ball is one ball on the table. The cue ball is the one with RoleCue; only
// it carries Bounds.
type Ball struct {
	ID        int
	Role      Role
	Color     Color
	Diameter  float64
	Bounds    *Bounds
	NeonTrail bool

	body     Body
	position Vec2
	trail    []Vec2
}

func newBall(id int, role Role, color Color, pos Vec2, diameter float64) *Ball {
	return &Ball{
		ID:       id,
		Role:     role,
		Color:    color,
		Diameter: diameter,
		position: pos,
		trail:    make([]Vec2, 0, TrailLength),
	}
}

// IsCue reports whether b is the cue ball.
func (b *Ball) IsCue() bool { return b.Role == RoleCue }

// Radius is half the drawn diameter.
func (b *Ball) Radius() float64 { return b.Diameter / 2 }

// Body returns the physics body, or nil before physics is enabled.
func (b *Ball) Body() Body { return b.body }

func (b *Ball) label() string {
	if b.IsCue() {
		return LabelCueBall
	}
	return LabelBall
}

// enablePhysics registers a circle for b at its current position.
func (b *Ball) enablePhysics(world PhysicsWorld, tuning Tuning) {
	b.body = world.AddCircle(BodySpec{
		Label:       b.label(),
		Position:    b.position,
		Radius:      b.Radius() * bodyRadiusScale,
		Mass:        tuning.BallMass,
		Restitution: tuning.BallRestitution,
		Friction:    tuning.BallFriction,
		AirFriction: tuning.BallAirFriction,
	})
}

// Position is the physics position when a body exists, else the mirrored one.
func (b *Ball) Position() Vec2 {
	if b.body != nil {
		return b.body.Position()
	}
	return b.position
}

// Velocity is zero for a ball without a body.
func (b *Ball) Velocity() Vec2 {
	if b.body == nil {
		return Vec2{}
	}
	return b.body.Velocity()
}

// IsMoving applies the per-axis threshold.
func (b *Ball) IsMoving() bool {
	v := b.Velocity()
	return math.Abs(v.X) > MovingThreshold || math.Abs(v.Y) > MovingThreshold
}

// Update mirrors the body position and records it in the trail.
func (b *Ball) Update() {
	if b.body != nil {
		b.position = b.body.Position()
	}
	b.trail = append(b.trail, b.position)
	if len(b.trail) > TrailLength {
		b.trail = b.trail[1:]
	}
}

// Trail returns a copy of the recorded positions, oldest first.
func (b *Ball) Trail() []Vec2 {
	out := make([]Vec2, len(b.trail))
	copy(out, b.trail)
	return out
}

func (b *Ball) ResetTrail() {
	b.trail = b.trail[:0]
}

func (b *Ball) ToggleNeonTrail() {
	b.NeonTrail = !b.NeonTrail
}

// ConstrainPosition clamps the mirrored position of a bounded ball.
func (b *Ball) ConstrainPosition() {
	if b.Bounds == nil || b.body == nil {
		return
	}
	b.position = b.Bounds.Clamp(b.position)
}
