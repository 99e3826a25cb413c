package game

const (
	speedBoostFactor = 1.5
	speedBoostColor  = "#0a635c"
)

// SpeedBoost is the power-mode trigger zone. It is never removed, only moved
// after it fires.
type SpeedBoost struct {
	Center Vec2
	Size   float64
	Color  string
}

// NewSpeedBoost sizes the zone for a frame width. It has no position until
// Relocate is called.
func NewSpeedBoost(frameWidth float64) *SpeedBoost {
	return &SpeedBoost{
		Size:  frameWidth / 30,
		Color: speedBoostColor,
	}
}

func (z *SpeedBoost) Radius() float64 { return z.Size / 2 }

// MinDistance is the clearance a new spot needs from every ball.
func (z *SpeedBoost) MinDistance() float64 { return z.Size }

// IsWithin reports whether the ball's centre is inside the zone.
func (z *SpeedBoost) IsWithin(b *Ball) bool {
	if b == nil {
		return false
	}
	return b.Position().Distance(z.Center) < z.Radius()
}

// Relocate moves the zone to a spot clear of every ball.
func (z *SpeedBoost) Relocate(balls *BallManager) {
	z.Center = balls.RandomSafePosition(z.MinDistance())
}
