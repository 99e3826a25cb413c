package game

// Tuning holds the physical constants of a session. ForceScale converts a
// one-step force into the engine's impulse units. Start from DefaultTuning.
type Tuning struct {
	BallMass           float64 `toml:"ball_mass" json:"ball_mass"`
	BallRestitution    float64 `toml:"ball_restitution" json:"ball_restitution"`
	BallFriction       float64 `toml:"ball_friction" json:"ball_friction"`
	BallAirFriction    float64 `toml:"ball_air_friction" json:"ball_air_friction"`
	CushionRestitution float64 `toml:"cushion_restitution" json:"cushion_restitution"`
	BorderRestitution  float64 `toml:"border_restitution" json:"border_restitution"`
	BaseForce          float64 `toml:"base_force" json:"base_force"`
	ForceScale         float64 `toml:"force_scale" json:"force_scale"`
	Iterations         int     `toml:"iterations" json:"iterations"`
	BoostFactor        float64 `toml:"boost_factor" json:"boost_factor"`
}

// DefaultTuning matches the feel of the reference table at 60 ticks a second.
func DefaultTuning() Tuning {
	const stepMillis = 1000.0 / 60
	return Tuning{
		BallMass:           ballMass,
		BallRestitution:    ballRestitution,
		BallFriction:       ballFriction,
		BallAirFriction:    ballAirFriction,
		CushionRestitution: cushionRestitution,
		BorderRestitution:  borderRestitution,
		BaseForce:          baseForce,
		ForceScale:         stepMillis * stepMillis,
		Iterations:         10,
		BoostFactor:        speedBoostFactor,
	}
}
