package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/playmatatu/neonsnooker/internal/game"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Sessions
	SessionTTLMinutes  int
	IdleTimeoutSeconds int
	IdlePollSeconds    int
	MaxSessions        int

	// Table
	FrameWidth  float64
	FrameHeight float64
	TickRate    int
	PhysicsFile string

	// Desktop
	AudioVolume float64

	// Logging
	LogLevel  string
	LogFormat string

	// Security
	JWTSecret string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Environment: getEnv("APP_ENV", "development"),

		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/neonsnooker?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		SessionTTLMinutes:  getEnvInt("SESSION_TTL_MINUTES", 60),
		IdleTimeoutSeconds: getEnvInt("IDLE_TIMEOUT_SECONDS", 300),
		IdlePollSeconds:    getEnvInt("IDLE_POLL_SECONDS", 5),
		MaxSessions:        getEnvInt("MAX_SESSIONS", 200),

		FrameWidth:  getEnvFloat("FRAME_WIDTH", game.DefaultFrameWidth),
		FrameHeight: getEnvFloat("FRAME_HEIGHT", game.DefaultFrameHeight),
		TickRate:    getEnvInt("TICK_RATE", game.DefaultTickRate),
		PhysicsFile: getEnv("PHYSICS_CONFIG", ""),

		AudioVolume: getEnvFloat("AUDIO_VOLUME", 0.6),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
	}
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

func (c *Config) IdlePoll() time.Duration {
	return time.Duration(c.IdlePollSeconds) * time.Second
}

// Tuning returns the physics tuning from PhysicsFile, or the defaults when
// no file is configured.
func (c *Config) Tuning() (game.Tuning, error) {
	if c.PhysicsFile == "" {
		return game.DefaultTuning(), nil
	}
	return LoadPhysics(c.PhysicsFile)
}

// LoadPhysics reads a TOML tuning file. Keys missing from the file keep
// their default values.
func LoadPhysics(path string) (game.Tuning, error) {
	t := game.DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read physics config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &t); err != nil {
		return game.DefaultTuning(), fmt.Errorf("parse physics config %s: %w", path, err)
	}
	if t.BallMass <= 0 || t.ForceScale <= 0 {
		return game.DefaultTuning(), fmt.Errorf("physics config %s: ball_mass and force_scale must be positive", path)
	}
	return t, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
