package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/playmatatu/neonsnooker/internal/game"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "FRAME_WIDTH", "TICK_RATE", "MIGRATE_ON_START", "IDLE_TIMEOUT_SECONDS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.FrameWidth != 800 || cfg.FrameHeight != 400 || cfg.TickRate != 60 {
		t.Errorf("frame = %vx%v at %d", cfg.FrameWidth, cfg.FrameHeight, cfg.TickRate)
	}
	if !cfg.MigrateOnStart {
		t.Error("MigrateOnStart defaults to false")
	}
	if cfg.IdleTimeout() != 5*time.Minute {
		t.Errorf("IdleTimeout = %v", cfg.IdleTimeout())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FRAME_WIDTH", "1200.5")
	t.Setenv("TICK_RATE", "120")
	t.Setenv("MAX_SESSIONS", "not-a-number")
	t.Setenv("MIGRATE_ON_START", "false")

	cfg := Load()
	if cfg.FrameWidth != 1200.5 {
		t.Errorf("FrameWidth = %v", cfg.FrameWidth)
	}
	if cfg.TickRate != 120 {
		t.Errorf("TickRate = %v", cfg.TickRate)
	}
	if cfg.MaxSessions != 200 {
		t.Errorf("MaxSessions = %v, want the default for a bad value", cfg.MaxSessions)
	}
	if cfg.MigrateOnStart {
		t.Error("MigrateOnStart not overridden")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "physics.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPhysicsKeepsDefaults(t *testing.T) {
	path := writeFile(t, "ball_restitution = 0.8\niterations = 20\n")
	got, err := LoadPhysics(path)
	if err != nil {
		t.Fatalf("LoadPhysics: %v", err)
	}
	want := game.DefaultTuning()
	want.BallRestitution = 0.8
	want.Iterations = 20
	if got != want {
		t.Errorf("LoadPhysics = %+v, want %+v", got, want)
	}
}

func TestLoadPhysicsErrors(t *testing.T) {
	tests := []struct {
		name, body, errPart string
	}{
		{"syntax", "ball_mass = = 1", "parse"},
		{"zero mass", "ball_mass = 0.0", "positive"},
	}
	for _, tt := range tests {
		_, err := LoadPhysics(writeFile(t, tt.body))
		if err == nil || !strings.Contains(err.Error(), tt.errPart) {
			t.Errorf("%s: err = %v, want it to mention %q", tt.name, err, tt.errPart)
		}
	}
	if _, err := LoadPhysics(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestTuningWithoutFile(t *testing.T) {
	cfg := &Config{}
	got, err := cfg.Tuning()
	if err != nil || got != game.DefaultTuning() {
		t.Errorf("Tuning = %+v, %v", got, err)
	}
}
