// Package store keeps session and pot history in postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/neonsnooker/internal/game"
	"github.com/playmatatu/neonsnooker/internal/models"
)

var ErrNotFound = errors.New("session history not found")

// Store implements game.Recorder on postgres.
type Store struct {
	db *sqlx.DB
}

var _ game.Recorder = (*Store)(nil)

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SessionStarted(ctx context.Context, row models.SnookerSession) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO snooker_sessions (id, mode, power_mode, started_at)
		VALUES (:id, :mode, :power_mode, :started_at)
		ON CONFLICT (id) DO NOTHING`, row)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", row.ID, err)
	}
	return nil
}

func (s *Store) SessionEnded(ctx context.Context, id, reason string, powerMode bool, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE snooker_sessions
		SET ended_at = $2, end_reason = $3, power_mode = power_mode OR $4
		WHERE id = $1 AND ended_at IS NULL`, id, at, reason, powerMode)
	if err != nil {
		return fmt.Errorf("end session %s: %w", id, err)
	}
	return nil
}

func (s *Store) BallPotted(ctx context.Context, e models.PotEvent) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO pot_events (session_id, ball_color, ball_role, foul, consecutive_coloured, created_at)
		VALUES (:session_id, :ball_color, :ball_role, :foul, :consecutive_coloured, :created_at)`, e)
	if err != nil {
		return fmt.Errorf("insert pot for %s: %w", e.SessionID, err)
	}
	return nil
}

// Summary loads a session and tallies its pots.
func (s *Store) Summary(ctx context.Context, id string) (*models.SessionSummary, error) {
	var session models.SnookerSession
	err := s.db.GetContext(ctx, &session, `
		SELECT id, mode, power_mode, started_at, ended_at, end_reason
		FROM snooker_sessions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var pots []models.PotEvent
	err = s.db.SelectContext(ctx, &pots, `
		SELECT id, session_id, ball_color, ball_role, foul, consecutive_coloured, created_at
		FROM pot_events WHERE session_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("load pots for %s: %w", id, err)
	}
	summary := Summarize(session, pots)
	return &summary, nil
}

// Summarize tallies pots in the order they happened.
func Summarize(session models.SnookerSession, pots []models.PotEvent) models.SessionSummary {
	out := models.SessionSummary{
		Session:   session,
		TotalPots: len(pots),
		ByColor:   make(map[string]int),
	}
	for _, p := range pots {
		out.ByColor[p.BallColor]++
		if p.Foul {
			out.Fouls++
		}
		switch {
		case p.BallRole == game.RoleCue.String():
			out.CueBallPotted++
		case game.Color(p.BallColor).IsColoured():
			out.ColouredPotted++
		case game.Color(p.BallColor) == game.ColorRed:
			out.RedsPotted++
		}
		if p.ConsecutiveColoured > out.BestStreak {
			out.BestStreak = p.ConsecutiveColoured
		}
	}
	return out
}
