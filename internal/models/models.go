package models

import (
	"database/sql"
	"time"
)

// SnookerSession is one row of snooker_sessions
type SnookerSession struct {
	ID        string         `db:"id" json:"id"`
	Mode      int            `db:"mode" json:"mode"`
	PowerMode bool           `db:"power_mode" json:"power_mode"`
	StartedAt time.Time      `db:"started_at" json:"started_at"`
	EndedAt   sql.NullTime   `db:"ended_at" json:"ended_at,omitempty"`
	EndReason sql.NullString `db:"end_reason" json:"end_reason,omitempty"`
}

// PotEvent records a single ball going down a pocket
type PotEvent struct {
	ID                  int       `db:"id" json:"id"`
	SessionID           string    `db:"session_id" json:"session_id"`
	BallColor           string    `db:"ball_color" json:"ball_color"`
	BallRole            string    `db:"ball_role" json:"ball_role"`
	Foul                bool      `db:"foul" json:"foul"`
	ConsecutiveColoured int       `db:"consecutive_coloured" json:"consecutive_coloured"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// SessionSummary aggregates the pot history of a session
type SessionSummary struct {
	Session        SnookerSession `json:"session"`
	TotalPots      int            `json:"total_pots"`
	Fouls          int            `json:"fouls"`
	RedsPotted     int            `json:"reds_potted"`
	CueBallPotted  int            `json:"cue_ball_potted"`
	ColouredPotted int            `json:"coloured_potted"`
	BestStreak     int            `json:"best_coloured_streak"`
	ByColor        map[string]int `json:"by_color"`
}
