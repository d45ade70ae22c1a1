package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus mirrors the lifecycle column owned by the store.
type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

type Match struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	TournamentID *uuid.UUID  `json:"tournament_id,omitempty" db:"tournament_id"`
	TeamAID      uuid.UUID   `json:"team_a_id" db:"team_a_id"`
	TeamBID      uuid.UUID   `json:"team_b_id" db:"team_b_id"`
	MatchType    *string     `json:"match_type,omitempty" db:"match_type"`
	Stage        *string     `json:"stage,omitempty" db:"stage"`
	Status       MatchStatus `json:"status" db:"status"`
	ScheduledAt  time.Time   `json:"scheduled_at" db:"scheduled_at"`
	TeamAScore   *int        `json:"team_a_score,omitempty" db:"team_a_score"`
	TeamBScore   *int        `json:"team_b_score,omitempty" db:"team_b_score"`
	WinnerID     *uuid.UUID  `json:"winner_id,omitempty" db:"winner_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`

	// Filled by JOIN, not stored in the matches table
	TeamA           *Team   `json:"team_a,omitempty" db:"-"`
	TeamB           *Team   `json:"team_b,omitempty" db:"-"`
	TournamentName  *string `json:"tournament_name,omitempty" db:"-"`
	LeagueShortName *string `json:"league_short_name,omitempty" db:"-"`
}

// Involves reports whether teamID is one of the two sides of the match.
func (m *Match) Involves(teamID uuid.UUID) bool {
	return m.TeamAID == teamID || m.TeamBID == teamID
}
