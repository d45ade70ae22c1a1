package models

import (
	"time"

	"github.com/google/uuid"
)

type PrivateLeague struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	InviteCode      string    `json:"invite_code" db:"invite_code"`
	BasedOnLeagueID uuid.UUID `json:"based_on_league_id" db:"based_on_league_id"`
	CreatedBy       uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`

	MemberCount int `json:"member_count" db:"-"`
}

type PrivateLeagueMember struct {
	ID              uuid.UUID `json:"id" db:"id"`
	PrivateLeagueID uuid.UUID `json:"private_league_id" db:"private_league_id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	JoinedAt        time.Time `json:"joined_at" db:"joined_at"`
}
