package models

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	UserID             uuid.UUID  `json:"user_id" db:"user_id"`
	Username           string     `json:"username" db:"username"`
	DisplayName        *string    `json:"display_name,omitempty" db:"display_name"`
	AvatarURL          *string    `json:"avatar_url,omitempty" db:"avatar_url"`
	FavoriteTeamID     *uuid.UUID `json:"favorite_team_id,omitempty" db:"favorite_team_id"`
	TotalPoints        int        `json:"total_points" db:"total_points"`
	TotalPredictions   int        `json:"total_predictions" db:"total_predictions"`
	CorrectPredictions int        `json:"correct_predictions" db:"correct_predictions"`
	CurrentStreak      int        `json:"current_streak" db:"current_streak"`
	BestStreak         int        `json:"best_streak" db:"best_streak"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`

	FavoriteTeam *Team `json:"favorite_team,omitempty" db:"-"`
}

// Name is what leaderboards show: the display name when set, the username otherwise.
func (p *Profile) Name() string {
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	return p.Username
}
