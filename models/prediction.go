package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultConfidenceLevel is written with every prediction; the client never asks for it.
const DefaultConfidenceLevel = 1

type Prediction struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"user_id" db:"user_id"`
	MatchID           uuid.UUID `json:"match_id" db:"match_id"`
	PredictedWinnerID uuid.UUID `json:"predicted_winner_id" db:"predicted_winner_id"`
	PredictedScoreA   int       `json:"predicted_score_a" db:"predicted_score_a"`
	PredictedScoreB   int       `json:"predicted_score_b" db:"predicted_score_b"`
	ConfidenceLevel   int       `json:"confidence_level" db:"confidence_level"`
	// IsCorrect and PointsEarned are set by the store once the match is over
	IsCorrect    *bool     `json:"is_correct" db:"is_correct"`
	PointsEarned *int      `json:"points_earned,omitempty" db:"points_earned"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Match *Match `json:"match,omitempty" db:"-"`
}

// Pending is true until the store has graded the prediction.
func (p *Prediction) Pending() bool {
	return p.IsCorrect == nil
}

type PredictionStats struct {
	Total       int `json:"total"`
	Correct     int `json:"correct"`
	Pending     int `json:"pending"`
	TotalPoints int `json:"total_points"`
}
