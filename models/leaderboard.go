package models

import "github.com/google/uuid"

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Points      int       `json:"points"`
	Correct     int       `json:"correct_predictions"`
	Total       int       `json:"total_predictions"`
}

type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	Me      *LeaderboardEntry  `json:"me,omitempty"`
}
