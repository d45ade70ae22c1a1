package models

import (
	"time"

	"github.com/google/uuid"
)

// LeagueStatus представляет статусы лиги, как они хранятся в таблице leagues.
type LeagueStatus string

const (
	LeagueStatusActive    LeagueStatus = "active"
	LeagueStatusUpcoming  LeagueStatus = "upcoming"
	LeagueStatusCompleted LeagueStatus = "completed"
)

type League struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	ShortName   string        `json:"short_name" db:"short_name"`
	Description *string       `json:"description,omitempty" db:"description"`
	Status      *LeagueStatus `json:"status,omitempty" db:"status"`
	PrizePool   *float64      `json:"prize_pool,omitempty" db:"prize_pool"`
	StartDate   *time.Time    `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time    `json:"end_date,omitempty" db:"end_date"`
	LogoURL     *string       `json:"logo_url,omitempty" db:"logo_url"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// HasStatus ложно для лиг с NULL в колонке status.
func (l League) HasStatus(status LeagueStatus) bool {
	return l.Status != nil && *l.Status == status
}
