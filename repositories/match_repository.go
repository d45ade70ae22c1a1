package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rl-prono/models"
	"github.com/google/uuid"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]*models.Match, error)
}

type postgresMatchRepository struct {
	db SQLExecutor
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

// Обе команды обязательны, турнир и лига могут отсутствовать.
const matchSelect = `
	SELECT
		m.id, m.tournament_id, m.team_a_id, m.team_b_id, m.match_type, m.stage, m.status,
		m.scheduled_at, m.team_a_score, m.team_b_score, m.winner_id, m.created_at, m.updated_at,
		ta.id, ta.name, ta.short_name, ta.color, ta.region, ta.logo_url, ta.created_at,
		tb.id, tb.name, tb.short_name, tb.color, tb.region, tb.logo_url, tb.created_at,
		tr.name, l.short_name
	FROM matches m
	JOIN teams ta ON ta.id = m.team_a_id
	JOIN teams tb ON tb.id = m.team_b_id
	LEFT JOIN tournaments tr ON tr.id = m.tournament_id
	LEFT JOIN leagues l ON l.id = tr.league_id`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var (
		m               models.Match
		teamA, teamB    models.Team
		tournamentName  sql.NullString
		leagueShortName sql.NullString
	)
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.TeamAID, &m.TeamBID, &m.MatchType, &m.Stage, &m.Status,
		&m.ScheduledAt, &m.TeamAScore, &m.TeamBScore, &m.WinnerID, &m.CreatedAt, &m.UpdatedAt,
		&teamA.ID, &teamA.Name, &teamA.ShortName, &teamA.Color, &teamA.Region, &teamA.LogoURL, &teamA.CreatedAt,
		&teamB.ID, &teamB.Name, &teamB.ShortName, &teamB.Color, &teamB.Region, &teamB.LogoURL, &teamB.CreatedAt,
		&tournamentName, &leagueShortName,
	)
	if err != nil {
		return nil, err
	}
	m.TeamA = &teamA
	m.TeamB = &teamB
	m.TournamentName = nullableString(tournamentName)
	m.LeagueShortName = nullableString(leagueShortName)
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	query := matchSelect + ` WHERE m.id = $1`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

// ListByLeague возвращает все матчи турниров лиги, ранние первыми.
func (r *postgresMatchRepository) ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]*models.Match, error) {
	query := matchSelect + ` WHERE tr.league_id = $1 ORDER BY m.scheduled_at ASC`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for league %s: %w", leagueID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
