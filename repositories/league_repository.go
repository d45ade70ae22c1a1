package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rl-prono/models"
	"github.com/google/uuid"
)

var ErrLeagueNotFound = errors.New("league not found")

type ListLeaguesFilter struct {
	Status *models.LeagueStatus
}

type LeagueRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.League, error)
	List(ctx context.Context, filter ListLeaguesFilter) ([]models.League, error)
}

type postgresLeagueRepository struct {
	db SQLExecutor
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

const leagueColumns = `id, name, short_name, description, status, prize_pool, start_date, end_date, logo_url, created_at`

func scanLeague(row interface{ Scan(...interface{}) error }, l *models.League) error {
	return row.Scan(
		&l.ID, &l.Name, &l.ShortName, &l.Description, &l.Status,
		&l.PrizePool, &l.StartDate, &l.EndDate, &l.LogoURL, &l.CreatedAt,
	)
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE id = $1`

	var l models.League
	if err := scanLeague(r.db.QueryRowContext(ctx, query, id), &l); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %s: %w", id, err)
	}
	return &l, nil
}

func (r *postgresLeagueRepository) List(ctx context.Context, filter ListLeaguesFilter) ([]models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues`
	args := []interface{}{}

	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	defer rows.Close()

	leagues := make([]models.League, 0)
	for rows.Next() {
		var l models.League
		if err := scanLeague(rows, &l); err != nil {
			return nil, fmt.Errorf("failed to scan league: %w", err)
		}
		leagues = append(leagues, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return leagues, nil
}
