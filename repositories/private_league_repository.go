package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rl-prono/models"
	"github.com/google/uuid"
)

var (
	ErrPrivateLeagueNotFound   = errors.New("private league not found")
	ErrInviteCodeConflict      = errors.New("invite code already in use")
	ErrAlreadyMember           = errors.New("user is already a member of this league")
	ErrPrivateLeagueBaseLeague = errors.New("base league does not exist")
)

type PrivateLeagueRepository interface {
	// GenerateInviteCode вызывает функцию generate_invite_code() на стороне БД.
	GenerateInviteCode(ctx context.Context) (string, error)
	// CreateWithOwner создает лигу и добавляет создателя в участники одной транзакцией.
	CreateWithOwner(ctx context.Context, league *models.PrivateLeague) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PrivateLeague, error)
	GetByInviteCode(ctx context.Context, code string) (*models.PrivateLeague, error)
	AddMember(ctx context.Context, exec SQLExecutor, leagueID, userID uuid.UUID) (*models.PrivateLeagueMember, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.PrivateLeague, error)
	IsMember(ctx context.Context, leagueID, userID uuid.UUID) (bool, error)
	ListMemberIDs(ctx context.Context, leagueID uuid.UUID) ([]uuid.UUID, error)
}

type postgresPrivateLeagueRepository struct {
	db *sql.DB
}

func NewPostgresPrivateLeagueRepository(db *sql.DB) PrivateLeagueRepository {
	return &postgresPrivateLeagueRepository{db: db}
}

func (r *postgresPrivateLeagueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPrivateLeagueRepository) GenerateInviteCode(ctx context.Context) (string, error) {
	var code string
	if err := r.db.QueryRowContext(ctx, `SELECT generate_invite_code()`).Scan(&code); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	return code, nil
}

func (r *postgresPrivateLeagueRepository) CreateWithOwner(ctx context.Context, league *models.PrivateLeague) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query := `
		INSERT INTO private_leagues (name, invite_code, based_on_league_id, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		league.Name, league.InviteCode, league.BasedOnLeagueID, league.CreatedBy,
	).Scan(&league.ID, &league.CreatedAt, &league.UpdatedAt)
	if err != nil {
		switch pqErrorCode(err) {
		case pqUniqueViolation:
			return ErrInviteCodeConflict
		case pqForeignKeyViolation:
			return ErrPrivateLeagueBaseLeague
		}
		return fmt.Errorf("failed to create private league: %w", err)
	}

	if _, err = r.AddMember(ctx, tx, league.ID, league.CreatedBy); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit private league: %w", err)
	}
	league.MemberCount = 1
	return nil
}

const privateLeagueSelect = `
	SELECT pl.id, pl.name, pl.invite_code, pl.based_on_league_id, pl.created_by, pl.created_at, pl.updated_at,
		(SELECT count(*) FROM private_league_members c WHERE c.private_league_id = pl.id)
	FROM private_leagues pl`

func scanPrivateLeague(row interface{ Scan(...interface{}) error }) (*models.PrivateLeague, error) {
	var pl models.PrivateLeague
	err := row.Scan(&pl.ID, &pl.Name, &pl.InviteCode, &pl.BasedOnLeagueID, &pl.CreatedBy,
		&pl.CreatedAt, &pl.UpdatedAt, &pl.MemberCount)
	if err != nil {
		return nil, err
	}
	return &pl, nil
}

func (r *postgresPrivateLeagueRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.PrivateLeague, error) {
	pl, err := scanPrivateLeague(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPrivateLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get private league: %w", err)
	}
	return pl, nil
}

func (r *postgresPrivateLeagueRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PrivateLeague, error) {
	return r.getOne(ctx, privateLeagueSelect+` WHERE pl.id = $1`, id)
}

func (r *postgresPrivateLeagueRepository) GetByInviteCode(ctx context.Context, code string) (*models.PrivateLeague, error) {
	return r.getOne(ctx, privateLeagueSelect+` WHERE pl.invite_code = $1`, code)
}

// AddMember - одна вставка; повтор отсекает ограничение (private_league_id, user_id).
func (r *postgresPrivateLeagueRepository) AddMember(ctx context.Context, exec SQLExecutor, leagueID, userID uuid.UUID) (*models.PrivateLeagueMember, error) {
	query := `
		INSERT INTO private_league_members (private_league_id, user_id)
		VALUES ($1, $2)
		RETURNING id, joined_at`

	member := &models.PrivateLeagueMember{PrivateLeagueID: leagueID, UserID: userID}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, leagueID, userID).Scan(&member.ID, &member.JoinedAt)
	if err != nil {
		switch pqErrorCode(err) {
		case pqUniqueViolation:
			return nil, ErrAlreadyMember
		case pqForeignKeyViolation:
			return nil, ErrPrivateLeagueNotFound
		}
		return nil, fmt.Errorf("failed to add league member: %w", err)
	}
	return member, nil
}

func (r *postgresPrivateLeagueRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.PrivateLeague, error) {
	query := privateLeagueSelect + `
	WHERE pl.id = ANY(get_user_league_ids($1))
	ORDER BY pl.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list private leagues: %w", err)
	}
	defer rows.Close()

	leagues := make([]*models.PrivateLeague, 0)
	for rows.Next() {
		pl, err := scanPrivateLeague(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan private league: %w", err)
		}
		leagues = append(leagues, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return leagues, nil
}

func (r *postgresPrivateLeagueRepository) IsMember(ctx context.Context, leagueID, userID uuid.UUID) (bool, error) {
	var member bool
	if err := r.db.QueryRowContext(ctx, `SELECT is_league_member($1, $2)`, leagueID, userID).Scan(&member); err != nil {
		return false, fmt.Errorf("failed to check league membership: %w", err)
	}
	return member, nil
}

func (r *postgresPrivateLeagueRepository) ListMemberIDs(ctx context.Context, leagueID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM private_league_members WHERE private_league_id = $1 ORDER BY joined_at`
	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list league members: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
