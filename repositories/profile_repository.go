package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rl-prono/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrProfileNotFound         = errors.New("profile not found")
	ErrProfileUsernameConflict = errors.New("username already taken")
	ErrProfileTeamInvalid      = errors.New("favorite team does not exist")
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateAvatarURL(ctx context.Context, userID uuid.UUID, avatarURL *string) error
	// ListTop возвращает профили по убыванию очков.
	ListTop(ctx context.Context, limit int) ([]*models.Profile, error)
	ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*models.Profile, error)
	// RankOf - место пользователя: 1 + число профилей со строго большим счетом.
	RankOf(ctx context.Context, userID uuid.UUID) (int, error)
}

type postgresProfileRepository struct {
	db SQLExecutor
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

// Счетчики в profiles nullable, наружу отдаем нули.
const profileColumns = `
	p.id, p.user_id, p.username, p.display_name, p.avatar_url, p.favorite_team_id,
	COALESCE(p.total_points, 0), COALESCE(p.total_predictions, 0), COALESCE(p.correct_predictions, 0),
	COALESCE(p.current_streak, 0), COALESCE(p.best_streak, 0), p.created_at, p.updated_at`

func profileDest(p *models.Profile) []interface{} {
	return []interface{}{
		&p.ID, &p.UserID, &p.Username, &p.DisplayName, &p.AvatarURL, &p.FavoriteTeamID,
		&p.TotalPoints, &p.TotalPredictions, &p.CorrectPredictions,
		&p.CurrentStreak, &p.BestStreak, &p.CreatedAt, &p.UpdatedAt,
	}
}

func (r *postgresProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	query := `
	SELECT ` + profileColumns + `,
		t.id, t.name, t.short_name, t.color, t.region, t.logo_url, t.created_at
	FROM profiles p
	LEFT JOIN teams t ON t.id = p.favorite_team_id
	WHERE p.user_id = $1`

	var (
		p         models.Profile
		teamID    uuid.NullUUID
		teamName  sql.NullString
		teamShort sql.NullString
		team      models.Team
		teamAt    sql.NullTime
	)
	dest := append(profileDest(&p),
		&teamID, &teamName, &teamShort, &team.Color, &team.Region, &team.LogoURL, &teamAt)

	if err := r.db.QueryRowContext(ctx, query, userID).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}

	if teamID.Valid {
		team.ID = teamID.UUID
		team.Name = teamName.String
		team.ShortName = teamShort.String
		team.CreatedAt = teamAt.Time
		p.FavoriteTeam = &team
	}
	return &p, nil
}

func (r *postgresProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles SET
			username = $1,
			display_name = $2,
			favorite_team_id = $3,
			updated_at = now()
		WHERE user_id = $4
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		profile.Username, profile.DisplayName, profile.FavoriteTeamID, profile.UserID,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrProfileNotFound
		case pqErrorCode(err) == pqUniqueViolation:
			return ErrProfileUsernameConflict
		case pqErrorCode(err) == pqForeignKeyViolation:
			return ErrProfileTeamInvalid
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (r *postgresProfileRepository) UpdateAvatarURL(ctx context.Context, userID uuid.UUID, avatarURL *string) error {
	query := `UPDATE profiles SET avatar_url = $1, updated_at = now() WHERE user_id = $2`
	result, err := r.db.ExecContext(ctx, query, avatarURL, userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) ListTop(ctx context.Context, limit int) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles p
		ORDER BY COALESCE(p.total_points, 0) DESC, p.username ASC
		LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *postgresProfileRepository) ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*models.Profile, error) {
	if len(userIDs) == 0 {
		return []*models.Profile{}, nil
	}
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}
	query := `SELECT ` + profileColumns + ` FROM profiles p
		WHERE p.user_id = ANY($1::uuid[])
		ORDER BY COALESCE(p.total_points, 0) DESC, p.username ASC`
	return r.list(ctx, query, pq.Array(ids))
}

func (r *postgresProfileRepository) RankOf(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT 1 + count(*)
		FROM profiles o, profiles me
		WHERE me.user_id = $1 AND COALESCE(o.total_points, 0) > COALESCE(me.total_points, 0)`

	var rank int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&rank); err != nil {
		return 0, fmt.Errorf("failed to rank user %s: %w", userID, err)
	}
	return rank, nil
}

func (r *postgresProfileRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Profile, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0)
	for rows.Next() {
		p := &models.Profile{}
		if err := rows.Scan(profileDest(p)...); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}
