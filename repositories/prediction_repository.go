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
	ErrPredictionNotFound     = errors.New("prediction not found")
	ErrPredictionMatchInvalid = errors.New("prediction references an unknown match or team")
)

type PredictionRepository interface {
	// Upsert создает или обновляет прогноз пользователя на матч.
	// created == true, если строка была вставлена, а не обновлена.
	Upsert(ctx context.Context, p *models.Prediction) (created bool, err error)
	GetByUserAndMatch(ctx context.Context, userID, matchID uuid.UUID) (*models.Prediction, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Prediction, error)
	ListByUserForMatches(ctx context.Context, userID uuid.UUID, matchIDs []uuid.UUID) (map[uuid.UUID]*models.Prediction, error)
}

type postgresPredictionRepository struct {
	db SQLExecutor
}

func NewPostgresPredictionRepository(db *sql.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

const predictionColumns = `
	p.id, p.user_id, p.match_id, p.predicted_winner_id, p.predicted_score_a, p.predicted_score_b,
	p.confidence_level, p.is_correct, p.points_earned, p.created_at, p.updated_at`

func predictionDest(p *models.Prediction) []interface{} {
	return []interface{}{
		&p.ID, &p.UserID, &p.MatchID, &p.PredictedWinnerID, &p.PredictedScoreA, &p.PredictedScoreB,
		&p.ConfidenceLevel, &p.IsCorrect, &p.PointsEarned, &p.CreatedAt, &p.UpdatedAt,
	}
}

// Upsert опирается на уникальность (user_id, match_id): побеждает последняя запись.
func (r *postgresPredictionRepository) Upsert(ctx context.Context, p *models.Prediction) (bool, error) {
	query := `
		INSERT INTO predictions (user_id, match_id, predicted_winner_id, predicted_score_a, predicted_score_b, confidence_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, match_id) DO UPDATE SET
			predicted_winner_id = EXCLUDED.predicted_winner_id,
			predicted_score_a = EXCLUDED.predicted_score_a,
			predicted_score_b = EXCLUDED.predicted_score_b,
			confidence_level = EXCLUDED.confidence_level,
			updated_at = now()
		RETURNING id, is_correct, points_earned, created_at, updated_at, (xmax = 0) AS inserted`

	var created bool
	err := r.db.QueryRowContext(ctx, query,
		p.UserID, p.MatchID, p.PredictedWinnerID, p.PredictedScoreA, p.PredictedScoreB, p.ConfidenceLevel,
	).Scan(&p.ID, &p.IsCorrect, &p.PointsEarned, &p.CreatedAt, &p.UpdatedAt, &created)
	if err != nil {
		if pqErrorCode(err) == pqForeignKeyViolation {
			return false, ErrPredictionMatchInvalid
		}
		return false, fmt.Errorf("failed to upsert prediction: %w", err)
	}
	return created, nil
}

func (r *postgresPredictionRepository) GetByUserAndMatch(ctx context.Context, userID, matchID uuid.UUID) (*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions p WHERE p.user_id = $1 AND p.match_id = $2`

	var p models.Prediction
	if err := r.db.QueryRowContext(ctx, query, userID, matchID).Scan(predictionDest(&p)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return &p, nil
}

// prefixedScanner кладет первые колонки строки в prefix, остальные отдает дальше.
type prefixedScanner struct {
	row    interface{ Scan(...interface{}) error }
	prefix []interface{}
}

func (s prefixedScanner) Scan(dest ...interface{}) error {
	return s.row.Scan(append(s.prefix, dest...)...)
}

// ListByUser возвращает прогнозы пользователя вместе с матчем, новые первыми.
func (r *postgresPredictionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Prediction, error) {
	query := `
	SELECT ` + predictionColumns + `,
		m.id, m.tournament_id, m.team_a_id, m.team_b_id, m.match_type, m.stage, m.status,
		m.scheduled_at, m.team_a_score, m.team_b_score, m.winner_id, m.created_at, m.updated_at,
		ta.id, ta.name, ta.short_name, ta.color, ta.region, ta.logo_url, ta.created_at,
		tb.id, tb.name, tb.short_name, tb.color, tb.region, tb.logo_url, tb.created_at,
		tr.name, l.short_name
	FROM predictions p
	JOIN matches m ON m.id = p.match_id
	JOIN teams ta ON ta.id = m.team_a_id
	JOIN teams tb ON tb.id = m.team_b_id
	LEFT JOIN tournaments tr ON tr.id = m.tournament_id
	LEFT JOIN leagues l ON l.id = tr.league_id
	WHERE p.user_id = $1
	ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions for user %s: %w", userID, err)
	}
	defer rows.Close()

	predictions := make([]*models.Prediction, 0)
	for rows.Next() {
		p := &models.Prediction{}
		m, err := scanMatch(prefixedScanner{row: rows, prefix: predictionDest(p)})
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		p.Match = m
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return predictions, nil
}

// ListByUserForMatches - пакетный вариант GetByUserAndMatch для списков матчей.
func (r *postgresPredictionRepository) ListByUserForMatches(ctx context.Context, userID uuid.UUID, matchIDs []uuid.UUID) (map[uuid.UUID]*models.Prediction, error) {
	result := make(map[uuid.UUID]*models.Prediction, len(matchIDs))
	if len(matchIDs) == 0 {
		return result, nil
	}

	ids := make([]string, len(matchIDs))
	for i, id := range matchIDs {
		ids[i] = id.String()
	}

	query := `SELECT ` + predictionColumns + ` FROM predictions p WHERE p.user_id = $1 AND p.match_id = ANY($2::uuid[])`
	rows, err := r.db.QueryContext(ctx, query, userID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions for matches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &models.Prediction{}
		if err := rows.Scan(predictionDest(p)...); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		result[p.MatchID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
