package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/rl-prono/models"
	"github.com/Dosada05/rl-prono/notifications"
	"github.com/Dosada05/rl-prono/predictions"
	"github.com/Dosada05/rl-prono/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type PredictionService interface {
	SubmitPrediction(ctx context.Context, session models.Session, matchID uuid.UUID, input SubmitPredictionInput) (*SubmitResult, error)
	ListUserPredictions(ctx context.Context, session models.Session) (*UserPredictions, error)
}

// SubmitPredictionInput takes either a "3-1" style option oriented on the
// winner, or the raw series score.
type SubmitPredictionInput struct {
	WinnerID uuid.UUID `json:"predicted_winner_id"`
	Option   string    `json:"score_option,omitempty"`
	ScoreA   *int      `json:"predicted_score_a,omitempty"`
	ScoreB   *int      `json:"predicted_score_b,omitempty"`
}

type SubmitResult struct {
	Prediction *models.Prediction `json:"prediction"`
	Created    bool               `json:"created"`
	Form       FormView           `json:"form"`
}

type UserPredictions struct {
	Predictions []*models.Prediction   `json:"predictions"`
	Stats       models.PredictionStats `json:"stats"`
}

// A shared write may have other identical callers waiting on it, so it does
// not follow the first caller's cancellation.
const predictionWriteTimeout = 10 * time.Second

type upsertResult struct {
	prediction *models.Prediction
	created    bool
}

type predictionService struct {
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	notifier       Notifier
	now            Clock
	logger         *slog.Logger
	inflight       singleflight.Group
}

func NewPredictionService(
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	notifier Notifier,
	now Clock,
	logger *slog.Logger,
) PredictionService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &predictionService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		notifier:       notifier,
		now:            now,
		logger:         logger,
	}
}

func (s *predictionService) SubmitPrediction(ctx context.Context, session models.Session, matchID uuid.UUID, input SubmitPredictionInput) (*SubmitResult, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}

	form, err := predictions.NewForm(match)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", matchID, err)
	}

	fail := func(err error) (*SubmitResult, error) {
		return nil, &PredictionError{Err: err, Form: newFormView(form, s.now())}
	}

	if err := s.fillForm(form, input); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrValidationFailed, err))
	}
	if violations := form.Validate(); len(violations) > 0 {
		return fail(fmt.Errorf("%w: %s", ErrValidationFailed, violations[0].Message))
	}
	if !form.Editable(s.now()) {
		return fail(ErrEditWindowClosed)
	}

	var res upsertResult
	write := func(ctx context.Context, d predictions.Draft) error {
		var err error
		res, err = s.upsert(ctx, session.UserID, d)
		return err
	}
	// The edit window is checked again right before the write.
	if err := form.Submit(ctx, s.now(), write); err != nil {
		s.logger.WarnContext(ctx, "prediction submit failed",
			slog.String("user_id", session.UserID.String()),
			slog.String("match_id", matchID.String()),
			slog.Any("error", err))
		return fail(err)
	}

	msgType := notifications.TypePredictionUpdated
	if res.created {
		msgType = notifications.TypePredictionSaved
	}
	s.notifier.Notify(session.UserID, msgType, res.prediction)

	return &SubmitResult{
		Prediction: res.prediction,
		Created:    res.created,
		Form:       newFormView(form, s.now()),
	}, nil
}

func (s *predictionService) fillForm(form *predictions.Form, input SubmitPredictionInput) error {
	if err := form.SelectTeam(input.WinnerID); err != nil {
		return err
	}
	if input.Option != "" {
		opt, err := predictions.ParseScoreOption(input.Option)
		if err != nil {
			return err
		}
		return form.ChooseOption(opt)
	}
	if input.ScoreA == nil || input.ScoreB == nil {
		return errors.New("a score option or both scores are required")
	}
	return form.ChooseScore(*input.ScoreA, *input.ScoreB)
}

// upsert collapses identical concurrent writes for the same user and match.
func (s *predictionService) upsert(ctx context.Context, userID uuid.UUID, d predictions.Draft) (upsertResult, error) {
	key := fmt.Sprintf("%s:%s:%s:%d-%d", userID, d.MatchID, d.WinnerID, d.ScoreA, d.ScoreB)
	v, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), predictionWriteTimeout)
		defer cancel()

		p := &models.Prediction{
			UserID:            userID,
			MatchID:           d.MatchID,
			PredictedWinnerID: d.WinnerID,
			PredictedScoreA:   d.ScoreA,
			PredictedScoreB:   d.ScoreB,
			ConfidenceLevel:   models.DefaultConfidenceLevel,
		}
		created, err := s.predictionRepo.Upsert(writeCtx, p)
		if err != nil {
			if errors.Is(err, repositories.ErrPredictionMatchInvalid) {
				return nil, ErrMatchNotFound
			}
			return nil, fmt.Errorf("failed to save prediction: %w", err)
		}
		return upsertResult{prediction: p, created: created}, nil
	})
	if err != nil {
		return upsertResult{}, err
	}
	return v.(upsertResult), nil
}

func (s *predictionService) ListUserPredictions(ctx context.Context, session models.Session) (*UserPredictions, error) {
	list, err := s.predictionRepo.ListByUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return &UserPredictions{Predictions: list, Stats: predictionStats(list)}, nil
}

func predictionStats(list []*models.Prediction) models.PredictionStats {
	stats := models.PredictionStats{Total: len(list)}
	for _, p := range list {
		switch {
		case p.Pending():
			stats.Pending++
		case *p.IsCorrect:
			stats.Correct++
		}
		if p.PointsEarned != nil {
			stats.TotalPoints += *p.PointsEarned
		}
	}
	return stats
}
