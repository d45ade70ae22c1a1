package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/rl-prono/models"
	"github.com/Dosada05/rl-prono/predictions"
	"github.com/Dosada05/rl-prono/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type MatchService interface {
	GetMatchDetails(ctx context.Context, session models.Session, matchID uuid.UUID) (*MatchDetails, error)
}

// MatchDetails is the match page: the match itself plus a form pre-populated
// with the caller's existing prediction.
type MatchDetails struct {
	Match      *models.Match      `json:"match"`
	Prediction *models.Prediction `json:"prediction"`
	Form       FormView           `json:"form"`
}

type matchService struct {
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	now            Clock
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	now Clock,
) MatchService {
	return &matchService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		now:            now,
	}
}

func (s *matchService) GetMatchDetails(ctx context.Context, session models.Session, matchID uuid.UUID) (*MatchDetails, error) {
	var (
		match      *models.Match
		prediction *models.Prediction
	)

	// The match and the prediction are independent, read them in parallel.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.matchRepo.GetByID(gctx, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("failed to get match %s: %w", matchID, err)
		}
		match = m
		return nil
	})
	g.Go(func() error {
		p, err := s.predictionRepo.GetByUserAndMatch(gctx, session.UserID, matchID)
		if err != nil && !errors.Is(err, repositories.ErrPredictionNotFound) {
			return fmt.Errorf("failed to get prediction: %w", err)
		}
		prediction = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	form, err := predictions.NewForm(match)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", matchID, err)
	}
	form.Prefill(prediction)

	return &MatchDetails{
		Match:      match,
		Prediction: prediction,
		Form:       newFormView(form, s.now()),
	}, nil
}
