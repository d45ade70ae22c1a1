package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/rl-prono/models"
	"github.com/Dosada05/rl-prono/repositories"
)

const (
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 200
)

type LeaderboardService interface {
	GlobalLeaderboard(ctx context.Context, session *models.Session, limit int) (*models.Leaderboard, error)
}

type leaderboardService struct {
	profileRepo repositories.ProfileRepository
}

func NewLeaderboardService(profileRepo repositories.ProfileRepository) LeaderboardService {
	return &leaderboardService{profileRepo: profileRepo}
}

func (s *leaderboardService) GlobalLeaderboard(ctx context.Context, session *models.Session, limit int) (*models.Leaderboard, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	profiles, err := s.profileRepo.ListTop(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	board := &models.Leaderboard{Entries: rankProfiles(profiles)}
	if session == nil {
		return board, nil
	}

	for i := range board.Entries {
		if board.Entries[i].UserID == session.UserID {
			me := board.Entries[i]
			board.Me = &me
			return board, nil
		}
	}

	// За пределами топа: берем профиль и считаем место отдельно.
	profile, err := s.profileRepo.GetByUserID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return board, nil
		}
		return nil, fmt.Errorf("failed to load own profile: %w", err)
	}
	rank, err := s.profileRepo.RankOf(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	me := leaderboardEntry(profile, rank)
	board.Me = &me
	return board, nil
}
