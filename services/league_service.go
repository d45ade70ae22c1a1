package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/rl-prono/models"
	"github.com/Dosada05/rl-prono/predictions"
	"github.com/Dosada05/rl-prono/repositories"
	"github.com/google/uuid"
)

type LeagueService interface {
	ListLeagues(ctx context.Context) (*LeaguesOverview, error)
	ListLeagueMatches(ctx context.Context, session *models.Session, leagueID uuid.UUID) (*LeagueMatches, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
}

// LeaguesOverview is what the home screen and the league picker show.
type LeaguesOverview struct {
	Active   *models.League  `json:"active"`
	Upcoming []models.League `json:"upcoming"`
	All      []models.League `json:"leagues"`
}

// MatchCard is one row of a league's schedule, with the caller's pick if any.
type MatchCard struct {
	Match      *models.Match      `json:"match"`
	Prediction *models.Prediction `json:"prediction"`
	Editable   bool               `json:"editable"`
}

type LeagueMatches struct {
	League  *models.League `json:"league"`
	Matches []MatchCard    `json:"matches"`
}

type leagueService struct {
	leagueRepo     repositories.LeagueRepository
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	teamRepo       repositories.TeamRepository
	now            Clock
}

func NewLeagueService(
	leagueRepo repositories.LeagueRepository,
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	teamRepo repositories.TeamRepository,
	now Clock,
) LeagueService {
	return &leagueService{
		leagueRepo:     leagueRepo,
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		teamRepo:       teamRepo,
		now:            now,
	}
}

func (s *leagueService) ListLeagues(ctx context.Context) (*LeaguesOverview, error) {
	leagues, err := s.leagueRepo.List(ctx, repositories.ListLeaguesFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}

	overview := &LeaguesOverview{All: leagues, Upcoming: []models.League{}}
	for i := range leagues {
		switch {
		case leagues[i].HasStatus(models.LeagueStatusActive) && overview.Active == nil:
			overview.Active = &leagues[i]
		case leagues[i].HasStatus(models.LeagueStatusUpcoming):
			overview.Upcoming = append(overview.Upcoming, leagues[i])
		}
	}
	return overview, nil
}

// ListLeagueMatches works without a session; with one, each card carries the
// caller's existing prediction.
func (s *leagueService) ListLeagueMatches(ctx context.Context, session *models.Session, leagueID uuid.UUID) (*LeagueMatches, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}

	matches, err := s.matchRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for league %s: %w", leagueID, err)
	}

	var picks map[uuid.UUID]*models.Prediction
	if session != nil && len(matches) > 0 {
		ids := make([]uuid.UUID, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		picks, err = s.predictionRepo.ListByUserForMatches(ctx, session.UserID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load predictions: %w", err)
		}
	}

	now := s.now()
	cards := make([]MatchCard, 0, len(matches))
	for _, m := range matches {
		cards = append(cards, MatchCard{
			Match:      m,
			Prediction: picks[m.ID],
			Editable:   predictions.IsEditable(m.ScheduledAt, now),
		})
	}
	return &LeagueMatches{League: league, Matches: cards}, nil
}

func (s *leagueService) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}
