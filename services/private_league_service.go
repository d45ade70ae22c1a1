package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/Dosada05/rl-prono/models"
	"github.com/Dosada05/rl-prono/notifications"
	"github.com/Dosada05/rl-prono/repositories"
	"github.com/google/uuid"
)

// The store generates the code; collisions are rare, a few attempts suffice.
const inviteCodeAttempts = 3

type PrivateLeagueService interface {
	CreatePrivateLeague(ctx context.Context, session models.Session, input CreatePrivateLeagueInput) (*models.PrivateLeague, error)
	JoinByInviteCode(ctx context.Context, session models.Session, code string) (*models.PrivateLeague, error)
	ListMyPrivateLeagues(ctx context.Context, session models.Session) ([]*models.PrivateLeague, error)
	PrivateLeagueLeaderboard(ctx context.Context, session models.Session, leagueID uuid.UUID) (*PrivateLeagueStandings, error)
	InviteByEmail(ctx context.Context, session models.Session, leagueID uuid.UUID, email string) error
}

type CreatePrivateLeagueInput struct {
	Name            string    `json:"name"`
	BasedOnLeagueID uuid.UUID `json:"based_on_league_id"`
}

type PrivateLeagueStandings struct {
	League      *models.PrivateLeague `json:"league"`
	Leaderboard models.Leaderboard    `json:"leaderboard"`
}

type privateLeagueService struct {
	privateLeagueRepo repositories.PrivateLeagueRepository
	leagueRepo        repositories.LeagueRepository
	profileRepo       repositories.ProfileRepository
	mailer            InviteMailer
	notifier          Notifier
	logger            *slog.Logger
}

// NewPrivateLeagueService accepts a nil mailer; InviteByEmail then reports ErrEmailDisabled.
func NewPrivateLeagueService(
	privateLeagueRepo repositories.PrivateLeagueRepository,
	leagueRepo repositories.LeagueRepository,
	profileRepo repositories.ProfileRepository,
	mailer InviteMailer,
	notifier Notifier,
	logger *slog.Logger,
) PrivateLeagueService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &privateLeagueService{
		privateLeagueRepo: privateLeagueRepo,
		leagueRepo:        leagueRepo,
		profileRepo:       profileRepo,
		mailer:            mailer,
		notifier:          notifier,
		logger:            logger,
	}
}

func normalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *privateLeagueService) CreatePrivateLeague(ctx context.Context, session models.Session, input CreatePrivateLeagueInput) (*models.PrivateLeague, error) {
	name := strings.TrimSpace(input.Name)
	if n := utf8.RuneCountInString(name); n == 0 || n > 50 {
		return nil, ErrLeagueNameInvalid
	}
	if _, err := s.leagueRepo.GetByID(ctx, input.BasedOnLeagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}

	league := &models.PrivateLeague{
		Name:            name,
		BasedOnLeagueID: input.BasedOnLeagueID,
		CreatedBy:       session.UserID,
	}
	for attempt := 1; ; attempt++ {
		code, err := s.privateLeagueRepo.GenerateInviteCode(ctx)
		if err != nil {
			return nil, err
		}
		league.InviteCode = code

		err = s.privateLeagueRepo.CreateWithOwner(ctx, league)
		if err == nil {
			return league, nil
		}
		switch {
		case errors.Is(err, repositories.ErrInviteCodeConflict) && attempt < inviteCodeAttempts:
			s.logger.WarnContext(ctx, "invite code collision, retrying", slog.Int("attempt", attempt))
			continue
		case errors.Is(err, repositories.ErrPrivateLeagueBaseLeague):
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to create private league: %w", err)
	}
}

func (s *privateLeagueService) JoinByInviteCode(ctx context.Context, session models.Session, code string) (*models.PrivateLeague, error) {
	code = normalizeInviteCode(code)
	if code == "" {
		return nil, ErrInvalidInviteCode
	}

	league, err := s.privateLeagueRepo.GetByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrPrivateLeagueNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, err
	}

	// One insert: the unique index rejects a repeated join.
	if _, err := s.privateLeagueRepo.AddMember(ctx, nil, league.ID, session.UserID); err != nil {
		if errors.Is(err, repositories.ErrAlreadyMember) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to join private league: %w", err)
	}
	league.MemberCount++

	s.notifier.Notify(session.UserID, notifications.TypePrivateLeagueJoin, map[string]interface{}{
		"league_id": league.ID,
		"name":      league.Name,
	})
	return league, nil
}

func (s *privateLeagueService) ListMyPrivateLeagues(ctx context.Context, session models.Session) ([]*models.PrivateLeague, error) {
	leagues, err := s.privateLeagueRepo.ListByMember(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list private leagues: %w", err)
	}
	return leagues, nil
}

func (s *privateLeagueService) memberLeague(ctx context.Context, session models.Session, leagueID uuid.UUID) (*models.PrivateLeague, error) {
	league, err := s.privateLeagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrPrivateLeagueNotFound) {
			return nil, ErrPrivateLeagueNotFound
		}
		return nil, err
	}
	ok, err := s.privateLeagueRepo.IsMember(ctx, leagueID, session.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotLeagueMember
	}
	return league, nil
}

// PrivateLeagueLeaderboard ranks members by their global points.
func (s *privateLeagueService) PrivateLeagueLeaderboard(ctx context.Context, session models.Session, leagueID uuid.UUID) (*PrivateLeagueStandings, error) {
	league, err := s.memberLeague(ctx, session, leagueID)
	if err != nil {
		return nil, err
	}

	memberIDs, err := s.privateLeagueRepo.ListMemberIDs(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	profiles, err := s.profileRepo.ListByUserIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load member profiles: %w", err)
	}

	board := models.Leaderboard{Entries: rankProfiles(profiles)}
	for i := range board.Entries {
		if board.Entries[i].UserID == session.UserID {
			me := board.Entries[i]
			board.Me = &me
			break
		}
	}
	league.MemberCount = len(memberIDs)
	return &PrivateLeagueStandings{League: league, Leaderboard: board}, nil
}

func (s *privateLeagueService) InviteByEmail(ctx context.Context, session models.Session, leagueID uuid.UUID, email string) error {
	if s.mailer == nil {
		return ErrEmailDisabled
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}

	league, err := s.memberLeague(ctx, session, leagueID)
	if err != nil {
		return err
	}

	inviter := session.Email
	if profile, err := s.profileRepo.GetByUserID(ctx, session.UserID); err == nil {
		inviter = profile.Name()
	}

	if err := s.mailer.SendPrivateLeagueInvite(addr.Address, league.Name, inviter, league.InviteCode); err != nil {
		s.logger.ErrorContext(ctx, "failed to send invite email",
			slog.String("league_id", leagueID.String()), slog.Any("error", err))
		return fmt.Errorf("failed to send invite: %w", err)
	}
	return nil
}
