package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Dosada05/rl-prono/models"
	"github.com/Dosada05/rl-prono/repositories"
	"github.com/Dosada05/rl-prono/storage"
	"github.com/google/uuid"
)

type ProfileService interface {
	GetProfile(ctx context.Context, session models.Session) (*models.Profile, error)
	UpdateProfile(ctx context.Context, session models.Session, input UpdateProfileInput) (*models.Profile, error)
	UploadAvatar(ctx context.Context, session models.Session, file io.Reader, contentType string) (*models.Profile, error)
}

// UpdateProfileInput: nil fields are left unchanged.
type UpdateProfileInput struct {
	Username          *string    `json:"username"`
	DisplayName       *string    `json:"display_name"`
	FavoriteTeamID    *uuid.UUID `json:"favorite_team_id"`
	ClearFavoriteTeam bool       `json:"clear_favorite_team"`
}

type profileService struct {
	profileRepo repositories.ProfileRepository
	uploader    storage.FileUploader
	logger      *slog.Logger
}

// NewProfileService accepts a nil uploader; avatar upload then reports ErrUploadsDisabled.
func NewProfileService(profileRepo repositories.ProfileRepository, uploader storage.FileUploader, logger *slog.Logger) ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &profileService{
		profileRepo: profileRepo,
		uploader:    uploader,
		logger:      logger,
	}
}

func (s *profileService) GetProfile(ctx context.Context, session models.Session) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, session models.Session, input UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.GetProfile(ctx, session)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if n := utf8.RuneCountInString(username); n < 3 || n > 30 {
			return nil, ErrUsernameInvalid
		}
		profile.Username = username
	}
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if utf8.RuneCountInString(name) > 50 {
			return nil, ErrDisplayNameLength
		}
		if name == "" {
			profile.DisplayName = nil
		} else {
			profile.DisplayName = &name
		}
	}
	switch {
	case input.ClearFavoriteTeam:
		profile.FavoriteTeamID = nil
	case input.FavoriteTeamID != nil:
		profile.FavoriteTeamID = input.FavoriteTeamID
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		switch {
		case errors.Is(err, repositories.ErrProfileUsernameConflict):
			return nil, ErrUsernameConflict
		case errors.Is(err, repositories.ErrProfileTeamInvalid):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrProfileNotFound):
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	// Re-read to return the current favorite team.
	return s.GetProfile(ctx, session)
}

func (s *profileService) UploadAvatar(ctx context.Context, session models.Session, file io.Reader, contentType string) (*models.Profile, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, session)
	if err != nil {
		return nil, err
	}

	key := storage.AvatarKey(session.UserID, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.profileRepo.UpdateAvatarURL(ctx, session.UserID, &result.Location); err != nil {
		// The file is uploaded but the URL was not saved, clean it up.
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned avatar", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("failed to save avatar url: %w", err)
	}

	if oldKey, ok := storage.KeyFromPublicURL(s.uploader, derefString(profile.AvatarURL)); ok {
		if err := s.uploader.Delete(ctx, oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to remove previous avatar", slog.String("key", oldKey), slog.Any("error", err))
		}
	}

	profile.AvatarURL = &result.Location
	return profile, nil
}
