package services

import (
	"context"
	"strings"
	"testing"

	"github.com/Dosada05/rl-prono/models"
	"github.com/Dosada05/rl-prono/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	p := profileWithPoints("rocket", 0)
	repo := newFakeProfileRepo(p)
	svc := NewProfileService(repo, nil, nil)
	session := models.Session{UserID: p.UserID}
	team := uuid.New()

	got, err := svc.UpdateProfile(context.Background(), session, UpdateProfileInput{
		Username:       strPtr("  league_fan "),
		DisplayName:    strPtr("League Fan"),
		FavoriteTeamID: &team,
	})
	require.NoError(t, err)
	assert.Equal(t, "league_fan", got.Username)
	assert.Equal(t, "League Fan", got.Name())
	require.NotNil(t, got.FavoriteTeamID)
	assert.Equal(t, team, *got.FavoriteTeamID)

	got, err = svc.UpdateProfile(context.Background(), session, UpdateProfileInput{DisplayName: strPtr(""), ClearFavoriteTeam: true})
	require.NoError(t, err)
	assert.Nil(t, got.DisplayName)
	assert.Nil(t, got.FavoriteTeamID)
}

func TestUpdateProfile_Errors(t *testing.T) {
	p := profileWithPoints("rocket", 0)
	repo := newFakeProfileRepo(p)
	svc := NewProfileService(repo, nil, nil)
	session := models.Session{UserID: p.UserID}
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, session, UpdateProfileInput{Username: strPtr("ab")})
	assert.ErrorIs(t, err, ErrUsernameInvalid)

	_, err = svc.UpdateProfile(ctx, session, UpdateProfileInput{DisplayName: strPtr(strings.Repeat("x", 51))})
	assert.ErrorIs(t, err, ErrDisplayNameLength)

	repo.updateErr = repositories.ErrProfileUsernameConflict
	_, err = svc.UpdateProfile(ctx, session, UpdateProfileInput{Username: strPtr("taken")})
	assert.ErrorIs(t, err, ErrUsernameConflict)

	repo.updateErr = repositories.ErrProfileTeamInvalid
	_, err = svc.UpdateProfile(ctx, session, UpdateProfileInput{Username: strPtr("taken")})
	assert.ErrorIs(t, err, ErrTeamNotFound)

	_, err = svc.GetProfile(ctx, models.Session{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUploadAvatar_ReplacesPreviousObject(t *testing.T) {
	uploader := newFakeUploader()
	p := profileWithPoints("rocket", 0)
	p.AvatarURL = strPtr(uploader.base + "avatars/old.png")
	repo := newFakeProfileRepo(p)
	svc := NewProfileService(repo, uploader, nil)

	got, err := svc.UploadAvatar(context.Background(), models.Session{UserID: p.UserID}, strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	require.NotNil(t, got.AvatarURL)
	assert.True(t, strings.HasPrefix(*got.AvatarURL, uploader.base+"avatars/"+p.UserID.String()+"/"))
	assert.True(t, strings.HasSuffix(*got.AvatarURL, ".png"))
	assert.Len(t, uploader.uploaded, 1)
	assert.Equal(t, []string{"avatars/old.png"}, uploader.deleted)
	assert.Equal(t, got.AvatarURL, repo.profiles[p.UserID].AvatarURL)
}

func TestUploadAvatar_ForeignURLIsKept(t *testing.T) {
	uploader := newFakeUploader()
	p := profileWithPoints("rocket", 0)
	p.AvatarURL = strPtr("https://lh3.googleusercontent.com/a/xyz")
	svc := NewProfileService(newFakeProfileRepo(p), uploader, nil)

	_, err := svc.UploadAvatar(context.Background(), models.Session{UserID: p.UserID}, strings.NewReader("x"), "image/webp")
	require.NoError(t, err)
	assert.Empty(t, uploader.deleted)
}

func TestUploadAvatar_Rejections(t *testing.T) {
	p := profileWithPoints("rocket", 0)
	session := models.Session{UserID: p.UserID}

	_, err := NewProfileService(newFakeProfileRepo(p), nil, nil).UploadAvatar(context.Background(), session, strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, ErrUploadsDisabled)

	_, err = NewProfileService(newFakeProfileRepo(p), newFakeUploader(), nil).UploadAvatar(context.Background(), session, strings.NewReader("x"), "application/pdf")
	assert.ErrorIs(t, err, ErrInvalidImageType)
}
