package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/rl-prono/models"
	"github.com/Dosada05/rl-prono/predictions"
	"github.com/google/uuid"
)

// Clock returns the current time; tests swap it for a fixed one.
type Clock func() time.Time

// Notifier pushes short messages to a user's open sockets.
type Notifier interface {
	Notify(userID uuid.UUID, msgType string, payload interface{}) int
}

type noopNotifier struct{}

func (noopNotifier) Notify(uuid.UUID, string, interface{}) int { return 0 }

// FormView is the serializable state of a prediction form.
type FormView struct {
	State          predictions.FormState     `json:"state"`
	Format         predictions.SeriesFormat  `json:"format"`
	SelectedTeamID *uuid.UUID                `json:"selected_team_id,omitempty"`
	ScoreA         int                       `json:"score_a"`
	ScoreB         int                       `json:"score_b"`
	Editable       bool                      `json:"editable"`
	Violations     []predictions.Violation   `json:"violations,omitempty"`
	ScoreOptions   []predictions.ScoreOption `json:"score_options"`
}

func newFormView(f *predictions.Form, now time.Time) FormView {
	a, b := f.Score()
	view := FormView{
		State:        f.State(),
		Format:       f.Format(),
		ScoreA:       a,
		ScoreB:       b,
		Editable:     f.Editable(now),
		Violations:   f.Violations(),
		ScoreOptions: f.Format().ScoreOptions(),
	}
	if team := f.SelectedTeam(); team != uuid.Nil {
		view.SelectedTeamID = &team
	}
	return view
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// rankProfiles uses competition ranking over profiles sorted by points:
// equal points share a rank and the next rank skips (1, 2, 2, 4). This is the
// same number RankOf reports for a user outside the listed top.
func rankProfiles(profiles []*models.Profile) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(profiles))
	rank := 0
	for i, p := range profiles {
		if i == 0 || p.TotalPoints != profiles[i-1].TotalPoints {
			rank = i + 1
		}
		entries = append(entries, leaderboardEntry(p, rank))
	}
	return entries
}

func leaderboardEntry(p *models.Profile, rank int) models.LeaderboardEntry {
	return models.LeaderboardEntry{
		Rank:        rank,
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: p.Name(),
		AvatarURL:   p.AvatarURL,
		Points:      p.TotalPoints,
		Correct:     p.CorrectPredictions,
		Total:       p.TotalPredictions,
	}
}

func GetExtensionFromContentType(contentType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrInvalidImageType, contentType)
	}
}
