package predictions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/rl-prono/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var formNow = time.Date(2026, 3, 14, 19, 50, 0, 0, time.UTC)

func newTestMatch(format string, startsIn time.Duration) *models.Match {
	return &models.Match{
		ID:          uuid.New(),
		TeamAID:     uuid.New(),
		TeamBID:     uuid.New(),
		MatchType:   &format,
		ScheduledAt: formNow.Add(startsIn),
		TeamA:       &models.Team{ShortName: "KC"},
		TeamB:       &models.Team{ShortName: "BDS"},
	}
}

func TestForm_SelectTeamToggles(t *testing.T) {
	m := newTestMatch("bo5", 10*time.Minute)
	f, err := NewForm(m)
	require.NoError(t, err)
	assert.Equal(t, StateNoSelection, f.State())

	require.NoError(t, f.SelectTeam(m.TeamAID))
	assert.Equal(t, StateTeamSelected, f.State())

	require.NoError(t, f.SelectTeam(m.TeamAID))
	assert.Equal(t, StateNoSelection, f.State())
	assert.Equal(t, uuid.Nil, f.SelectedTeam())

	assert.ErrorIs(t, f.SelectTeam(uuid.New()), ErrTeamNotInMatch)
}

func TestForm_ScoreRequiresTeam(t *testing.T) {
	f, err := NewForm(newTestMatch("bo5", 10*time.Minute))
	require.NoError(t, err)

	assert.ErrorIs(t, f.ChooseOption(ScoreOption{Winner: 3, Loser: 1}), ErrNoTeamSelected)
	assert.ErrorIs(t, f.ChooseScore(3, 1), ErrNoTeamSelected)
}

func TestForm_OptionIsOrientedOnSelectedTeam(t *testing.T) {
	m := newTestMatch("bo7", 10*time.Minute)
	f, err := NewForm(m)
	require.NoError(t, err)

	require.NoError(t, f.SelectTeam(m.TeamBID))
	require.NoError(t, f.ChooseOption(ScoreOption{Winner: 4, Loser: 2}))
	a, b := f.Score()
	assert.Equal(t, 2, a)
	assert.Equal(t, 4, b)

	assert.Empty(t, f.Validate())
	assert.Equal(t, StateValid, f.State())

	assert.ErrorIs(t, f.ChooseOption(ScoreOption{Winner: 3, Loser: 1}), ErrInvalidScoreOption)
}

func TestForm_InvalidAndBackToValid(t *testing.T) {
	m := newTestMatch("bo5", 10*time.Minute)
	f, err := NewForm(m)
	require.NoError(t, err)
	require.NoError(t, f.SelectTeam(m.TeamAID))

	require.NoError(t, f.ChooseScore(3, 3))
	assert.NotEmpty(t, f.Validate())
	assert.Equal(t, StateInvalid, f.State())

	require.NoError(t, f.ChooseScore(3, 2))
	assert.Empty(t, f.Validate())
	assert.Equal(t, StateValid, f.State())
}

func TestForm_WinnerMustBeSelectedTeam(t *testing.T) {
	m := newTestMatch("bo5", 10*time.Minute)
	f, err := NewForm(m)
	require.NoError(t, err)
	require.NoError(t, f.SelectTeam(m.TeamAID))
	require.NoError(t, f.ChooseScore(1, 3))

	got := f.Validate()
	require.Len(t, got, 1)
	assert.Equal(t, RuleWinnerMismatch, got[0].Rule)
}

func TestForm_SubmitChecksWindowAtSubmitTime(t *testing.T) {
	m := newTestMatch("bo5", 10*time.Minute)
	f, err := NewForm(m)
	require.NoError(t, err)
	require.NoError(t, f.SelectTeam(m.TeamAID))
	require.NoError(t, f.ChooseOption(ScoreOption{Winner: 3, Loser: 1}))
	require.Empty(t, f.Validate())
	require.True(t, f.Editable(formNow))

	called := false
	write := func(context.Context, Draft) error { called = true; return nil }

	// the window closed while the form was open
	err = f.Submit(context.Background(), formNow.Add(7*time.Minute), write)
	assert.ErrorIs(t, err, ErrEditWindowClosed)
	assert.False(t, called)
	assert.Equal(t, StateValid, f.State())
}

func TestForm_SubmitFailurePreservesSelection(t *testing.T) {
	m := newTestMatch("bo5", 10*time.Minute)
	f, err := NewForm(m)
	require.NoError(t, err)
	require.NoError(t, f.SelectTeam(m.TeamAID))
	require.NoError(t, f.ChooseOption(ScoreOption{Winner: 3, Loser: 1}))
	require.Empty(t, f.Validate())

	boom := errors.New("store unavailable")
	err = f.Submit(context.Background(), formNow, func(context.Context, Draft) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateValid, f.State())
	assert.Equal(t, m.TeamAID, f.SelectedTeam())
	a, b := f.Score()
	assert.Equal(t, [2]int{3, 1}, [2]int{a, b})

	var got Draft
	err = f.Submit(context.Background(), formNow, func(_ context.Context, d Draft) error { got = d; return nil })
	require.NoError(t, err)
	assert.Equal(t, StateSubmitted, f.State())
	assert.Equal(t, Draft{MatchID: m.ID, WinnerID: m.TeamAID, ScoreA: 3, ScoreB: 1}, got)
}

func TestForm_SubmitRequiresValid(t *testing.T) {
	m := newTestMatch("bo5", 10*time.Minute)
	f, err := NewForm(m)
	require.NoError(t, err)
	require.NoError(t, f.SelectTeam(m.TeamAID))
	require.NoError(t, f.ChooseScore(2, 2))

	err = f.Submit(context.Background(), formNow, func(context.Context, Draft) error { return nil })
	assert.ErrorIs(t, err, ErrFormNotValid)
}

func TestForm_Prefill(t *testing.T) {
	m := newTestMatch("bo5", 10*time.Minute)
	f, err := NewForm(m)
	require.NoError(t, err)

	f.Prefill(&models.Prediction{PredictedWinnerID: m.TeamAID, PredictedScoreA: 3, PredictedScoreB: 1})
	assert.Equal(t, StateValid, f.State())
	assert.Equal(t, m.TeamAID, f.SelectedTeam())
}
