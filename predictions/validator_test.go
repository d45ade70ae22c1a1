package predictions

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rules(vs []Violation) []Rule {
	out := make([]Rule, 0, len(vs))
	seen := map[Rule]bool{}
	for _, v := range vs {
		if !seen[v.Rule] {
			seen[v.Rule] = true
			out = append(out, v.Rule)
		}
	}
	return out
}

func TestValidateScore_LegalIffExactlyOneSideAtThreshold(t *testing.T) {
	for _, format := range []SeriesFormat{BestOf5, BestOf7} {
		threshold := format.WinThreshold()
		for a := 0; a <= threshold; a++ {
			for b := 0; b <= threshold; b++ {
				legal := (a == threshold && b < threshold) || (b == threshold && a < threshold)
				got := ValidateScore(format, a, b)
				assert.Equal(t, legal, len(got) == 0, "%s %d-%d: %v", format, a, b, got)
			}
		}
	}
}

func TestValidateScore_BestOf5(t *testing.T) {
	for _, s := range [][2]int{{3, 0}, {3, 1}, {3, 2}, {0, 3}, {1, 3}, {2, 3}} {
		assert.Empty(t, ValidateScore(BestOf5, s[0], s[1]), "%v should be legal", s)
	}

	t.Run("both at threshold", func(t *testing.T) {
		got := ValidateScore(BestOf5, 3, 3)
		assert.Equal(t, []Rule{RuleTwoWinners, RuleLoserTooHigh}, rules(got))
	})
	t.Run("no winner", func(t *testing.T) {
		assert.Equal(t, []Rule{RuleNoWinner}, rules(ValidateScore(BestOf5, 2, 2)))
	})
	t.Run("above threshold", func(t *testing.T) {
		got := ValidateScore(BestOf5, 4, 1)
		assert.Contains(t, rules(got), RuleAboveThreshold)
		assert.Contains(t, got[0].Message, "BO5: 3")
	})
	t.Run("negative", func(t *testing.T) {
		got := ValidateScore(BestOf5, -1, 3)
		assert.Equal(t, []Rule{RuleNegativeScore}, rules(got))
	})
}

func TestValidateScore_BestOf7(t *testing.T) {
	for loser := 0; loser < 4; loser++ {
		assert.Empty(t, ValidateScore(BestOf7, 4, loser))
		assert.Empty(t, ValidateScore(BestOf7, loser, 4))
	}
	assert.NotEmpty(t, ValidateScore(BestOf7, 4, 4))
	assert.NotEmpty(t, ValidateScore(BestOf7, 3, 1))
}

func TestValidateNamedScore_NamesTeams(t *testing.T) {
	got := ValidateNamedScore(BestOf5, 3, 3, Sides{A: "KC", B: "BDS"})
	var msgs []string
	for _, v := range got {
		msgs = append(msgs, v.Message)
	}
	assert.Contains(t, msgs, "If KC wins 3, BDS must have less than 3")
	assert.Contains(t, msgs, "If BDS wins 3, KC must have less than 3")
}

func TestIsEditable_Boundary(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	assert.True(t, IsEditable(now.Add(300*time.Second), now))
	assert.False(t, IsEditable(now.Add(299*time.Second), now))
	assert.True(t, IsEditable(now.Add(10*time.Minute), now))
	assert.False(t, IsEditable(now.Add(-time.Minute), now), "started matches are frozen")
}

func TestResolveWinner(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	got, ok := ResolveWinner(BestOf5, a, b, 3, 1)
	require.True(t, ok)
	assert.Equal(t, a, got)

	got, ok = ResolveWinner(BestOf7, a, b, 2, 4)
	require.True(t, ok)
	assert.Equal(t, b, got)

	_, ok = ResolveWinner(BestOf5, a, b, 3, 3)
	assert.False(t, ok)
}

func TestParseSeriesFormat(t *testing.T) {
	str := func(s string) *string { return &s }

	f, err := ParseSeriesFormat(str("BO5"))
	require.NoError(t, err)
	assert.Equal(t, BestOf5, f)

	f, err = ParseSeriesFormat(nil)
	require.NoError(t, err)
	assert.Equal(t, BestOf7, f)

	_, err = ParseSeriesFormat(str("bo3"))
	assert.ErrorIs(t, err, ErrUnknownSeriesFormat)
}

func TestScoreOptions(t *testing.T) {
	var got []string
	for _, o := range BestOf7.ScoreOptions() {
		got = append(got, o.String())
	}
	assert.Equal(t, []string{"4-0", "4-1", "4-2", "4-3"}, got)
	assert.Len(t, BestOf5.ScoreOptions(), 3)

	opt, err := ParseScoreOption("3-1")
	require.NoError(t, err)
	assert.Equal(t, ScoreOption{Winner: 3, Loser: 1}, opt)

	_, err = ParseScoreOption("3:1")
	assert.Error(t, err)
}
