package predictions

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EditCutoff is how long before the scheduled start a prediction freezes.
const EditCutoff = 5 * time.Minute

var ErrUnknownSeriesFormat = errors.New("unknown series format")

// SeriesFormat is the best-of-N format stored in matches.match_type.
type SeriesFormat string

const (
	BestOf5 SeriesFormat = "bo5"
	BestOf7 SeriesFormat = "bo7"
)

// ParseSeriesFormat reads a match_type column value. NULL or empty is a
// best-of-7, anything other than bo5/bo7 is rejected.
func ParseSeriesFormat(raw *string) (SeriesFormat, error) {
	if raw == nil {
		return BestOf7, nil
	}
	switch strings.ToLower(strings.TrimSpace(*raw)) {
	case "bo5":
		return BestOf5, nil
	case "bo7", "":
		return BestOf7, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSeriesFormat, *raw)
	}
}

// WinThreshold is the number of game wins that takes the series.
func (f SeriesFormat) WinThreshold() int {
	if f == BestOf5 {
		return 3
	}
	return 4
}

func (f SeriesFormat) Label() string {
	return strings.ToUpper(string(f))
}

// ScoreOption is one "winner-loser" button offered by the prediction form.
type ScoreOption struct {
	Winner int `json:"winner"`
	Loser  int `json:"loser"`
}

func (o ScoreOption) String() string {
	return fmt.Sprintf("%d-%d", o.Winner, o.Loser)
}

// ParseScoreOption accepts the "3-1" notation used by the score buttons.
func ParseScoreOption(s string) (ScoreOption, error) {
	var o ScoreOption
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return o, fmt.Errorf("invalid score %q: expected winner-loser", s)
	}
	if _, err := fmt.Sscanf(parts[0]+" "+parts[1], "%d %d", &o.Winner, &o.Loser); err != nil {
		return o, fmt.Errorf("invalid score %q: %w", s, err)
	}
	return o, nil
}

// ScoreOptions lists every legal winner-loser score for the format.
func (f SeriesFormat) ScoreOptions() []ScoreOption {
	threshold := f.WinThreshold()
	options := make([]ScoreOption, 0, threshold)
	for loser := 0; loser < threshold; loser++ {
		options = append(options, ScoreOption{Winner: threshold, Loser: loser})
	}
	return options
}

// Rule identifies which legality check a score failed.
type Rule int

const (
	RuleNegativeScore Rule = iota + 1
	RuleAboveThreshold
	RuleNoWinner
	RuleTwoWinners
	RuleLoserTooHigh
	RuleWinnerMismatch
)

var ruleNames = map[Rule]string{
	RuleNegativeScore:  "negative_score",
	RuleAboveThreshold: "above_threshold",
	RuleNoWinner:       "no_winner",
	RuleTwoWinners:     "two_winners",
	RuleLoserTooHigh:   "loser_too_high",
	RuleWinnerMismatch: "winner_mismatch",
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rule(%d)", int(r))
}

func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

type Violation struct {
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

func (v Violation) Error() string {
	return v.Message
}

// Sides names the two participants in violation messages.
type Sides struct {
	A string
	B string
}

var DefaultSides = Sides{A: "Team A", B: "Team B"}

// ValidateScore checks a proposed series score against the format.
// Every rule runs; the result is empty only for a legal score.
func ValidateScore(format SeriesFormat, scoreA, scoreB int) []Violation {
	return ValidateNamedScore(format, scoreA, scoreB, DefaultSides)
}

func ValidateNamedScore(format SeriesFormat, scoreA, scoreB int, sides Sides) []Violation {
	threshold := format.WinThreshold()
	var violations []Violation

	if scoreA < 0 || scoreB < 0 {
		violations = append(violations, Violation{RuleNegativeScore, "Scores cannot be negative"})
	}
	if scoreA > threshold || scoreB > threshold {
		violations = append(violations, Violation{RuleAboveThreshold,
			fmt.Sprintf("Maximum score for a %s: %d", format.Label(), threshold)})
	}
	if scoreA != threshold && scoreB != threshold {
		violations = append(violations, Violation{RuleNoWinner,
			fmt.Sprintf("One of the scores must be %d to win a %s", threshold, format.Label())})
	}
	if scoreA == threshold && scoreB == threshold {
		violations = append(violations, Violation{RuleTwoWinners, "Both teams cannot have the winning score"})
	}
	// checked per side so each message names the team concerned
	if scoreA == threshold && scoreB >= threshold {
		violations = append(violations, Violation{RuleLoserTooHigh,
			fmt.Sprintf("If %s wins %d, %s must have less than %d", sides.A, threshold, sides.B, threshold)})
	}
	if scoreB == threshold && scoreA >= threshold {
		violations = append(violations, Violation{RuleLoserTooHigh,
			fmt.Sprintf("If %s wins %d, %s must have less than %d", sides.B, threshold, sides.A, threshold)})
	}

	return violations
}

// IsEditable reports whether a prediction may still be created or changed.
func IsEditable(scheduledAt, now time.Time) bool {
	return scheduledAt.Sub(now) >= EditCutoff
}

// ResolveWinner returns the side whose score reaches the format's threshold.
// The result is only meaningful for a score ValidateScore accepted.
func ResolveWinner(format SeriesFormat, teamAID, teamBID uuid.UUID, scoreA, scoreB int) (uuid.UUID, bool) {
	threshold := format.WinThreshold()
	switch {
	case scoreA == threshold && scoreB < threshold:
		return teamAID, true
	case scoreB == threshold && scoreA < threshold:
		return teamBID, true
	default:
		return uuid.Nil, false
	}
}
