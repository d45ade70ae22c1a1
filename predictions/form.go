package predictions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/rl-prono/models"
	"github.com/google/uuid"
)

var (
	ErrTeamNotInMatch     = errors.New("selected team does not play in this match")
	ErrNoTeamSelected     = errors.New("select a team before choosing a score")
	ErrFormNotValid       = errors.New("prediction form is not valid")
	ErrEditWindowClosed   = errors.New("predictions cannot be changed less than 5 minutes before the match")
	ErrAlreadySubmitted   = errors.New("prediction form was already submitted")
	ErrInvalidScoreOption = errors.New("score option is not offered for this format")
)

// FormState is the lifecycle of one prediction-authoring session.
type FormState int

const (
	StateNoSelection FormState = iota
	StateTeamSelected
	StateScoreChosen
	StateInvalid
	StateValid
	StateSubmitted
)

var formStateNames = map[FormState]string{
	StateNoSelection:  "no_selection",
	StateTeamSelected: "team_selected",
	StateScoreChosen:  "score_chosen",
	StateInvalid:      "invalid",
	StateValid:        "valid",
	StateSubmitted:    "submitted",
}

func (s FormState) String() string {
	if name, ok := formStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("FormState(%d)", int(s))
}

func (s FormState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Draft is what a submitted form hands to the store.
type Draft struct {
	MatchID  uuid.UUID
	WinnerID uuid.UUID
	ScoreA   int
	ScoreB   int
}

// Form holds the selected team and score for a single match.
type Form struct {
	matchID     uuid.UUID
	teamA       uuid.UUID
	teamB       uuid.UUID
	sides       Sides
	format      SeriesFormat
	scheduledAt time.Time

	state      FormState
	selected   uuid.UUID
	scoreA     int
	scoreB     int
	violations []Violation
}

func NewForm(match *models.Match) (*Form, error) {
	format, err := ParseSeriesFormat(match.MatchType)
	if err != nil {
		return nil, err
	}
	sides := DefaultSides
	if match.TeamA != nil && match.TeamA.ShortName != "" {
		sides.A = match.TeamA.ShortName
	}
	if match.TeamB != nil && match.TeamB.ShortName != "" {
		sides.B = match.TeamB.ShortName
	}
	return &Form{
		matchID:     match.ID,
		teamA:       match.TeamAID,
		teamB:       match.TeamBID,
		sides:       sides,
		format:      format,
		scheduledAt: match.ScheduledAt,
		state:       StateNoSelection,
	}, nil
}

func (f *Form) State() FormState { return f.state }
func (f *Form) Format() SeriesFormat { return f.format }
func (f *Form) Violations() []Violation { return f.violations }
func (f *Form) Score() (int, int) { return f.scoreA, f.scoreB }
func (f *Form) Editable(now time.Time) bool { return IsEditable(f.scheduledAt, now) }

// SelectedTeam returns uuid.Nil when no team is selected.
func (f *Form) SelectedTeam() uuid.UUID {
	return f.selected
}

// Prefill restores a stored prediction into the form.
func (f *Form) Prefill(p *models.Prediction) {
	if p == nil || !(p.PredictedWinnerID == f.teamA || p.PredictedWinnerID == f.teamB) {
		return
	}
	f.selected = p.PredictedWinnerID
	f.scoreA, f.scoreB = p.PredictedScoreA, p.PredictedScoreB
	f.state = StateScoreChosen
	f.Validate()
}

// SelectTeam picks one side; picking the selected side again clears it.
func (f *Form) SelectTeam(teamID uuid.UUID) error {
	if f.state == StateSubmitted {
		return ErrAlreadySubmitted
	}
	if teamID != f.teamA && teamID != f.teamB {
		return ErrTeamNotInMatch
	}
	if f.selected == teamID {
		f.reset()
		return nil
	}
	f.selected = teamID
	f.scoreA, f.scoreB = 0, 0
	f.violations = nil
	f.state = StateTeamSelected
	return nil
}

// ChooseOption applies a winner-loser button, oriented onto the selected team.
func (f *Form) ChooseOption(opt ScoreOption) error {
	if f.selected == uuid.Nil {
		return ErrNoTeamSelected
	}
	offered := false
	for _, o := range f.format.ScoreOptions() {
		if o == opt {
			offered = true
			break
		}
	}
	if !offered {
		return fmt.Errorf("%w: %s in %s", ErrInvalidScoreOption, opt, f.format.Label())
	}
	if f.selected == f.teamA {
		return f.ChooseScore(opt.Winner, opt.Loser)
	}
	return f.ChooseScore(opt.Loser, opt.Winner)
}

// ChooseScore sets the raw series score, side A first.
func (f *Form) ChooseScore(scoreA, scoreB int) error {
	if f.state == StateSubmitted {
		return ErrAlreadySubmitted
	}
	if f.selected == uuid.Nil {
		return ErrNoTeamSelected
	}
	f.scoreA, f.scoreB = scoreA, scoreB
	f.violations = nil
	f.state = StateScoreChosen
	return nil
}

// Validate moves a chosen score to Valid or Invalid and returns what failed.
func (f *Form) Validate() []Violation {
	switch f.state {
	case StateScoreChosen, StateInvalid, StateValid:
	default:
		return f.violations
	}

	violations := ValidateNamedScore(f.format, f.scoreA, f.scoreB, f.sides)
	if len(violations) == 0 {
		winner, _ := ResolveWinner(f.format, f.teamA, f.teamB, f.scoreA, f.scoreB)
		if winner != f.selected {
			violations = append(violations, Violation{RuleWinnerMismatch,
				fmt.Sprintf("The selected team must be the one reaching %d wins", f.format.WinThreshold())})
		}
	}

	f.violations = violations
	if len(violations) > 0 {
		f.state = StateInvalid
	} else {
		f.state = StateValid
	}
	return violations
}

// Submit sends a valid form through write. The edit window is checked
// against now right before the write; a failed write leaves the form
// Valid with its team and score intact.
func (f *Form) Submit(ctx context.Context, now time.Time, write func(context.Context, Draft) error) error {
	if f.state == StateSubmitted {
		return ErrAlreadySubmitted
	}
	if f.state != StateValid {
		return ErrFormNotValid
	}
	if !IsEditable(f.scheduledAt, now) {
		return ErrEditWindowClosed
	}

	winner, _ := ResolveWinner(f.format, f.teamA, f.teamB, f.scoreA, f.scoreB)
	draft := Draft{MatchID: f.matchID, WinnerID: winner, ScoreA: f.scoreA, ScoreB: f.scoreB}
	if err := write(ctx, draft); err != nil {
		f.state = StateValid
		return err
	}
	f.state = StateSubmitted
	return nil
}

func (f *Form) reset() {
	f.selected = uuid.Nil
	f.scoreA, f.scoreB = 0, 0
	f.violations = nil
	f.state = StateNoSelection
}
