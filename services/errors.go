package services

import (
	"errors"

	"github.com/Dosada05/rl-prono/predictions"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed  = errors.New("validation failed")
	ErrEditWindowClosed  = predictions.ErrEditWindowClosed
	ErrUsernameInvalid   = errors.New("username must be between 3 and 30 characters")
	ErrDisplayNameLength = errors.New("display name must be at most 50 characters")
	ErrLeagueNameInvalid = errors.New("league name must be between 1 and 50 characters")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidImageType  = errors.New("unsupported image type")

	// Ошибки конфликтов
	ErrUsernameConflict = errors.New("username is already in use")
	ErrAlreadyMember    = errors.New("you are already a member of this league")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotLeagueMember      = errors.New("only league members can perform this action")

	// Ошибки, специфичные для сущностей
	ErrMatchNotFound         = errors.New("match not found")
	ErrLeagueNotFound        = errors.New("league not found")
	ErrTeamNotFound          = errors.New("team not found")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrPrivateLeagueNotFound = errors.New("private league not found")
	ErrInvalidInviteCode     = errors.New("invalid invite code")

	// Отключенные интеграции
	ErrUploadsDisabled = errors.New("file uploads are not configured")
	ErrEmailDisabled   = errors.New("email delivery is not configured")
)

// PredictionError несет форму в том виде, в каком она была при неудачной
// отправке: клиент показывает нарушения или повторяет запрос без повторного ввода.
type PredictionError struct {
	Err  error
	Form FormView
}

func (e *PredictionError) Error() string {
	return e.Err.Error()
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}
