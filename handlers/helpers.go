package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/rl-prono/middleware"
	"github.com/Dosada05/rl-prono/models"
	"github.com/Dosada05/rl-prono/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "the requested resource could not be found"
	}
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// predictionErrorResponse отдает форму вместе с ошибкой, чтобы клиент мог повторить отправку.
func predictionErrorResponse(w http.ResponseWriter, r *http.Request, perr *services.PredictionError) {
	var status int
	message := perr.Error()
	switch {
	case errors.Is(perr, services.ErrValidationFailed):
		status = http.StatusUnprocessableEntity
	case errors.Is(perr, services.ErrEditWindowClosed):
		status = http.StatusForbidden
	case errors.Is(perr, services.ErrMatchNotFound):
		status = http.StatusNotFound
	default:
		slog.ErrorContext(r.Context(), "prediction write failed", slog.Any("error", perr.Err))
		status = http.StatusBadGateway
		message = "could not save your prediction, please try again"
	}

	env := jsonResponse{"error": message, "form": perr.Form}
	if len(perr.Form.Violations) > 0 {
		env["violations"] = perr.Form.Violations
	}
	if err := writeJSON(w, status, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var perr *services.PredictionError
	if errors.As(err, &perr) {
		predictionErrorResponse(w, r, perr)
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrLeagueNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrPrivateLeagueNotFound),
		errors.Is(err, services.ErrInvalidInviteCode):
		notFoundResponse(w, r, err.Error())

	case errors.Is(err, services.ErrUsernameConflict),
		errors.Is(err, services.ErrAlreadyMember):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrUsernameInvalid),
		errors.Is(err, services.ErrDisplayNameLength),
		errors.Is(err, services.ErrLeagueNameInvalid),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidImageType):
		errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, services.ErrEditWindowClosed),
		errors.Is(err, services.ErrNotLeagueMember):
		forbiddenResponse(w, r, err.Error())

	case errors.Is(err, services.ErrAuthenticationFailed):
		unauthorizedResponse(w, r, err.Error())

	// Интеграция не настроена
	case errors.Is(err, services.ErrUploadsDisabled),
		errors.Is(err, services.ErrEmailDisabled):
		errorResponse(w, r, http.StatusServiceUnavailable, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}

func getUUIDFromURL(r *http.Request, paramName string) (uuid.UUID, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("missing %s in URL path", paramName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	return id, nil
}

// requireSession достает сессию; при отсутствии уже отправлен 401.
func requireSession(w http.ResponseWriter, r *http.Request) (models.Session, bool) {
	session, err := middleware.GetSessionFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return models.Session{}, false
	}
	return session, true
}
