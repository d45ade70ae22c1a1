package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dosada05/rl-prono/models"
)

type contextKey string

const (
	sessionContextKey    contextKey = "session"
	queryTokenContextKey contextKey = "query_token"
)

var ErrNoSession = errors.New("no authenticated session in context")

func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext returns the session placed by Authenticate, if any.
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(models.Session)
	if !ok {
		return nil, false
	}
	return &s, true
}

func GetSessionFromContext(ctx context.Context) (models.Session, error) {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return models.Session{}, ErrNoSession
	}
	return *s, nil
}

// writeError uses the same error envelope as the handlers package.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
