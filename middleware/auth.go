package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/rl-prono/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// AccessClaims are the claims of a token issued by the auth store.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
	parser *jwt.Parser
	logger *slog.Logger
}

func NewAuthenticator(secret []byte, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		secret: secret,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		logger: logger,
	}
}

// ParseToken verifies signature and expiry and turns the claims into a Session.
func (a *Authenticator) ParseToken(raw string) (models.Session, error) {
	var claims AccessClaims
	_, err := a.parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Role != "" && claims.Role != models.RoleAuthenticated {
		return models.Session{}, fmt.Errorf("token role %q cannot act as a user", claims.Role)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Session{}, fmt.Errorf("invalid subject claim: %w", err)
	}
	return models.Session{UserID: userID, Email: claims.Email, Role: models.RoleAuthenticated}, nil
}

const queryTokenParam = "access_token"

// StripQueryToken removes access_token from the query string before anything
// downstream (request logging included) sees the URL. The value stays
// reachable only through AuthenticateWebSocket.
func StripQueryToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if !q.Has(queryTokenParam) {
			next.ServeHTTP(w, r)
			return
		}
		token := q.Get(queryTokenParam)
		q.Del(queryTokenParam)

		r = r.Clone(context.WithValue(r.Context(), queryTokenContextKey, token))
		r.URL.RawQuery = q.Encode()
		r.RequestURI = r.URL.RequestURI()
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", nil
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errors.New("malformed Authorization header")
	}
	return strings.TrimSpace(token), nil
}

// Browsers cannot set headers on a websocket handshake, so that route alone
// falls back to the query token.
func websocketToken(r *http.Request) (string, error) {
	raw, err := bearerToken(r)
	if err != nil || raw != "" {
		return raw, err
	}
	if token, ok := r.Context().Value(queryTokenContextKey).(string); ok {
		return token, nil
	}
	return r.URL.Query().Get(queryTokenParam), nil
}

// Authenticate attaches a Session when the request carries a valid bearer
// token. Requests without one pass through anonymously; a bad token is rejected.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return a.authenticate(bearerToken, next)
}

// AuthenticateWebSocket is Authenticate plus the access_token query fallback.
func (a *Authenticator) AuthenticateWebSocket(next http.Handler) http.Handler {
	return a.authenticate(websocketToken, next)
}

func (a *Authenticator) authenticate(extract func(*http.Request) (string, error), next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := extract(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := a.ParseToken(raw)
		if err != nil {
			a.logger.DebugContext(r.Context(), "rejected access token", slog.Any("error", err))
			writeError(w, http.StatusUnauthorized, "invalid or expired access token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireSession rejects anonymous requests.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
