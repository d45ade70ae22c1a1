package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/rl-prono/handlers"
	"github.com/Dosada05/rl-prono/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	League        *handlers.LeagueHandler
	Prediction    *handlers.PredictionHandler
	Leaderboard   *handlers.LeaderboardHandler
	Profile       *handlers.ProfileHandler
	PrivateLeague *handlers.PrivateLeagueHandler
	WebSocket     *handlers.WebSocketHandler
	Health        *handlers.HealthHandler
}

type Options struct {
	AllowedOrigins []string
	Auth           *middleware.Authenticator
	RateLimiter    *middleware.RateLimiter
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(middleware.StripQueryToken)
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Healthz)

	// ws живет дольше любого таймаута запроса, поэтому вне /api
	router.Group(func(r chi.Router) {
		r.Use(opts.Auth.AuthenticateWebSocket)
		r.Use(middleware.RequireSession)
		r.Get("/ws/notifications", h.WebSocket.ServeWs)
	})

	router.Route("/api", func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}
		r.Use(chiMiddleware.Timeout(15 * time.Second))
		r.Use(opts.Auth.Authenticate)

		// Публичные маршруты, сессия опциональна
		r.Get("/leagues", h.League.ListLeagues)
		r.Get("/leagues/{leagueID}/matches", h.League.ListLeagueMatches)
		r.Get("/teams", h.League.ListTeams)
		r.Get("/leaderboard", h.Leaderboard.GlobalLeaderboard)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)

			r.Get("/matches/{matchID}", h.Prediction.GetMatchDetails)
			r.Put("/matches/{matchID}/prediction", h.Prediction.SubmitPrediction)
			r.Get("/predictions", h.Prediction.ListMyPredictions)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", h.Profile.GetProfile)
				r.Patch("/", h.Profile.UpdateProfile)
				r.Post("/avatar", h.Profile.UploadAvatar)
			})

			r.Route("/private-leagues", func(r chi.Router) {
				r.Get("/", h.PrivateLeague.ListMine)
				r.Post("/", h.PrivateLeague.Create)
				r.Post("/join", h.PrivateLeague.Join)
				r.Get("/{leagueID}/leaderboard", h.PrivateLeague.Leaderboard)
				r.Post("/{leagueID}/invite-email", h.PrivateLeague.InviteByEmail)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
