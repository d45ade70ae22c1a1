package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/rl-prono/middleware"
	"github.com/Dosada05/rl-prono/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(ls services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls}
}

func (h *LeaderboardHandler) GlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := services.DefaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequestResponse(w, r, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	session, _ := middleware.SessionFromContext(r.Context())
	board, err := h.leaderboardService.GlobalLeaderboard(r.Context(), session, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, board, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
