package handlers

import (
	"net/http"

	"github.com/Dosada05/rl-prono/middleware"
	"github.com/Dosada05/rl-prono/services"
)

type LeagueHandler struct {
	leagueService services.LeagueService
}

func NewLeagueHandler(ls services.LeagueService) *LeagueHandler {
	return &LeagueHandler{leagueService: ls}
}

func (h *LeagueHandler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	overview, err := h.leagueService.ListLeagues(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, overview, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListLeagueMatches works anonymously; with a session each card carries the caller's pick.
func (h *LeagueHandler) ListLeagueMatches(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getUUIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, _ := middleware.SessionFromContext(r.Context())
	result, err := h.leagueService.ListLeagueMatches(r.Context(), session, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.leagueService.ListTeams(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
