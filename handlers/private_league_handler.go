package handlers

import (
	"net/http"

	"github.com/Dosada05/rl-prono/services"
)

type PrivateLeagueHandler struct {
	privateLeagueService services.PrivateLeagueService
}

func NewPrivateLeagueHandler(ps services.PrivateLeagueService) *PrivateLeagueHandler {
	return &PrivateLeagueHandler{privateLeagueService: ps}
}

func (h *PrivateLeagueHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	leagues, err := h.privateLeagueService.ListMyPrivateLeagues(r.Context(), session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"private_leagues": leagues}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PrivateLeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var input services.CreatePrivateLeagueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.privateLeagueService.CreatePrivateLeague(r.Context(), session, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"private_league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type joinPrivateLeagueRequest struct {
	InviteCode string `json:"invite_code"`
}

func (h *PrivateLeagueHandler) Join(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var input joinPrivateLeagueRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.privateLeagueService.JoinByInviteCode(r.Context(), session, input.InviteCode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"private_league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PrivateLeagueHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	leagueID, err := getUUIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.privateLeagueService.PrivateLeagueLeaderboard(r.Context(), session, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, standings, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type inviteByEmailRequest struct {
	Email string `json:"email"`
}

func (h *PrivateLeagueHandler) InviteByEmail(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	leagueID, err := getUUIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input inviteByEmailRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.privateLeagueService.InviteByEmail(r.Context(), session, leagueID, input.Email); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
