package handlers

import (
	"net/http"

	"github.com/Dosada05/rl-prono/services"
)

type PredictionHandler struct {
	matchService      services.MatchService
	predictionService services.PredictionService
}

func NewPredictionHandler(ms services.MatchService, ps services.PredictionService) *PredictionHandler {
	return &PredictionHandler{
		matchService:      ms,
		predictionService: ps,
	}
}

func (h *PredictionHandler) GetMatchDetails(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	details, err := h.matchService.GetMatchDetails(r.Context(), session, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, details, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitPrediction creates or replaces the caller's prediction for the match.
// 201 on first save, 200 on update.
func (h *PredictionHandler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SubmitPredictionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.predictionService.SubmitPrediction(r.Context(), session, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	if err := writeJSON(w, status, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PredictionHandler) ListMyPredictions(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	result, err := h.predictionService.ListUserPredictions(r.Context(), session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
