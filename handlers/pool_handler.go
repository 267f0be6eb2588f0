package handlers

import (
	"net/http"

	"github.com/courtside/tournament-engine/services"
)

type PoolHandler struct {
	poolService services.PoolService
}

func NewPoolHandler(poolService services.PoolService) *PoolHandler {
	return &PoolHandler{poolService: poolService}
}

func (h *PoolHandler) CreatePoolHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var params services.CreatePoolParams
	if err := readJSON(w, r, &params); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	params.TournamentID = tournamentID

	view, err := h.poolService.CreatePool(r.Context(), params)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"pool": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
