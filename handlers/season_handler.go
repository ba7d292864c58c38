package handlers

import (
	"net/http"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/services"
)

type SeasonHandler struct {
	competitionService *services.CompetitionService
	settlementService  *services.SettlementService
}

func NewSeasonHandler(
	competitionService *services.CompetitionService,
	settlementService *services.SettlementService,
) *SeasonHandler {
	return &SeasonHandler{
		competitionService: competitionService,
		settlementService:  settlementService,
	}
}

// StandingsHandler handles GET /seasons/{seasonID}/standings.
func (h *SeasonHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, standings, err := h.competitionService.GetSeasonStandings(r.Context(), seasonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"season": season, "standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RebuildHandler handles POST /seasons/{seasonID}/standings/rebuild, the
// manual re-fold for operators.
func (h *SeasonHandler) RebuildHandler(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.settlementService.RebuildSeasonStandings(r.Context(), seasonID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_, standings, err := h.competitionService.GetSeasonStandings(r.Context(), seasonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
