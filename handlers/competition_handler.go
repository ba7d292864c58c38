package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/repositories"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/services"
)

type CompetitionHandler struct {
	competitionService *services.CompetitionService
	settlementService  *services.SettlementService
	resultRepo         repositories.ResultRepository
}

func NewCompetitionHandler(
	competitionService *services.CompetitionService,
	settlementService *services.SettlementService,
	resultRepo repositories.ResultRepository,
) *CompetitionHandler {
	return &CompetitionHandler{
		competitionService: competitionService,
		settlementService:  settlementService,
		resultRepo:         resultRepo,
	}
}

// CreateHandler handles POST /competitions.
func (h *CompetitionHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCompetitionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competition, err := h.competitionService.CreateCompetition(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /competitions/{competitionID}.
func (h *CompetitionHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competition, err := h.competitionService.GetCompetition(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /competitions.
func (h *CompetitionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListCompetitionsFilter
	query := r.URL.Query()

	if metricIDStr := query.Get("metric_id"); metricIDStr != "" {
		if id, err := strconv.Atoi(metricIDStr); err == nil && id > 0 {
			filter.MetricID = &id
		} else {
			badRequestResponse(w, r, errors.New("invalid metric_id query parameter"))
			return
		}
	}
	if seasonIDStr := query.Get("season_id"); seasonIDStr != "" {
		if id, err := strconv.Atoi(seasonIDStr); err == nil && id > 0 {
			filter.SeasonID = &id
		} else {
			badRequestResponse(w, r, errors.New("invalid season_id query parameter"))
			return
		}
	}
	if statusStr := query.Get("status"); statusStr != "" {
		status := models.CompetitionStatus(statusStr)
		switch status {
		case models.StatusDraft, models.StatusActive, models.StatusEvaluating, models.StatusCompleted:
			filter.Status = &status
		default:
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
	}

	competitions, err := h.competitionService.ListCompetitions(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitions": competitions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ActivateHandler handles POST /competitions/{competitionID}/activate.
func (h *CompetitionHandler) ActivateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competition, err := h.competitionService.Activate(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EnrollHandler handles POST /competitions/{competitionID}/participants.
func (h *CompetitionHandler) EnrollHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID int `json:"user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.competitionService.Enroll(r.Context(), id, input.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler handles GET /competitions/{competitionID}/standings.
func (h *CompetitionHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.competitionService.GetStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SettleHandler handles POST /competitions/{competitionID}/settle.
func (h *CompetitionHandler) SettleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.settlementService.EndAndEvaluate(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResultsHandler handles GET /competitions/{competitionID}/results.
func (h *CompetitionHandler) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.competitionService.GetCompetition(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	results, err := h.resultRepo.ListByCompetition(r.Context(), nil, id)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ComputeBaselinesHandler handles POST /competitions/{competitionID}/baselines.
func (h *CompetitionHandler) ComputeBaselinesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	updated, err := h.settlementService.ComputeBaselines(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants_updated": updated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LotteryQualifiersHandler handles GET /competitions/{competitionID}/lottery-qualifiers.
func (h *CompetitionHandler) LotteryQualifiersHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pool, err := h.settlementService.GetLotteryQualifiers(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"lottery": pool}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
