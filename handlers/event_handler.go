package handlers

import (
	"net/http"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/services"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// IngestHandler handles POST /events.
func (h *EventHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	var input services.RecordEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.eventService.RecordEvent(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusAccepted, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
