package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfileHandler handles GET /users/{userID}/profile.
func (h *ProfileHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListNotificationsHandler handles GET /users/{userID}/notifications.
func (h *ProfileHandler) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	unreadOnly := query.Get("unread") == "true"
	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
	}

	notifications, err := h.profileService.ListNotifications(r.Context(), userID, unreadOnly, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notifications": notifications}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
