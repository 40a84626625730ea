package handlers

import (
	"net/http"
	"strconv"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/campwatch/campwatch-api/internal/repository"
	"github.com/rs/zerolog"
)

type NotificationHandler struct {
	notifications repository.NotificationRepository
	logger        zerolog.Logger
}

func NewNotificationHandler(notifications repository.NotificationRepository, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// List returns recent notification records, optionally filtered by status.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	var (
		records []models.NotificationRecord
		err     error
	)
	if status := q.Get("status"); status != "" {
		records, err = h.notifications.ListByStatus(r.Context(), models.NotificationStatus(status), limit)
	} else {
		records, err = h.notifications.ListRecent(r.Context(), limit)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list notifications")
		http.Error(w, "Failed to list notifications", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []models.NotificationRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
