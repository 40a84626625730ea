package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/campwatch/campwatch-api/internal/repository"
	"github.com/rs/zerolog"
)

type AvailabilityHandler struct {
	availability repository.AvailabilityRepository
	logger       zerolog.Logger
}

func NewAvailabilityHandler(availability repository.AvailabilityRepository, logger zerolog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, logger: logger}
}

// List returns stored availability records filtered by query parameters:
// park, site_type, status, date_from, date_to (YYYY-MM-DD), limit.
func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.AvailabilityFilter{}

	if raw := q.Get("park"); raw != "" {
		park, err := models.ParsePark(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Park = park
	}
	if raw := q.Get("site_type"); raw != "" {
		siteType, err := models.ParseSiteType(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.SiteType = siteType
	}
	if raw := q.Get("status"); raw != "" {
		filter.Status = models.AvailabilityStatus(raw)
	}
	if raw := q.Get("date_from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "Invalid date_from", http.StatusBadRequest)
			return
		}
		filter.DateFrom = from
	}
	if raw := q.Get("date_to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "Invalid date_to", http.StatusBadRequest)
			return
		}
		filter.DateTo = to
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	records, err := h.availability.List(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list availability")
		http.Error(w, "Failed to list availability", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.AvailabilityRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
