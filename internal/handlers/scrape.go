package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/campwatch/campwatch-api/internal/repository"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// ScrapeTrigger starts a one-off scrape run for a park.
type ScrapeTrigger interface {
	TriggerScrape(ctx context.Context, park models.Park) (string, error)
}

type ScrapeHandler struct {
	trigger ScrapeTrigger
	results repository.ScrapeResultRepository
	logger  zerolog.Logger
}

func NewScrapeHandler(trigger ScrapeTrigger, results repository.ScrapeResultRepository, logger zerolog.Logger) *ScrapeHandler {
	return &ScrapeHandler{trigger: trigger, results: results, logger: logger}
}

// Trigger starts a manual scrape for the park in the URL.
func (h *ScrapeHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	park, err := models.ParsePark(mux.Vars(r)["park"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workflowID, err := h.trigger.TriggerScrape(r.Context(), park)
	if err != nil {
		h.logger.Error().Err(err).Str("park", string(park)).Msg("failed to trigger scrape")
		http.Error(w, "Failed to trigger scrape", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"park":        string(park),
		"workflow_id": workflowID,
	})
}

// Results lists recent scrape runs, optionally filtered by park.
func (h *ScrapeHandler) Results(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var park models.Park
	if raw := q.Get("park"); raw != "" {
		parsed, err := models.ParsePark(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		park = parsed
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	results, err := h.results.ListRecent(r.Context(), park, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list scrape results")
		http.Error(w, "Failed to list scrape results", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.ScrapeResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
