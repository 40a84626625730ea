package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/campwatch/campwatch-api/internal/parks"
	"github.com/campwatch/campwatch-api/internal/repository"
	"github.com/rs/zerolog"
)

const dashboardWindowDays = 60

const dashboardTemplate = `<!DOCTYPE html>
<html>
<head>
  <title>Campwatch</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 24px; color: #333; }
    h1 { color: #2d6a4f; }
    h2 { margin-top: 32px; }
    table { border-collapse: collapse; }
    td, th { border: 1px solid #ddd; padding: 6px 10px; text-align: center; }
    .weekend { background: #fff3cd; }
    .open { background: #d4edda; font-weight: bold; }
    .empty { color: #bbb; }
  </style>
</head>
<body>
  <h1>Campsite availability</h1>
  <p>Next {{ .WindowDays }} days. Highlighted cells have open sites; amber columns are weekend dates.</p>
  {{ range .Parks }}
  <h2>{{ .DisplayName }}</h2>
  {{ if .Days }}
  <table>
    <tr>
      <th>Date</th>
      <th>Open sites</th>
      <th>From</th>
      <th>Avg</th>
    </tr>
    {{ range .Days }}
    <tr{{ if .Weekend }} class="weekend"{{ end }}>
      <td>{{ .Label }}</td>
      <td{{ if .HasOpen }} class="open"{{ end }}>{{ .AvailableCount }}</td>
      <td>{{ .MinPrice }}</td>
      <td>{{ .AvgPrice }}</td>
    </tr>
    {{ end }}
  </table>
  {{ else }}
  <p class="empty">No data scraped yet.</p>
  {{ end }}
  {{ end }}
</body>
</html>`

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardTemplate))

type dashboardDay struct {
	Label          string
	AvailableCount int
	HasOpen        bool
	Weekend        bool
	MinPrice       string
	AvgPrice       string
}

type dashboardPark struct {
	DisplayName string
	Days        []dashboardDay
}

type dashboardData struct {
	WindowDays int
	Parks      []dashboardPark
}

type DashboardHandler struct {
	availability repository.AvailabilityRepository
	logger       zerolog.Logger
}

func NewDashboardHandler(availability repository.AvailabilityRepository, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{availability: availability, logger: logger}
}

// Render serves the HTML availability calendar for all monitored parks.
func (h *DashboardHandler) Render(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, dashboardWindowDays)

	data := dashboardData{WindowDays: dashboardWindowDays}
	for _, park := range models.AllParks {
		days, err := h.availability.CalendarDays(r.Context(), park, from, to)
		if err != nil {
			h.logger.Error().Err(err).Str("park", string(park)).Msg("failed to load calendar")
			http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
			return
		}

		entry := dashboardPark{DisplayName: parks.DisplayName(park)}
		for _, day := range days {
			entry.Days = append(entry.Days, dashboardDay{
				Label:          day.Date.Format("Mon, Jan 2"),
				AvailableCount: day.AvailableCount,
				HasOpen:        day.AvailableCount > 0,
				Weekend:        day.Weekend,
				MinPrice:       formatPrice(day.MinPrice),
				AvgPrice:       formatPrice(day.AvgPrice),
			})
		}
		data.Parks = append(data.Parks, entry)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		h.logger.Error().Err(err).Msg("failed to render dashboard")
	}
}

// Calendar returns the per-day aggregates for one park as JSON.
func (h *DashboardHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	park, err := models.ParsePark(r.URL.Query().Get("park"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, dashboardWindowDays)

	days, err := h.availability.CalendarDays(r.Context(), park, from, to)
	if err != nil {
		h.logger.Error().Err(err).Str("park", string(park)).Msg("failed to load calendar")
		http.Error(w, "Failed to load calendar", http.StatusInternalServerError)
		return
	}
	if days == nil {
		days = []repository.CalendarDay{}
	}
	writeJSON(w, http.StatusOK, days)
}

func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *p)
}
