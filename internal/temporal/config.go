package temporal

import (
	"time"

	"github.com/campwatch/campwatch-api/internal/alerts"
	"github.com/campwatch/campwatch-api/internal/models"
)

// TaskQueueName is the name of the Temporal task queue used for campsite scrape workflows.
const TaskQueueName = "CAMPWATCH_SCRAPE"

// ScrapeWorkflowIDPrefix is the prefix used for scrape workflow IDs.
const ScrapeWorkflowIDPrefix = "campwatch-scrape-"

// DefaultActivityTimeout is the default timeout duration for Temporal activities in scrape workflows.
const DefaultActivityTimeout = 5 * time.Minute

// ScrapeParams defines the input for scrape workflows.
type ScrapeParams struct {
	Park string
}

// ScrapeActivityResult holds the scraped records for a park. This data is
// passed to the next activity in the workflow.
type ScrapeActivityResult struct {
	Park      string
	Records   []models.AvailabilityRecord
	Warnings  []string
	StartedAt time.Time
}

// DiffActivityResult holds the outcome of storing a snapshot and diffing it
// against the previous one.
type DiffActivityResult struct {
	Park           string
	Records        []models.AvailabilityRecord
	Events         []alerts.ChangeEvent
	SitesFound     int
	AvailableSites int
	StartedAt      time.Time
	Warnings       []string
}
