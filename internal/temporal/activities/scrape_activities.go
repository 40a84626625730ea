package activities

import (
	"context"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/campwatch/campwatch-api/internal/alerts"
	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/campwatch/campwatch-api/internal/repository"
	"github.com/campwatch/campwatch-api/internal/scraper"
	"github.com/campwatch/campwatch-api/internal/temporal"
	"github.com/pkg/errors"
)

type Activities struct {
	Scraper       scraper.Scraper
	Availability  repository.AvailabilityRepository
	ScrapeResults repository.ScrapeResultRepository
	Processor     *alerts.Processor
}

// ScrapeActivity fetches the current availability for a park.
func (a *Activities) ScrapeActivity(ctx context.Context, params temporal.ScrapeParams) (*temporal.ScrapeActivityResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Scraping park", "Park", params.Park)

	park, err := models.ParsePark(params.Park)
	if err != nil {
		return nil, err
	}

	startedAt := time.Now().UTC()
	activity.RecordHeartbeat(ctx, "scraping")

	records, warnings, err := a.Scraper.Scrape(ctx, park)
	if err != nil {
		return nil, errors.Wrapf(err, "scrape %s", park)
	}

	return &temporal.ScrapeActivityResult{
		Park:      params.Park,
		Records:   records,
		Warnings:  warnings,
		StartedAt: startedAt,
	}, nil
}

// StoreAndDiffActivity diffs scraped records against the stored snapshot,
// then upserts them. Diffing happens before the upsert so the change events
// reflect the state the snapshot had when the scrape started.
func (a *Activities) StoreAndDiffActivity(ctx context.Context, result temporal.ScrapeActivityResult) (*temporal.DiffActivityResult, error) {
	logger := activity.GetLogger(ctx)

	park, err := models.ParsePark(result.Park)
	if err != nil {
		return nil, err
	}

	snapshot, err := a.Availability.GetSnapshot(ctx, park)
	if err != nil {
		return nil, errors.Wrap(err, "load stored snapshot")
	}

	events := alerts.Diff(snapshot, result.Records)

	if err := a.Availability.UpsertBatch(ctx, result.Records); err != nil {
		return nil, errors.Wrap(err, "store scraped records")
	}

	available := 0
	for _, rec := range result.Records {
		if rec.Status == models.StatusAvailable {
			available++
		}
	}

	logger.Info("Snapshot stored", "Park", result.Park, "Sites", len(result.Records), "Events", len(events))
	return &temporal.DiffActivityResult{
		Park:           result.Park,
		Records:        result.Records,
		Events:         events,
		SitesFound:     len(result.Records),
		AvailableSites: available,
		StartedAt:      result.StartedAt,
		Warnings:       result.Warnings,
	}, nil
}

// ProcessAlertsActivity evaluates alert rules against the change events and
// sends notifications.
func (a *Activities) ProcessAlertsActivity(ctx context.Context, result temporal.DiffActivityResult) error {
	logger := activity.GetLogger(ctx)

	stats, err := a.Processor.Process(ctx, result.Records, result.Events)
	if err != nil {
		return err
	}

	logger.Info("Alerts processed",
		"Park", result.Park,
		"Rules", stats.RulesEvaluated,
		"Matched", stats.Matched,
		"Sent", stats.Sent,
		"Failed", stats.Failed)
	return nil
}

// RecordResultActivity appends a successful run record.
func (a *Activities) RecordResultActivity(ctx context.Context, result temporal.DiffActivityResult) error {
	return a.record(ctx, result, true)
}

// RecordFailedResultActivity appends a failed run record.
func (a *Activities) RecordFailedResultActivity(ctx context.Context, result temporal.DiffActivityResult) error {
	return a.record(ctx, result, false)
}

func (a *Activities) record(ctx context.Context, result temporal.DiffActivityResult, success bool) error {
	park, err := models.ParsePark(result.Park)
	if err != nil {
		return err
	}

	completedAt := time.Now().UTC()
	startedAt := result.StartedAt
	if startedAt.IsZero() {
		startedAt = completedAt
	}

	run := models.ScrapeResult{
		Park:                  park,
		ScrapeTimestamp:       startedAt,
		CompletedAt:           &completedAt,
		SitesFound:            result.SitesFound,
		AvailableSites:        result.AvailableSites,
		Warnings:              result.Warnings,
		ProcessingTimeSeconds: completedAt.Sub(startedAt).Seconds(),
		Success:               success,
	}
	if !success {
		run.Errors = result.Warnings
		run.Warnings = nil
	}

	_, err = a.ScrapeResults.Append(ctx, run)
	return errors.Wrap(err, "append scrape result")
}
