// Package worker hosts the Temporal worker and the recurring scrape
// schedules.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/campwatch/campwatch-api/internal/temporal"
	"github.com/campwatch/campwatch-api/internal/temporal/activities"
	"github.com/campwatch/campwatch-api/internal/temporal/workflows"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.temporal.io/api/serviceerror"
	tc "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

type Worker struct {
	client          tc.Client
	worker          worker.Worker
	intervalMinutes int
	log             zerolog.Logger
}

// New builds a Temporal worker with the scrape workflow and activities
// registered.
func New(client tc.Client, acts *activities.Activities, intervalMinutes int, logger zerolog.Logger) *Worker {
	w := worker.New(client, temporal.TaskQueueName, worker.Options{})
	w.RegisterWorkflow(workflows.ScrapeParkWorkflow)
	w.RegisterActivity(acts)

	if intervalMinutes <= 0 {
		intervalMinutes = 30
	}

	return &Worker{
		client:          client,
		worker:          w,
		intervalMinutes: intervalMinutes,
		log:             logger.With().Str("component", "worker").Logger(),
	}
}

// Start launches the worker loop in a goroutine and registers a recurring
// scrape for every monitored park.
func (w *Worker) Start(ctx context.Context) error {
	go func() {
		w.log.Info().Msg("Starting Temporal worker...")
		if err := w.worker.Run(worker.InterruptCh()); err != nil {
			w.log.Fatal().Err(err).Msg("Unable to start worker")
		}
	}()

	cron := fmt.Sprintf("*/%d * * * *", w.intervalMinutes)
	for _, park := range models.AllParks {
		opts := tc.StartWorkflowOptions{
			ID:           temporal.ScrapeWorkflowIDPrefix + string(park),
			TaskQueue:    temporal.TaskQueueName,
			CronSchedule: cron,
		}
		_, err := w.client.ExecuteWorkflow(ctx, opts, workflows.ScrapeParkWorkflow, temporal.ScrapeParams{Park: string(park)})
		if err != nil {
			var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
			if errors.As(err, &alreadyStarted) {
				w.log.Debug().Str("park", string(park)).Msg("scrape schedule already running")
				continue
			}
			return fmt.Errorf("schedule scrape for %s: %w", park, err)
		}
		w.log.Info().Str("park", string(park)).Str("cron", cron).Msg("scrape schedule registered")
	}

	return nil
}

// TriggerScrape starts a one-off scrape workflow for a park.
func (w *Worker) TriggerScrape(ctx context.Context, park models.Park) (string, error) {
	opts := tc.StartWorkflowOptions{
		ID:        fmt.Sprintf("%s%s-manual-%s", temporal.ScrapeWorkflowIDPrefix, park, uuid.NewString()),
		TaskQueue: temporal.TaskQueueName,
	}
	run, err := w.client.ExecuteWorkflow(ctx, opts, workflows.ScrapeParkWorkflow, temporal.ScrapeParams{Park: string(park)})
	if err != nil {
		return "", err
	}
	return run.GetID(), nil
}

// Stop shuts down the worker loop.
func (w *Worker) Stop() {
	w.worker.Stop()
}
