package workflows

import (
	"time"

	"github.com/campwatch/campwatch-api/internal/temporal"
	"github.com/campwatch/campwatch-api/internal/temporal/activities"
	sdktemporal "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ScrapeParkWorkflow runs one scrape cycle for a park: fetch availability,
// store and diff it against the previous snapshot, evaluate alert rules, and
// append the run record. The run record is written even when earlier steps
// fail so the scrape history stays complete.
func ScrapeParkWorkflow(ctx workflow.Context, params temporal.ScrapeParams) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: temporal.DefaultActivityTimeout,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &sdktemporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	logger := workflow.GetLogger(ctx)
	logger.Info("Starting scrape workflow", "Park", params.Park)

	// Create an instance of activities struct.
	// The actual implementation is on the worker; this is just a proxy.
	var a *activities.Activities

	var scrapeResult temporal.ScrapeActivityResult
	if err := workflow.ExecuteActivity(ctx, a.ScrapeActivity, params).Get(ctx, &scrapeResult); err != nil {
		logger.Error("Scrape failed.", "Park", params.Park, "error", err)
		recordFailure(ctx, a, params.Park, err)
		return err
	}

	var diffResult temporal.DiffActivityResult
	if err := workflow.ExecuteActivity(ctx, a.StoreAndDiffActivity, scrapeResult).Get(ctx, &diffResult); err != nil {
		logger.Error("Store and diff failed.", "Park", params.Park, "error", err)
		recordFailure(ctx, a, params.Park, err)
		return err
	}

	if err := workflow.ExecuteActivity(ctx, a.ProcessAlertsActivity, diffResult).Get(ctx, nil); err != nil {
		// Alert delivery problems should not erase the scrape itself.
		logger.Error("Alert processing failed.", "Park", params.Park, "error", err)
		diffResult.Warnings = append(diffResult.Warnings, "alert processing failed: "+err.Error())
	}

	if err := workflow.ExecuteActivity(ctx, a.RecordResultActivity, diffResult).Get(ctx, nil); err != nil {
		logger.Error("Failed to record scrape result.", "Park", params.Park, "error", err)
		return err
	}

	logger.Info("Scrape workflow completed.", "Park", params.Park, "Sites", diffResult.SitesFound, "Available", diffResult.AvailableSites)
	return nil
}

// recordFailure appends a failed run record on a disconnected context so it
// survives workflow cancellation.
func recordFailure(ctx workflow.Context, a *activities.Activities, park string, cause error) {
	logger := workflow.GetLogger(ctx)
	cleanupCtx, _ := workflow.NewDisconnectedContext(ctx)

	failed := temporal.DiffActivityResult{
		Park:      park,
		StartedAt: workflow.Now(ctx),
		Warnings:  []string{cause.Error()},
	}
	if err := workflow.ExecuteActivity(cleanupCtx, a.RecordFailedResultActivity, failed).Get(cleanupCtx, nil); err != nil {
		logger.Error("Failed to record failed scrape.", "Park", park, "error", err)
	}
}
