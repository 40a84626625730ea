package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/rs/zerolog"

	"github.com/campwatch/campwatch-api/internal/alerts"
	"github.com/campwatch/campwatch-api/internal/config"
	"github.com/campwatch/campwatch-api/internal/crawler"
	"github.com/campwatch/campwatch-api/internal/handlers"
	"github.com/campwatch/campwatch-api/internal/middleware"
	"github.com/campwatch/campwatch-api/internal/migration"
	"github.com/campwatch/campwatch-api/internal/notification"
	"github.com/campwatch/campwatch-api/internal/repository"
	"github.com/campwatch/campwatch-api/internal/routes"
	"github.com/campwatch/campwatch-api/internal/scraper"
	"github.com/campwatch/campwatch-api/internal/temporal"
	"github.com/campwatch/campwatch-api/internal/temporal/activities"
	"github.com/campwatch/campwatch-api/internal/worker"

	_ "github.com/lib/pq" // PostgreSQL driver
	tc "go.temporal.io/sdk/client"
)

type application struct {
	config         *config.Config
	db             *sql.DB
	temporalClient tc.Client
	logger         zerolog.Logger
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	// Load configuration.
	cfg := config.Load()

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	if err := migration.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize Temporal client.
	temporalClient, err := tc.Dial(tc.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporal.NewLogAdapter(logger),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Unable to create Temporal client")
	}
	defer temporalClient.Close()

	app := &application{
		config:         cfg,
		db:             db,
		temporalClient: temporalClient,
		logger:         logger,
	}

	// Start the crawler container and the Temporal worker.
	scrapeWorker := app.startWorker(logger)

	// Initialize the HTTP router and middleware.
	router := app.initRouter(scrapeWorker, logger)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{"http://localhost:3000"}),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, scrapeWorker, logger)

	logger.Info().Msg("Application terminated.")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter(scrapeWorker *worker.Worker, logger zerolog.Logger) http.Handler {
	alertRuleRepo := repository.NewAlertRuleRepository(app.db)
	availabilityRepo := repository.NewAvailabilityRepository(app.db)
	scrapeResultRepo := repository.NewScrapeResultRepository(app.db)
	notificationRepo := repository.NewNotificationRepository(app.db)

	authHandler := handlers.NewAuthHandler(app.db, app.config, logger)
	alertRuleHandler := handlers.NewAlertRuleHandler(alertRuleRepo, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityRepo, logger)
	scrapeHandler := handlers.NewScrapeHandler(scrapeWorker, scrapeResultRepo, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, logger)
	dashboardHandler := handlers.NewDashboardHandler(availabilityRepo, logger)

	return routes.NewRouter(authHandler, alertRuleHandler, availabilityHandler, scrapeHandler, notificationHandler, dashboardHandler)
}

// startWorker wires the scraping pipeline and launches the Temporal worker
// with the recurring park schedules.
func (app *application) startWorker(logger zerolog.Logger) *worker.Worker {
	limiter := scraper.NewRateLimiter(
		app.config.Scraper.RequestsPerMinute,
		app.config.Scraper.BackoffMultiplier,
		app.config.Scraper.MaxBackoff,
	)
	scraperCfg := scraper.Config{
		WaitSelector:   app.config.Scraper.WaitSelector,
		RequestTimeout: app.config.Scraper.RequestTimeout,
	}

	var siteScraper scraper.Scraper
	switch app.config.Scraper.Mode {
	case "browser":
		siteScraper = scraper.NewBrowserScraper(limiter, scraperCfg, logger)
	default:
		crawlerClient := crawler.NewClient(crawler.ClientConfig{
			BaseURL:        app.config.Crawler.URL,
			APIKey:         app.config.Crawler.APIKey,
			RequestTimeout: app.config.Crawler.RequestTimeout,
		}, logger)

		if app.config.Crawler.Managed {
			runner, err := crawler.NewRunner(crawler.RunnerConfig{
				Image:         app.config.Crawler.Image,
				ContainerName: app.config.Crawler.ContainerName,
				HostPort:      app.config.Crawler.HostPort,
				MemoryLimit:   app.config.Crawler.MemoryLimit,
			}, logger)
			if err != nil {
				logger.Fatal().Err(err).Msg("Failed to create crawler runner")
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := runner.EnsureRunning(ctx, crawlerClient.Ping); err != nil {
				logger.Fatal().Err(err).Msg("Failed to start crawler container")
			}
		}

		siteScraper = scraper.NewCrawlerScraper(crawlerClient, limiter, scraperCfg, logger)
	}

	mailer, err := notification.NewSMTPMailer(app.config.Email)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure mailer")
	}
	sender := notification.NewEmailAlertSender(mailer, logger)

	processor := alerts.NewProcessor(
		repository.NewAlertRuleRepository(app.db),
		repository.NewNotificationRepository(app.db),
		sender,
		alerts.ProcessorConfig{
			Cooldown:          time.Duration(app.config.Alerts.CooldownHours) * time.Hour,
			MaxRetries:        app.config.Alerts.MaxRetries,
			InitialBackoff:    app.config.Alerts.InitialBackoffDuration(),
			BackoffMultiplier: app.config.Alerts.BackoffMultiplier,
			MaxSitesPerEmail:  app.config.Alerts.MaxSitesPerEmail,
			AdvanceNoticeMode: alerts.AdvanceNoticeMode(app.config.Alerts.AdvanceNoticeMode),
		},
		logger,
	)

	acts := &activities.Activities{
		Scraper:       siteScraper,
		Availability:  repository.NewAvailabilityRepository(app.db),
		ScrapeResults: repository.NewScrapeResultRepository(app.db),
		Processor:     processor,
	}

	scrapeWorker := worker.New(app.temporalClient, acts, app.config.Scraper.IntervalMinutes, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := scrapeWorker.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scrape worker")
	}

	return scrapeWorker
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, scrapeWorker *worker.Worker, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}

	// Stop the Temporal worker.
	logger.Info().Msg("Stopping scrape worker...")
	scrapeWorker.Stop()
	logger.Info().Msg("Scrape worker stopped.")
}
