// Package scraper fetches campsite availability for the monitored parks and
// normalizes it into domain records.
package scraper

import (
	"context"
	"time"

	"github.com/campwatch/campwatch-api/internal/crawler"
	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/campwatch/campwatch-api/internal/parks"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Scraper fetches the current availability for one park. The returned
// warnings describe entries that were dropped or adjusted during parsing.
type Scraper interface {
	Scrape(ctx context.Context, park models.Park) ([]models.AvailabilityRecord, []string, error)
}

type Config struct {
	WaitSelector   string
	RequestTimeout time.Duration
}

// CrawlerScraper fetches availability through the JS-rendering crawler
// service.
type CrawlerScraper struct {
	client  *crawler.Client
	limiter *RateLimiter
	cfg     Config
	log     zerolog.Logger
}

func NewCrawlerScraper(client *crawler.Client, limiter *RateLimiter, cfg Config, logger zerolog.Logger) *CrawlerScraper {
	if cfg.WaitSelector == "" {
		cfg.WaitSelector = ".search-results"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	return &CrawlerScraper{
		client:  client,
		limiter: limiter,
		cfg:     cfg,
		log:     logger.With().Str("component", "crawler_scraper").Logger(),
	}
}

func (s *CrawlerScraper) Scrape(ctx context.Context, park models.Park) ([]models.AvailabilityRecord, []string, error) {
	url, err := parks.SearchURL(park, "", 0)
	if err != nil {
		return nil, nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	resp, err := s.client.FetchSites(ctx, crawler.FetchRequest{
		URL:            url,
		WaitSelector:   s.cfg.WaitSelector,
		TimeoutSeconds: int(s.cfg.RequestTimeout.Seconds()),
	})
	if err != nil {
		s.limiter.RecordFailure()
		return nil, nil, errors.Wrapf(err, "scrape %s", park)
	}
	s.limiter.RecordSuccess()

	records, warnings := Parse(park, resp.Sites, time.Now())
	warnings = append(resp.Warnings, warnings...)

	s.log.Info().
		Str("park", string(park)).
		Int("sites", len(records)).
		Int("warnings", len(warnings)).
		Msg("scrape complete")
	return records, warnings, nil
}
