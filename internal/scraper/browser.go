package scraper

import (
	"context"
	"encoding/json"
	"time"

	"github.com/campwatch/campwatch-api/internal/crawler"
	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/campwatch/campwatch-api/internal/parks"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// extractSitesJS pulls site entries out of the rendered search results. It
// mirrors the extraction the crawler service performs server-side.
const extractSitesJS = `
	JSON.stringify(Array.from(document.querySelectorAll('.search-results .site-row')).map(function (row) {
		var priceText = (row.querySelector('.site-price') || {}).textContent || '';
		var price = parseFloat(priceText.replace(/[^0-9.]/g, ''));
		return {
			site_id: row.getAttribute('data-site-id') || '',
			site_name: ((row.querySelector('.site-name') || {}).textContent || '').trim(),
			site_type: row.getAttribute('data-site-type') || '',
			check_in_date: row.getAttribute('data-date') || '',
			status: row.getAttribute('data-status') || '',
			price: isNaN(price) ? null : price,
			booking_url: (row.querySelector('a.book-link') || {}).href || ''
		};
	}))
`

// BrowserScraper drives a headless browser directly instead of going through
// the crawler service. It exists as a fallback for environments where the
// crawler container cannot run.
type BrowserScraper struct {
	limiter *RateLimiter
	cfg     Config
	log     zerolog.Logger
}

func NewBrowserScraper(limiter *RateLimiter, cfg Config, logger zerolog.Logger) *BrowserScraper {
	if cfg.WaitSelector == "" {
		cfg.WaitSelector = ".search-results"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	return &BrowserScraper{
		limiter: limiter,
		cfg:     cfg,
		log:     logger.With().Str("component", "browser_scraper").Logger(),
	}
}

func (s *BrowserScraper) Scrape(ctx context.Context, park models.Park) ([]models.AvailabilityRecord, []string, error) {
	url, err := parks.SearchURL(park, "", 0)
	if err != nil {
		return nil, nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, s.cfg.RequestTimeout)
	defer cancelRun()

	var rawJSON string
	err = chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(s.cfg.WaitSelector, chromedp.ByQuery),
		chromedp.Evaluate(extractSitesJS, &rawJSON),
	)
	if err != nil {
		s.limiter.RecordFailure()
		return nil, nil, errors.Wrapf(err, "browser scrape %s", park)
	}
	s.limiter.RecordSuccess()

	var payloads []crawler.SitePayload
	if err := json.Unmarshal([]byte(rawJSON), &payloads); err != nil {
		return nil, nil, errors.Wrap(err, "decode extracted sites")
	}

	records, warnings := Parse(park, payloads, time.Now())
	s.log.Info().
		Str("park", string(park)).
		Int("sites", len(records)).
		Int("warnings", len(warnings)).
		Msg("browser scrape complete")
	return records, warnings, nil
}
