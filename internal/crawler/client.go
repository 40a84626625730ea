// Package crawler talks to the JS-rendering crawler service that fetches
// reservation pages and returns structured site data.
package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// SitePayload is the wire format for one campsite entry as returned by the
// crawler service. Field values arrive unnormalized; the scraper parser is
// responsible for mapping them onto the domain types.
type SitePayload struct {
	SiteID       string   `json:"site_id"`
	SiteName     string   `json:"site_name"`
	SiteType     string   `json:"site_type"`
	CheckInDate  string   `json:"check_in_date"`
	Status       string   `json:"status"`
	Price        *float64 `json:"price,omitempty"`
	MaxOccupancy *int     `json:"max_occupancy,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
	BookingURL   string   `json:"booking_url,omitempty"`
}

type FetchRequest struct {
	URL            string `json:"url"`
	WaitSelector   string `json:"wait_selector,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

type FetchResponse struct {
	Sites    []SitePayload `json:"sites"`
	Warnings []string      `json:"warnings,omitempty"`
}

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetHeader("X-API-Key", cfg.APIKey)
	}
	return &Client{
		http: httpClient,
		log:  logger.With().Str("component", "crawler_client").Logger(),
	}
}

// FetchSites asks the crawler service to render the page and extract site
// entries from it.
func (c *Client) FetchSites(ctx context.Context, req FetchRequest) (*FetchResponse, error) {
	var result FetchResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/api/render")
	if err != nil {
		return nil, fmt.Errorf("crawler request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("crawler returned %s: %s", resp.Status(), resp.String())
	}

	c.log.Debug().Str("url", req.URL).Int("sites", len(result.Sites)).Msg("crawler fetch complete")
	return &result, nil
}

// Ping checks the crawler service health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("crawler health check: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("crawler unhealthy: %s", resp.Status())
	}
	return nil
}
