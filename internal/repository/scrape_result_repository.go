package repository

import (
	"context"
	"database/sql"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/lib/pq"
)

type ScrapeResultRepository interface {
	Append(ctx context.Context, result models.ScrapeResult) (models.ScrapeResult, error)
	ListRecent(ctx context.Context, park models.Park, limit int) ([]models.ScrapeResult, error)
}

type scrapeResultRepository struct {
	db *sql.DB
}

func NewScrapeResultRepository(db *sql.DB) ScrapeResultRepository {
	return &scrapeResultRepository{db: db}
}

// Append inserts a new run record. Runs are never updated or deleted.
func (r *scrapeResultRepository) Append(ctx context.Context, result models.ScrapeResult) (models.ScrapeResult, error) {
	const query = `
		INSERT INTO campwatch.scrape_results
			(park, scrape_timestamp, completed_at, sites_found, available_sites, errors, warnings, processing_time_seconds, success)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, park, scrape_timestamp, completed_at, sites_found, available_sites, errors, warnings, processing_time_seconds, success, created_at
	`

	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	row := r.db.QueryRowContext(ctx, query,
		result.Park,
		result.ScrapeTimestamp,
		result.CompletedAt,
		result.SitesFound,
		result.AvailableSites,
		pq.StringArray(errs),
		pq.StringArray(warnings),
		result.ProcessingTimeSeconds,
		result.Success,
	)
	return scanScrapeResult(row)
}

func (r *scrapeResultRepository) ListRecent(ctx context.Context, park models.Park, limit int) ([]models.ScrapeResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	query := `
		SELECT id, park, scrape_timestamp, completed_at, sites_found, available_sites, errors, warnings, processing_time_seconds, success, created_at
		FROM campwatch.scrape_results
	`
	var args []interface{}
	if park != "" {
		query += " WHERE park = $1 ORDER BY scrape_timestamp DESC LIMIT $2"
		args = append(args, park, limit)
	} else {
		query += " ORDER BY scrape_timestamp DESC LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.ScrapeResult
	for rows.Next() {
		result, err := scanScrapeResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func scanScrapeResult(scanner interface {
	Scan(dest ...interface{}) error
}) (models.ScrapeResult, error) {
	var (
		result      models.ScrapeResult
		completedAt sql.NullTime
		errs        pq.StringArray
		warnings    pq.StringArray
	)

	if err := scanner.Scan(
		&result.ID,
		&result.Park,
		&result.ScrapeTimestamp,
		&completedAt,
		&result.SitesFound,
		&result.AvailableSites,
		&errs,
		&warnings,
		&result.ProcessingTimeSeconds,
		&result.Success,
		&result.CreatedAt,
	); err != nil {
		return models.ScrapeResult{}, err
	}

	if completedAt.Valid {
		t := completedAt.Time
		result.CompletedAt = &t
	}
	result.Errors = []string(errs)
	result.Warnings = []string(warnings)

	return result, nil
}
