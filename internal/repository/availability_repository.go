package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/lib/pq"
)

type AvailabilityRepository interface {
	UpsertBatch(ctx context.Context, records []models.AvailabilityRecord) error
	GetSnapshot(ctx context.Context, park models.Park) (map[string]models.AvailabilityRecord, error)
	List(ctx context.Context, filter AvailabilityFilter) ([]models.AvailabilityRecord, error)
	CalendarDays(ctx context.Context, park models.Park, from, to time.Time) ([]CalendarDay, error)
}

// AvailabilityFilter narrows List results. Zero-valued fields are ignored.
type AvailabilityFilter struct {
	Park     models.Park
	SiteType models.SiteType
	Status   models.AvailabilityStatus
	DateFrom time.Time
	DateTo   time.Time
	Limit    int
}

// CalendarDay is a per-date aggregate used by the dashboard calendar.
type CalendarDay struct {
	Date           time.Time `json:"date"`
	AvailableCount int       `json:"available_count"`
	Weekend        bool      `json:"weekend"`
	MinPrice       *float64  `json:"min_price,omitempty"`
	AvgPrice       *float64  `json:"avg_price,omitempty"`
}

type availabilityRepository struct {
	db *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) UpsertBatch(ctx context.Context, records []models.AvailabilityRecord) error {
	if len(records) == 0 {
		return nil
	}

	const query = `
		INSERT INTO campwatch.availability
			(park, site_id, site_name, site_type, check_in_date, status, price, max_occupancy, amenities, booking_url, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (park, site_id, check_in_date) DO UPDATE SET
			site_name = EXCLUDED.site_name,
			site_type = EXCLUDED.site_type,
			status = EXCLUDED.status,
			price = EXCLUDED.price,
			max_occupancy = EXCLUDED.max_occupancy,
			amenities = EXCLUDED.amenities,
			booking_url = EXCLUDED.booking_url,
			scraped_at = EXCLUDED.scraped_at
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		amenities := rec.Amenities
		if amenities == nil {
			amenities = []string{}
		}
		if _, err := stmt.ExecContext(ctx,
			rec.Park,
			rec.SiteID,
			rec.SiteName,
			rec.SiteType,
			rec.CheckInDate,
			rec.Status,
			rec.Price,
			rec.MaxOccupancy,
			pq.StringArray(amenities),
			rec.BookingURL,
			rec.ScrapedAt,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", rec.CompositeKey(), err)
		}
	}

	return tx.Commit()
}

// GetSnapshot returns the stored records for a park keyed by composite key.
func (r *availabilityRepository) GetSnapshot(ctx context.Context, park models.Park) (map[string]models.AvailabilityRecord, error) {
	const query = `
		SELECT id, park, site_id, site_name, site_type, check_in_date, status, price, max_occupancy, amenities, booking_url, scraped_at
		FROM campwatch.availability
		WHERE park = $1
	`

	rows, err := r.db.QueryContext(ctx, query, park)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshot := make(map[string]models.AvailabilityRecord)
	for rows.Next() {
		rec, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		snapshot[rec.CompositeKey()] = rec
	}
	return snapshot, rows.Err()
}

func (r *availabilityRepository) List(ctx context.Context, filter AvailabilityFilter) ([]models.AvailabilityRecord, error) {
	query := `
		SELECT id, park, site_id, site_name, site_type, check_in_date, status, price, max_occupancy, amenities, booking_url, scraped_at
		FROM campwatch.availability
		WHERE 1=1
	`
	var args []interface{}
	idx := 1

	if filter.Park != "" {
		query += fmt.Sprintf(" AND park = $%d", idx)
		args = append(args, filter.Park)
		idx++
	}
	if filter.SiteType != "" {
		query += fmt.Sprintf(" AND site_type = $%d", idx)
		args = append(args, filter.SiteType)
		idx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, filter.Status)
		idx++
	}
	if !filter.DateFrom.IsZero() {
		query += fmt.Sprintf(" AND check_in_date >= $%d", idx)
		args = append(args, filter.DateFrom)
		idx++
	}
	if !filter.DateTo.IsZero() {
		query += fmt.Sprintf(" AND check_in_date <= $%d", idx)
		args = append(args, filter.DateTo)
		idx++
	}

	query += " ORDER BY check_in_date, park, site_id"

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 500
	}
	query += fmt.Sprintf(" LIMIT $%d", idx)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AvailabilityRecord
	for rows.Next() {
		rec, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *availabilityRepository) CalendarDays(ctx context.Context, park models.Park, from, to time.Time) ([]CalendarDay, error) {
	const query = `
		SELECT check_in_date,
		       COUNT(*) FILTER (WHERE status = 'available') AS available_count,
		       MIN(price) FILTER (WHERE status = 'available'),
		       AVG(price) FILTER (WHERE status = 'available')
		FROM campwatch.availability
		WHERE park = $1 AND check_in_date >= $2 AND check_in_date <= $3
		GROUP BY check_in_date
		ORDER BY check_in_date
	`

	rows, err := r.db.QueryContext(ctx, query, park, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []CalendarDay
	for rows.Next() {
		var (
			day      CalendarDay
			minPrice sql.NullFloat64
			avgPrice sql.NullFloat64
		)
		if err := rows.Scan(&day.Date, &day.AvailableCount, &minPrice, &avgPrice); err != nil {
			return nil, err
		}
		wd := day.Date.Weekday()
		day.Weekend = wd == time.Friday || wd == time.Saturday || wd == time.Sunday
		if minPrice.Valid {
			v := minPrice.Float64
			day.MinPrice = &v
		}
		if avgPrice.Valid {
			v := avgPrice.Float64
			day.AvgPrice = &v
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func scanAvailability(scanner interface {
	Scan(dest ...interface{}) error
}) (models.AvailabilityRecord, error) {
	var (
		rec          models.AvailabilityRecord
		price        sql.NullFloat64
		maxOccupancy sql.NullInt64
		amenities    pq.StringArray
		bookingURL   sql.NullString
	)

	if err := scanner.Scan(
		&rec.ID,
		&rec.Park,
		&rec.SiteID,
		&rec.SiteName,
		&rec.SiteType,
		&rec.CheckInDate,
		&rec.Status,
		&price,
		&maxOccupancy,
		&amenities,
		&bookingURL,
		&rec.ScrapedAt,
	); err != nil {
		return models.AvailabilityRecord{}, err
	}

	if price.Valid {
		v := price.Float64
		rec.Price = &v
	}
	if maxOccupancy.Valid {
		v := int(maxOccupancy.Int64)
		rec.MaxOccupancy = &v
	}
	rec.Amenities = []string(amenities)
	if bookingURL.Valid {
		v := bookingURL.String
		rec.BookingURL = &v
	}

	return rec, nil
}
