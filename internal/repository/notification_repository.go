package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campwatch/campwatch-api/internal/models"
)

type NotificationRepository interface {
	// Claim atomically reserves the right to notify for (alert_rule_id,
	// composite_key). It returns (record, true) for exactly one caller per
	// cooldown window; every other caller gets claimed=false.
	Claim(ctx context.Context, params ClaimParams) (models.NotificationRecord, bool, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	MarkSkipped(ctx context.Context, id string) error
	ListRecent(ctx context.Context, limit int) ([]models.NotificationRecord, error)
	ListByStatus(ctx context.Context, status models.NotificationStatus, limit int) ([]models.NotificationRecord, error)
}

type ClaimParams struct {
	AlertRuleID    string
	CompositeKey   string
	Park           models.Park
	SiteID         string
	CheckInDate    time.Time
	RecipientEmail string
	Cooldown       time.Duration
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, alert_rule_id, composite_key, park, site_id, check_in_date, recipient_email, status, sent_at, error_message, retry_count, created_at, updated_at`

// Claim relies on the unique index over (alert_rule_id, composite_key). A
// fresh pair inserts a pending row. An existing row is only reclaimed when it
// is terminal and its last send is older than the cooldown; rows already
// pending, or sent within the cooldown, produce no row and the claim fails.
func (r *notificationRepository) Claim(ctx context.Context, params ClaimParams) (models.NotificationRecord, bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO campwatch.notification_records
			(alert_rule_id, composite_key, park, site_id, check_in_date, recipient_email, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		ON CONFLICT (alert_rule_id, composite_key) DO UPDATE SET
			status = 'pending',
			recipient_email = EXCLUDED.recipient_email,
			error_message = NULL,
			retry_count = 0,
			updated_at = now()
		WHERE campwatch.notification_records.status IN ('sent', 'failed', 'skipped')
		  AND (campwatch.notification_records.sent_at IS NULL
		       OR campwatch.notification_records.sent_at < now() - $7::interval)
		RETURNING %s
	`, notificationColumns)

	cooldown := fmt.Sprintf("%d seconds", int64(params.Cooldown.Seconds()))

	row := r.db.QueryRowContext(ctx, query,
		params.AlertRuleID,
		params.CompositeKey,
		params.Park,
		params.SiteID,
		params.CheckInDate,
		params.RecipientEmail,
		cooldown,
	)

	record, err := scanNotificationRecord(row)
	if err == sql.ErrNoRows {
		return models.NotificationRecord{}, false, nil
	}
	if err != nil {
		return models.NotificationRecord{}, false, err
	}
	return record, true, nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id string) error {
	const query = `
		UPDATE campwatch.notification_records
		SET status = 'sent', sent_at = now(), error_message = NULL, updated_at = now()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id string, errMsg string) error {
	const query = `
		UPDATE campwatch.notification_records
		SET status = 'failed', error_message = $2, retry_count = retry_count + 1, updated_at = now()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, errMsg)
	return err
}

func (r *notificationRepository) MarkSkipped(ctx context.Context, id string) error {
	const query = `
		UPDATE campwatch.notification_records
		SET status = 'skipped', updated_at = now()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *notificationRepository) ListRecent(ctx context.Context, limit int) ([]models.NotificationRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	query := fmt.Sprintf(`
		SELECT %s FROM campwatch.notification_records
		ORDER BY updated_at DESC
		LIMIT $1
	`, notificationColumns)
	return r.queryRecords(ctx, query, limit)
}

func (r *notificationRepository) ListByStatus(ctx context.Context, status models.NotificationStatus, limit int) ([]models.NotificationRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	query := fmt.Sprintf(`
		SELECT %s FROM campwatch.notification_records
		WHERE status = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`, notificationColumns)
	return r.queryRecords(ctx, query, status, limit)
}

func (r *notificationRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]models.NotificationRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.NotificationRecord
	for rows.Next() {
		record, err := scanNotificationRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanNotificationRecord(scanner interface {
	Scan(dest ...interface{}) error
}) (models.NotificationRecord, error) {
	var (
		record   models.NotificationRecord
		sentAt   sql.NullTime
		errorMsg sql.NullString
	)

	if err := scanner.Scan(
		&record.ID,
		&record.AlertRuleID,
		&record.CompositeKey,
		&record.Park,
		&record.SiteID,
		&record.CheckInDate,
		&record.RecipientEmail,
		&record.Status,
		&sentAt,
		&errorMsg,
		&record.RetryCount,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return models.NotificationRecord{}, err
	}

	if sentAt.Valid {
		t := sentAt.Time
		record.SentAt = &t
	}
	if errorMsg.Valid {
		v := errorMsg.String
		record.ErrorMessage = &v
	}

	return record, nil
}
