package models

import "time"

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
	NotificationStatusSkipped NotificationStatus = "skipped"
)

// NotificationRecord tracks one (alert rule, site, date) notification. The
// unique index on (alert_rule_id, composite_key) is what makes the dedup
// claim atomic: concurrent scrape cycles race on this row, and the
// conditional upsert lets exactly one of them through.
type NotificationRecord struct {
	ID             string             `json:"id" db:"id"`
	AlertRuleID    string             `json:"alert_rule_id" db:"alert_rule_id"`
	CompositeKey   string             `json:"composite_key" db:"composite_key"`
	Park           Park               `json:"park" db:"park"`
	SiteID         string             `json:"site_id" db:"site_id"`
	CheckInDate    time.Time          `json:"check_in_date" db:"check_in_date"`
	RecipientEmail string             `json:"recipient_email" db:"recipient_email"`
	Status         NotificationStatus `json:"status" db:"status"`
	SentAt         *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
	ErrorMessage   *string            `json:"error_message,omitempty" db:"error_message"`
	RetryCount     int                `json:"retry_count" db:"retry_count"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" db:"updated_at"`
}
