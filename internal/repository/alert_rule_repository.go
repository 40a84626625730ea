package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/lib/pq"
)

type AlertRuleRepository interface {
	Create(ctx context.Context, rule models.AlertRule) (models.AlertRule, error)
	Get(ctx context.Context, id string) (models.AlertRule, error)
	List(ctx context.Context) ([]models.AlertRule, error)
	ListActive(ctx context.Context) ([]models.AlertRule, error)
	Update(ctx context.Context, rule models.AlertRule) (models.AlertRule, error)
	SetActive(ctx context.Context, id string, active bool) (models.AlertRule, error)
}

type alertRuleRepository struct {
	db *sql.DB
}

func NewAlertRuleRepository(db *sql.DB) AlertRuleRepository {
	return &alertRuleRepository{db: db}
}

const alertRuleColumns = `id, user_email, parks, site_types, weekend_only, min_nights, max_price, advance_notice_days, is_active, created_at, updated_at`

func (r *alertRuleRepository) Create(ctx context.Context, rule models.AlertRule) (models.AlertRule, error) {
	query := fmt.Sprintf(`
		INSERT INTO campwatch.alert_rules
			(user_email, parks, site_types, weekend_only, min_nights, max_price, advance_notice_days, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, alertRuleColumns)

	row := r.db.QueryRowContext(ctx, query,
		rule.UserEmail,
		parksArray(rule.Parks),
		siteTypesArray(rule.SiteTypes),
		rule.WeekendOnly,
		rule.MinNights,
		rule.MaxPrice,
		rule.AdvanceNoticeDays,
		rule.IsActive,
	)
	return scanAlertRule(row)
}

func (r *alertRuleRepository) Get(ctx context.Context, id string) (models.AlertRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM campwatch.alert_rules WHERE id = $1`, alertRuleColumns)
	return scanAlertRule(r.db.QueryRowContext(ctx, query, id))
}

func (r *alertRuleRepository) List(ctx context.Context) ([]models.AlertRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM campwatch.alert_rules ORDER BY created_at DESC`, alertRuleColumns)
	return r.queryRules(ctx, query)
}

func (r *alertRuleRepository) ListActive(ctx context.Context) ([]models.AlertRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM campwatch.alert_rules WHERE is_active ORDER BY created_at`, alertRuleColumns)
	return r.queryRules(ctx, query)
}

func (r *alertRuleRepository) Update(ctx context.Context, rule models.AlertRule) (models.AlertRule, error) {
	query := fmt.Sprintf(`
		UPDATE campwatch.alert_rules
		SET user_email = $2,
		    parks = $3,
		    site_types = $4,
		    weekend_only = $5,
		    min_nights = $6,
		    max_price = $7,
		    advance_notice_days = $8,
		    is_active = $9,
		    updated_at = now()
		WHERE id = $1
		RETURNING %s
	`, alertRuleColumns)

	row := r.db.QueryRowContext(ctx, query,
		rule.ID,
		rule.UserEmail,
		parksArray(rule.Parks),
		siteTypesArray(rule.SiteTypes),
		rule.WeekendOnly,
		rule.MinNights,
		rule.MaxPrice,
		rule.AdvanceNoticeDays,
		rule.IsActive,
	)
	return scanAlertRule(row)
}

func (r *alertRuleRepository) SetActive(ctx context.Context, id string, active bool) (models.AlertRule, error) {
	query := fmt.Sprintf(`
		UPDATE campwatch.alert_rules
		SET is_active = $2, updated_at = now()
		WHERE id = $1
		RETURNING %s
	`, alertRuleColumns)
	return scanAlertRule(r.db.QueryRowContext(ctx, query, id, active))
}

func (r *alertRuleRepository) queryRules(ctx context.Context, query string, args ...interface{}) ([]models.AlertRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.AlertRule
	for rows.Next() {
		rule, err := scanAlertRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func parksArray(parks []models.Park) pq.StringArray {
	out := make(pq.StringArray, len(parks))
	for i, p := range parks {
		out[i] = string(p)
	}
	return out
}

func siteTypesArray(types []models.SiteType) pq.StringArray {
	out := make(pq.StringArray, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func scanAlertRule(scanner interface {
	Scan(dest ...interface{}) error
}) (models.AlertRule, error) {
	var (
		rule      models.AlertRule
		parks     pq.StringArray
		siteTypes pq.StringArray
		maxPrice  sql.NullFloat64
	)

	if err := scanner.Scan(
		&rule.ID,
		&rule.UserEmail,
		&parks,
		&siteTypes,
		&rule.WeekendOnly,
		&rule.MinNights,
		&maxPrice,
		&rule.AdvanceNoticeDays,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return models.AlertRule{}, err
	}

	rule.Parks = make([]models.Park, len(parks))
	for i, p := range parks {
		rule.Parks[i] = models.Park(p)
	}
	rule.SiteTypes = make([]models.SiteType, len(siteTypes))
	for i, t := range siteTypes {
		rule.SiteTypes[i] = models.SiteType(t)
	}
	if maxPrice.Valid {
		v := maxPrice.Float64
		rule.MaxPrice = &v
	}

	return rule, nil
}
