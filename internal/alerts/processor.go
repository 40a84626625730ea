package alerts

import (
	"context"
	"sort"
	"time"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/campwatch/campwatch-api/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// AlertSender delivers one alert email covering the matched sites for a rule.
type AlertSender interface {
	SendAlert(ctx context.Context, rule models.AlertRule, sites []models.AvailabilityRecord) error
}

// ProcessorConfig carries the retry and dedup policy for alert delivery.
type ProcessorConfig struct {
	Cooldown          time.Duration
	MaxRetries        int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	MaxSitesPerEmail  int
	AdvanceNoticeMode AdvanceNoticeMode
}

// Stats summarizes one processing run.
type Stats struct {
	RulesEvaluated int `json:"rules_evaluated"`
	Matched        int `json:"matched"`
	Claimed        int `json:"claimed"`
	Sent           int `json:"sent"`
	Failed         int `json:"failed"`
}

// Processor evaluates alert rules against availability changes and delivers
// notifications at most once per (rule, site, date) within the cooldown.
type Processor struct {
	rules         repository.AlertRuleRepository
	notifications repository.NotificationRepository
	sender        AlertSender
	cfg           ProcessorConfig
	log           zerolog.Logger
	now           func() time.Time
}

func NewProcessor(
	rules repository.AlertRuleRepository,
	notifications repository.NotificationRepository,
	sender AlertSender,
	cfg ProcessorConfig,
	logger zerolog.Logger,
) *Processor {
	if cfg.MaxSitesPerEmail <= 0 {
		cfg.MaxSitesPerEmail = 10
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = 2
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	return &Processor{
		rules:         rules,
		notifications: notifications,
		sender:        sender,
		cfg:           cfg,
		log:           logger.With().Str("component", "alert_processor").Logger(),
		now:           time.Now,
	}
}

type claimedSite struct {
	recordID string
	site     models.AvailabilityRecord
}

// Process matches alertable change events against every active rule, claims
// a notification slot per matched site, and sends one email per rule. Sites
// that lose the claim, because another worker holds it or the cooldown has
// not elapsed, are silently skipped.
func (p *Processor) Process(ctx context.Context, scraped []models.AvailabilityRecord, events []ChangeEvent) (Stats, error) {
	var stats Stats

	var alertable []models.AvailabilityRecord
	for _, ev := range events {
		if ev.Alertable() {
			alertable = append(alertable, ev.Record)
		}
	}
	if len(alertable) == 0 {
		return stats, nil
	}

	rules, err := p.rules.ListActive(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "list active alert rules")
	}
	stats.RulesEvaluated = len(rules)

	dates := BuildSiteDates(scraped)
	opts := MatchOptions{AdvanceNoticeMode: p.cfg.AdvanceNoticeMode, Now: p.now()}

	for _, rule := range rules {
		var matched []models.AvailabilityRecord
		for _, rec := range alertable {
			if Match(rule, rec, dates, opts) {
				matched = append(matched, rec)
			}
		}
		if len(matched) == 0 {
			continue
		}
		stats.Matched += len(matched)

		sort.Slice(matched, func(i, j int) bool {
			return matched[i].CompositeKey() < matched[j].CompositeKey()
		})
		if len(matched) > p.cfg.MaxSitesPerEmail {
			matched = matched[:p.cfg.MaxSitesPerEmail]
		}

		claimed := p.claim(ctx, rule, matched)
		if len(claimed) == 0 {
			continue
		}
		stats.Claimed += len(claimed)

		sites := make([]models.AvailabilityRecord, len(claimed))
		for i, c := range claimed {
			sites[i] = c.site
		}

		if err := p.sendWithRetry(ctx, rule, sites); err != nil {
			p.log.Error().Err(err).Str("rule_id", rule.ID).Int("sites", len(sites)).Msg("alert delivery failed")
			for _, c := range claimed {
				if markErr := p.notifications.MarkFailed(ctx, c.recordID, err.Error()); markErr != nil {
					p.log.Error().Err(markErr).Str("notification_id", c.recordID).Msg("failed to mark notification failed")
				}
			}
			stats.Failed += len(claimed)
			continue
		}

		for _, c := range claimed {
			if markErr := p.notifications.MarkSent(ctx, c.recordID); markErr != nil {
				p.log.Error().Err(markErr).Str("notification_id", c.recordID).Msg("failed to mark notification sent")
			}
		}
		stats.Sent += len(claimed)
		p.log.Info().Str("rule_id", rule.ID).Str("recipient", rule.UserEmail).Int("sites", len(sites)).Msg("alert sent")
	}

	return stats, nil
}

func (p *Processor) claim(ctx context.Context, rule models.AlertRule, matched []models.AvailabilityRecord) []claimedSite {
	var claimed []claimedSite
	for _, rec := range matched {
		record, ok, err := p.notifications.Claim(ctx, repository.ClaimParams{
			AlertRuleID:    rule.ID,
			CompositeKey:   rec.CompositeKey(),
			Park:           rec.Park,
			SiteID:         rec.SiteID,
			CheckInDate:    rec.CheckInDate,
			RecipientEmail: rule.UserEmail,
			Cooldown:       p.cfg.Cooldown,
		})
		if err != nil {
			p.log.Error().Err(err).Str("rule_id", rule.ID).Str("composite_key", rec.CompositeKey()).Msg("notification claim failed")
			continue
		}
		if !ok {
			continue
		}
		claimed = append(claimed, claimedSite{recordID: record.ID, site: rec})
	}
	return claimed
}

func (p *Processor) sendWithRetry(ctx context.Context, rule models.AlertRule, sites []models.AvailabilityRecord) error {
	backoff := p.cfg.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * p.cfg.BackoffMultiplier)
		}

		lastErr = p.sender.SendAlert(ctx, rule, sites)
		if lastErr == nil {
			return nil
		}
		p.log.Warn().Err(lastErr).Str("rule_id", rule.ID).Int("attempt", attempt+1).Msg("alert send attempt failed")
	}

	return errors.Wrapf(lastErr, "giving up after %d attempts", p.cfg.MaxRetries+1)
}
