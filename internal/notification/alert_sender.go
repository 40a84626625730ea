package notification

import (
	"context"
	"time"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/rs/zerolog"
)

// EmailAlertSender renders matched sites into a single email per rule and
// delivers it through the mailer.
type EmailAlertSender struct {
	mailer Mailer
	log    zerolog.Logger
}

func NewEmailAlertSender(mailer Mailer, logger zerolog.Logger) *EmailAlertSender {
	return &EmailAlertSender{
		mailer: mailer,
		log:    logger.With().Str("component", "alert_sender").Logger(),
	}
}

func (s *EmailAlertSender) SendAlert(ctx context.Context, rule models.AlertRule, sites []models.AvailabilityRecord) error {
	subject, body, err := RenderAlertEmail(sites, time.Now())
	if err != nil {
		return err
	}

	if err := s.mailer.Send([]string{rule.UserEmail}, subject, body); err != nil {
		return err
	}

	s.log.Debug().
		Str("rule_id", rule.ID).
		Str("recipient", rule.UserEmail).
		Int("sites", len(sites)).
		Msg("alert email delivered")
	return nil
}
