// Package email delivers transactional mail for assignment notifications.
package email

import (
	"context"

	"bedrijvengids_backend/platform/config"
	"bedrijvengids_backend/platform/logger"
)

// AssignmentOfferData carries the lead details shown to a notified company.
type AssignmentOfferData struct {
	CompanyName string
	PostalCode  string
	Note        string
	BudgetBand  string
	TimeWindow  string
	Score       int
	Explanation string
	RespondURL  string
}

// Sender delivers notification emails.
type Sender interface {
	SendAssignmentOffer(ctx context.Context, toEmail string, data AssignmentOfferData) error
}

// NewSender returns the SMTP sender when email is enabled, otherwise a
// logging no-op so local environments work without an SMTP server.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		return &NoopSender{log: log}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

// NoopSender logs instead of sending. Used when email is disabled.
type NoopSender struct {
	log *logger.Logger
}

func (n *NoopSender) SendAssignmentOffer(_ context.Context, toEmail string, data AssignmentOfferData) error {
	n.log.Info("email disabled, skipping assignment offer",
		"to", toEmail,
		"company", data.CompanyName,
		"score", data.Score)
	return nil
}
