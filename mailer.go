package auth

import (
	"context"
)

// Mailer sends transactional email
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

// LogMailer is a Mailer stub that only logs what it would send
type LogMailer struct {
	From   string
	logger Logger
}

var _ Mailer = (*LogMailer)(nil)

func NewLogMailer(from string, logger Logger) *LogMailer {
	return &LogMailer{From: from, logger: normalizeLogger(logger)}
}

func (m *LogMailer) SendEmail(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" {
		return NewValidationError("email recipient is required", nil)
	}
	m.logger.Info("email send stubbed",
		"from", m.From,
		"to", to,
		"subject", subject,
		"bytes", len(html),
	)
	return nil
}
