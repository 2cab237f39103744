package services

import (
	"context"
	"fmt"
	"log/slog"

	"familycal/internal/domain"
)

const dailyDigestTemplate = "daily_digest"

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendDailyDigest mails the day's schedule using the "daily_digest" template.
func (s *emailService) SendDailyDigest(ctx context.Context, data *domain.DailyDigestEmailData) error {
	if data == nil {
		return fmt.Errorf("daily digest data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render(dailyDigestTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", dailyDigestTemplate, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send daily digest email: %w", err)
	}
	s.logger.InfoContext(ctx, "daily digest email sent", "to", data.Email)
	return nil
}
