package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// DigestLine is one event row of the daily digest email.
type DigestLine struct {
	Start         string
	End           string
	Title         string
	Person        string
	PersonEmoji   string
	CategoryEmoji string
	HasReminder   bool
}

// PersonCount is one entry of the per-person summary.
type PersonCount struct {
	Person string
	Emoji  string
	Count  int
}

// DailyDigestEmailData holds data for the daily_digest email template.
type DailyDigestEmailData struct {
	Email   string
	DayName string
	Date    string
	Lines   []DigestLine
	Counts  []PersonCount
	AppURL  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendDailyDigest(ctx context.Context, data *DailyDigestEmailData) error
}
