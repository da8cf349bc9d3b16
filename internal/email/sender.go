// Package email renders and delivers transactional emails.
package email

import "context"

// Sender delivers transactional emails. Implementations render the embedded
// HTML templates and hand them to a delivery backend.
type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, fullName string) error
	SendNewLeadEmail(ctx context.Context, toEmail, providerName, customerName, serviceTitle, expiresAt, leadURL string) error
	SendLeadConvertedEmail(ctx context.Context, toEmail, providerName, serviceTitle string) error
	SendBookingConfirmationEmail(ctx context.Context, toEmail, customerName, serviceTitle, scheduledDate string, amountCents int64) error
}

// NoopSender is used when email delivery is disabled (local development,
// tests). All sends succeed without doing anything.
type NoopSender struct{}

func (NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, fullName string) error {
	return nil
}

func (NoopSender) SendNewLeadEmail(ctx context.Context, toEmail, providerName, customerName, serviceTitle, expiresAt, leadURL string) error {
	return nil
}

func (NoopSender) SendLeadConvertedEmail(ctx context.Context, toEmail, providerName, serviceTitle string) error {
	return nil
}

func (NoopSender) SendBookingConfirmationEmail(ctx context.Context, toEmail, customerName, serviceTitle, scheduledDate string, amountCents int64) error {
	return nil
}

var _ Sender = NoopSender{}
