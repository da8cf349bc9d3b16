package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"marketplace_backend/platform/config"
)

// NewSender builds the configured sender. When email delivery is disabled
// every send becomes a no-op.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	if cfg.GetSMTPHost() == "" {
		return nil, fmt.Errorf("email enabled but SMTP_HOST is empty")
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, toEmail, fullName string) error {
	content, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{
			Title:   "Welcome to ByDayGigs",
			Heading: "Welcome to ByDayGigs",
		},
		FullName: fullName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectWelcome, content)
}

func (s *SMTPSender) SendNewLeadEmail(ctx context.Context, toEmail, providerName, customerName, serviceTitle, expiresAt, leadURL string) error {
	subject := fmt.Sprintf(subjectNewLeadFmt, serviceTitle)
	content, err := renderEmailTemplate("new_lead.html", newLeadEmailData{
		baseEmailData: baseEmailData{
			Title:    "You have a new lead",
			Heading:  "You have a new lead",
			CTALabel: "Respond to lead",
			CTAURL:   leadURL,
		},
		ProviderName: providerName,
		CustomerName: customerName,
		ServiceTitle: serviceTitle,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendLeadConvertedEmail(ctx context.Context, toEmail, providerName, serviceTitle string) error {
	subject := fmt.Sprintf(subjectLeadConvertedFmt, serviceTitle)
	content, err := renderEmailTemplate("lead_converted.html", leadConvertedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Lead converted",
			Heading: "Lead converted",
		},
		ProviderName: providerName,
		ServiceTitle: serviceTitle,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendBookingConfirmationEmail(ctx context.Context, toEmail, customerName, serviceTitle, scheduledDate string, amountCents int64) error {
	subject := fmt.Sprintf(subjectBookingConfirmedFmt, serviceTitle)
	content, err := renderEmailTemplate("booking_confirmation.html", bookingConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:   "Booking confirmed",
			Heading: "Booking confirmed",
		},
		CustomerName:    customerName,
		ServiceTitle:    serviceTitle,
		ScheduledDate:   scheduledDate,
		AmountFormatted: formatCurrencyUSD(amountCents),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}
