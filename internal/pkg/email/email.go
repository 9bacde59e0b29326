package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/clearway/collections-backend-go/internal/config"
	"github.com/clearway/collections-backend-go/internal/domain/notification"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailSender renders a notification payload into its HTML template and
// delivers it over SMTP. It implements the notification sender port.
type EmailSender struct {
	cfg       config.SMTPConfig
	templates *template.Template
}

// NewEmailSender creates a new email sender instance
func NewEmailSender(cfg config.SMTPConfig) (*EmailSender, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &EmailSender{
		cfg:       cfg,
		templates: tmpl,
	}, nil
}

// Send renders and delivers one notification.
func (s *EmailSender) Send(ctx context.Context, recipient string, payload notification.Payload) error {
	var templateName, subject string

	switch payload.NotificationType() {
	case notification.TypeBookingConfirmed:
		templateName = "booking_confirmed.html"
		subject = "Your collection is booked"
	case notification.TypeCollectionCompleted:
		templateName = "collection_completed.html"
		subject = "Collection completed"
	case notification.TypeCollectionReminder:
		templateName = "collection_reminder.html"
		subject = "Your collection is tomorrow"
	case notification.TypePaymentFailed:
		templateName = "payment_failed.html"
		subject = "Payment failed for your subscription"
	default:
		return fmt.Errorf("no template for notification type %q", payload.NotificationType())
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, payload); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(recipient, subject, body.String())
}

func (s *EmailSender) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := smtp.SendMail(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			time.Sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
