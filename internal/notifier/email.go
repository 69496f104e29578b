package notifier

import (
	"context"
	"fmt"

	"github.com/gatherhub/gather-api/internal/config"
	"github.com/gatherhub/gather-api/internal/models"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

type Notifier interface {
	NotifyRegistration(ctx context.Context, user models.User, event models.Event, waitlisted bool) error
}

type EmailNotifier struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

// NewEmailNotifier builds a resend-backed notifier. Without an API key it
// degrades to a no-op so registration still works in development.
func NewEmailNotifier(cfg *config.Config, logger zerolog.Logger) *EmailNotifier {
	n := &EmailNotifier{from: cfg.EmailFrom, logger: logger}
	if cfg.ResendAPIKey == "" {
		logger.Info().Msg("RESEND_API_KEY not set, registration emails disabled")
		return n
	}
	n.client = resend.NewClient(cfg.ResendAPIKey)
	return n
}

func (n *EmailNotifier) NotifyRegistration(ctx context.Context, user models.User, event models.Event, waitlisted bool) error {
	if n.client == nil {
		return nil
	}

	subject := fmt.Sprintf("You're registered: %s", event.Title)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>You are registered for <strong>%s</strong> on %s at %s.</p>",
		user.Username, event.Title, event.DateTime.Format("2006-01-02 15:04"), event.Location,
	)
	if waitlisted {
		subject = fmt.Sprintf("You're on the waitlist: %s", event.Title)
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p><strong>%s</strong> is full. You have been added to the waitlist.</p>",
			user.Username, event.Title,
		)
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{user.Email},
		Subject: subject,
		Html:    body,
	}

	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send registration email: %w", err)
	}

	n.logger.Info().
		Str("email_id", sent.Id).
		Str("to", user.Email).
		Uint("event_id", event.ID).
		Msg("registration email sent")
	return nil
}
