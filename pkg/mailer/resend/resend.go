// Package resend delivers mailer.Email through the Resend API.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/subhakaryam/subhakaryam/pkg/mailer"
)

// Config is embedded in the application config.
type Config struct {
	APIKey    string `env:"RESEND_API_KEY"`
	FromEmail string `env:"RESEND_FROM_EMAIL" envDefault:"bookings@subhakaryam.in"`
	FromName  string `env:"RESEND_FROM_NAME" envDefault:"Subhakaryam"`
}

// Sender implements mailer.Sender.
type Sender struct {
	client *resend.Client
	from   string
}

var _ mailer.Sender = (*Sender)(nil)

// New builds a Sender from cfg.
func New(cfg Config) *Sender {
	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	return &Sender{client: resend.NewClient(cfg.APIKey), from: from}
}

func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if _, err := s.client.Emails.SendWithContext(ctx, request(s.from, email)); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

func request(from string, email *mailer.Email) *resend.SendEmailRequest {
	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	}
	for name, value := range email.Tags {
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: value})
	}
	return req
}
