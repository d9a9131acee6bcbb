// Package mailer renders markdown email templates and hands them to a Sender.
//
// Templates are markdown files with a YAML frontmatter block. The frontmatter
// "subject" is itself a text/template:
//
//	---
//	subject: "Booking request for {{.EventDate}}"
//	---
//	Namaste {{.ProviderName}},
//
//	**{{.CustomerName}}** wants to book you.
//
// The body is executed with text/template, converted with goldmark and wrapped
// in an HTML layout. The executed markdown doubles as the plain-text part.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrNoRecipient        = errors.New("mailer: no recipient")
	ErrTemplateNotFound   = errors.New("mailer: template not found")
	ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")
	ErrRenderFailed       = errors.New("mailer: render failed")
	ErrSendFailed         = errors.New("mailer: send failed")
)

// Email is a rendered message ready for delivery.
type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
	Tags    map[string]string
}

// Sender delivers rendered email.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Config is embedded in the application config.
type Config struct {
	Layout          string `env:"MAILER_LAYOUT" envDefault:"layout.html"`
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Update from Subhakaryam"`
}

// Message selects a template and its data.
type Message struct {
	To       string
	Template string
	Data     any
	ReplyTo  string
	Tags     map[string]string
}

// Mailer renders and sends templated email.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	cfg      Config
}

// New wires a sender to a renderer.
func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	if cfg.Layout == "" {
		cfg.Layout = "layout.html"
	}
	return &Mailer{sender: sender, renderer: renderer, cfg: cfg}
}

// Send renders msg.Template and delivers it to msg.To.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	out, err := m.renderer.Render(m.cfg.Layout, msg.Template, msg.Data)
	if err != nil {
		return err
	}
	subject := out.Subject
	if subject == "" {
		subject = m.cfg.FallbackSubject
	}

	err = m.sender.Send(ctx, &Email{
		To:      []string{msg.To},
		Subject: subject,
		HTML:    out.HTML,
		Text:    out.Text,
		ReplyTo: msg.ReplyTo,
		Tags:    msg.Tags,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSendFailed, msg.Template, err)
	}
	return nil
}

// LogSender writes emails to a logger instead of delivering them.
// Used when no email provider is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, email *Email) error {
	s.Logger.InfoContext(ctx, "email not sent, no provider configured",
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
	)
	return nil
}
