// Package notify sends the transactional email of the marketplace. Each
// email is a background task enqueued by another package; the handlers here
// load what the template needs and hand it to the mailer.
package notify

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"github.com/subhakaryam/subhakaryam/pkg/mailer"
)

var ErrNotFound = errors.New("notify: recipient not found")

//go:embed templates
var templates embed.FS

// Templates returns the embedded layout and email templates.
func Templates() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Config is embedded in the application config.
type Config struct {
	AdminEmail string `env:"NOTIFY_ADMIN_EMAIL" envDefault:"admin@subhakaryam.in"`
	AppURL     string `env:"APP_URL" envDefault:"http://localhost:8080"`
}

// Mailer is satisfied by *mailer.Mailer.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Recipient is a user an email goes to.
type Recipient struct {
	Name  string
	Email string
}

// BookingView is a booking joined with both parties.
type BookingView struct {
	ID           uuid.UUID
	EventDate    time.Time
	EventType    string
	Location     string
	Amount       int64
	Customer     Recipient
	BusinessName string
	Provider     Recipient
}

// PaymentView is a payment joined with its booking.
type PaymentView struct {
	ID            uuid.UUID
	Amount        int64
	Commission    int64
	Payout        int64
	DisputeReason string
	Booking       BookingView
}
