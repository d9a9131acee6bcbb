package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/subhakaryam/subhakaryam/internal/auth"
	"github.com/subhakaryam/subhakaryam/internal/booking"
	"github.com/subhakaryam/subhakaryam/internal/payment"
	"github.com/subhakaryam/subhakaryam/pkg/i18n"
	"github.com/subhakaryam/subhakaryam/pkg/mailer"
)

// Notifier holds what every email task needs.
type Notifier struct {
	dir    Directory
	mail   Mailer
	cfg    Config
	format *i18n.LocaleFormat
	logger *slog.Logger
}

func New(dir Directory, mail Mailer, cfg Config, log *slog.Logger) *Notifier {
	return &Notifier{dir: dir, mail: mail, cfg: cfg, format: i18n.FormatEnIN(), logger: log}
}

// send delivers one email. Records that disappeared before the job ran are
// logged and dropped so the job is not retried.
func (n *Notifier) send(ctx context.Context, task string, lookupErr error, msg func() mailer.Message) error {
	if errors.Is(lookupErr, ErrNotFound) {
		n.logger.WarnContext(ctx, "notification dropped, record not found", slog.String("task", task))
		return nil
	}
	if lookupErr != nil {
		return lookupErr
	}
	m := msg()
	if m.Tags == nil {
		m.Tags = map[string]string{}
	}
	m.Tags["task"] = task
	return n.mail.Send(ctx, m)
}

func (n *Notifier) bookingData(b *BookingView) map[string]string {
	return map[string]string{
		"BusinessName": b.BusinessName,
		"CustomerName": b.Customer.Name,
		"ProviderName": b.Provider.Name,
		"EventType":    b.EventType,
		"EventDate":    n.format.FormatDate(b.EventDate),
		"Location":     b.Location,
		"Amount":       i18n.FormatINR(b.Amount),
		"BookingURL":   n.cfg.AppURL + "/bookings/" + b.ID.String(),
	}
}

// SendWelcomeEmail greets a new user.
type SendWelcomeEmail struct{ n *Notifier }

func NewSendWelcomeEmail(n *Notifier) *SendWelcomeEmail { return &SendWelcomeEmail{n: n} }

func (t *SendWelcomeEmail) Name() string { return auth.TaskSendWelcomeEmail }

func (t *SendWelcomeEmail) Handle(ctx context.Context, p auth.WelcomePayload) error {
	u, err := t.n.dir.User(ctx, p.UserID)
	return t.n.send(ctx, t.Name(), err, func() mailer.Message {
		return mailer.Message{
			To:       u.Email,
			Template: "welcome.md",
			Data:     map[string]string{"Name": u.Name, "AppURL": t.n.cfg.AppURL},
		}
	})
}

// BookingRequested tells the provider about a new request.
type BookingRequested struct{ n *Notifier }

func NewBookingRequested(n *Notifier) *BookingRequested { return &BookingRequested{n: n} }

func (t *BookingRequested) Name() string { return booking.TaskNotifyBookingRequested }

func (t *BookingRequested) Handle(ctx context.Context, p booking.NotifyPayload) error {
	b, err := t.n.dir.Booking(ctx, p.BookingID)
	return t.n.send(ctx, t.Name(), err, func() mailer.Message {
		return mailer.Message{
			To:       b.Provider.Email,
			ReplyTo:  b.Customer.Email,
			Template: "booking_requested.md",
			Data:     t.n.bookingData(b),
		}
	})
}

// BookingConfirmed tells the customer the provider accepted.
type BookingConfirmed struct{ n *Notifier }

func NewBookingConfirmed(n *Notifier) *BookingConfirmed { return &BookingConfirmed{n: n} }

func (t *BookingConfirmed) Name() string { return booking.TaskNotifyBookingConfirmed }

func (t *BookingConfirmed) Handle(ctx context.Context, p booking.NotifyPayload) error {
	b, err := t.n.dir.Booking(ctx, p.BookingID)
	return t.n.send(ctx, t.Name(), err, func() mailer.Message {
		return mailer.Message{
			To:       b.Customer.Email,
			ReplyTo:  b.Provider.Email,
			Template: "booking_confirmed.md",
			Data:     t.n.bookingData(b),
		}
	})
}

// PaymentReleased tells the provider the payout is on its way.
type PaymentReleased struct{ n *Notifier }

func NewPaymentReleased(n *Notifier) *PaymentReleased { return &PaymentReleased{n: n} }

func (t *PaymentReleased) Name() string { return payment.TaskNotifyPaymentReleased }

func (t *PaymentReleased) Handle(ctx context.Context, p payment.NotifyPayload) error {
	pay, err := t.n.dir.Payment(ctx, p.PaymentID)
	return t.n.send(ctx, t.Name(), err, func() mailer.Message {
		data := t.n.bookingData(&pay.Booking)
		data["Commission"] = i18n.FormatINR(pay.Commission)
		data["Payout"] = i18n.FormatINR(pay.Payout)
		return mailer.Message{
			To:       pay.Booking.Provider.Email,
			Template: "payment_released.md",
			Data:     data,
		}
	})
}

// DisputeOpened alerts the back office.
type DisputeOpened struct{ n *Notifier }

func NewDisputeOpened(n *Notifier) *DisputeOpened { return &DisputeOpened{n: n} }

func (t *DisputeOpened) Name() string { return payment.TaskNotifyDisputeOpened }

func (t *DisputeOpened) Handle(ctx context.Context, p payment.NotifyPayload) error {
	pay, err := t.n.dir.Payment(ctx, p.PaymentID)
	return t.n.send(ctx, t.Name(), err, func() mailer.Message {
		data := t.n.bookingData(&pay.Booking)
		data["PaymentID"] = pay.ID.String()
		data["Reason"] = pay.DisputeReason
		return mailer.Message{
			To:       t.n.cfg.AdminEmail,
			ReplyTo:  pay.Booking.Customer.Email,
			Template: "dispute_opened.md",
			Data:     data,
		}
	})
}
