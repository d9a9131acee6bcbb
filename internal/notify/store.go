package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/subhakaryam/subhakaryam/pkg/db"
)

// Directory looks up the people an email is about.
type Directory interface {
	User(ctx context.Context, id uuid.UUID) (*Recipient, error)
	Booking(ctx context.Context, id uuid.UUID) (*BookingView, error)
	Payment(ctx context.Context, id uuid.UUID) (*PaymentView, error)
}

// PGDirectory reads recipients from PostgreSQL.
type PGDirectory struct {
	q db.DBTX
}

func NewPGDirectory(q db.DBTX) *PGDirectory {
	return &PGDirectory{q: q}
}

func (d *PGDirectory) User(ctx context.Context, id uuid.UUID) (*Recipient, error) {
	var r Recipient
	err := d.q.QueryRow(ctx, `SELECT name, email FROM users WHERE id = $1`, id).Scan(&r.Name, &r.Email)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const bookingQuery = `
	SELECT b.id, b.event_date, b.event_type, b.location, b.amount,
	       c.name, c.email, p.business_name, pu.name, pu.email
	FROM bookings b
	JOIN users c ON c.id = b.customer_id
	JOIN providers p ON p.id = b.provider_id
	JOIN users pu ON pu.id = p.user_id`

func (d *PGDirectory) Booking(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	var b BookingView
	err := d.q.QueryRow(ctx, bookingQuery+` WHERE b.id = $1`, id).Scan(
		&b.ID, &b.EventDate, &b.EventType, &b.Location, &b.Amount,
		&b.Customer.Name, &b.Customer.Email, &b.BusinessName, &b.Provider.Name, &b.Provider.Email,
	)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (d *PGDirectory) Payment(ctx context.Context, id uuid.UUID) (*PaymentView, error) {
	var p PaymentView
	err := d.q.QueryRow(ctx, `
		SELECT pay.id, pay.amount, pay.commission, pay.payout, pay.dispute_reason,
		       b.id, b.event_date, b.event_type, b.location, b.amount,
		       c.name, c.email, p.business_name, pu.name, pu.email
		FROM payments pay
		JOIN bookings b ON b.id = pay.booking_id
		JOIN users c ON c.id = b.customer_id
		JOIN providers p ON p.id = b.provider_id
		JOIN users pu ON pu.id = p.user_id
		WHERE pay.id = $1`,
		id,
	).Scan(
		&p.ID, &p.Amount, &p.Commission, &p.Payout, &p.DisputeReason,
		&p.Booking.ID, &p.Booking.EventDate, &p.Booking.EventType, &p.Booking.Location, &p.Booking.Amount,
		&p.Booking.Customer.Name, &p.Booking.Customer.Email, &p.Booking.BusinessName,
		&p.Booking.Provider.Name, &p.Booking.Provider.Email,
	)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
