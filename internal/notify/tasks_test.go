package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/subhakaryam/subhakaryam/internal/auth"
	"github.com/subhakaryam/subhakaryam/internal/booking"
	"github.com/subhakaryam/subhakaryam/internal/payment"
	"github.com/subhakaryam/subhakaryam/pkg/logger"
	"github.com/subhakaryam/subhakaryam/pkg/mailer"
)

var testCfg = Config{AdminEmail: "ops@subhakaryam.in", AppURL: "https://subhakaryam.in"}

func newNotifier(dir Directory) (*Notifier, *outbox) {
	box := &outbox{}
	m := mailer.New(box, mailer.NewRenderer(Templates()), mailer.Config{FallbackSubject: "Update"})
	return New(dir, m, testCfg, logger.NewNope()), box
}

func testBookingView() *BookingView {
	return &BookingView{
		ID:           uuid.New(),
		EventDate:    time.Date(2026, 11, 22, 0, 0, 0, 0, time.UTC),
		EventType:    "Gruhapravesam",
		Location:     "Madhapur, Hyderabad",
		Amount:       2500000,
		Customer:     Recipient{Name: "Asha", Email: "asha@example.com"},
		BusinessName: "Sri Venkateswara Purohit Services",
		Provider:     Recipient{Name: "Ravi Sharma", Email: "ravi@example.com"},
	}
}

func TestSendWelcomeEmail(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	dir := &MockDirectory{}
	dir.On("User", mock.Anything, uid).Return(&Recipient{Name: "Asha", Email: "asha@example.com"}, nil)
	n, box := newNotifier(dir)

	task := NewSendWelcomeEmail(n)
	assert.Equal(t, auth.TaskSendWelcomeEmail, task.Name())
	require.NoError(t, task.Handle(context.Background(), auth.WelcomePayload{UserID: uid}))

	require.Len(t, box.sent, 1)
	e := box.sent[0]
	assert.Equal(t, []string{"asha@example.com"}, e.To)
	assert.Equal(t, "Welcome to Subhakaryam, Asha", e.Subject)
	assert.Contains(t, e.HTML, `href="https://subhakaryam.in"`)
	assert.Equal(t, auth.TaskSendWelcomeEmail, e.Tags["task"])
}

func TestBookingRequested(t *testing.T) {
	t.Parallel()

	b := testBookingView()
	dir := &MockDirectory{}
	dir.On("Booking", mock.Anything, b.ID).Return(b, nil)
	n, box := newNotifier(dir)

	task := NewBookingRequested(n)
	assert.Equal(t, booking.TaskNotifyBookingRequested, task.Name())
	require.NoError(t, task.Handle(context.Background(), booking.NotifyPayload{BookingID: b.ID}))

	require.Len(t, box.sent, 1)
	e := box.sent[0]
	assert.Equal(t, []string{"ravi@example.com"}, e.To)
	assert.Equal(t, "asha@example.com", e.ReplyTo)
	assert.Equal(t, "New booking request for 22 Nov 2026", e.Subject)
	assert.Contains(t, e.Text, "| Amount | ₹25,000.00 |")
	assert.Contains(t, e.Text, "https://subhakaryam.in/bookings/"+b.ID.String())
	assert.Contains(t, e.HTML, "<strong>Asha</strong>")
}

func TestBookingConfirmed(t *testing.T) {
	t.Parallel()

	b := testBookingView()
	dir := &MockDirectory{}
	dir.On("Booking", mock.Anything, b.ID).Return(b, nil)
	n, box := newNotifier(dir)

	require.NoError(t, NewBookingConfirmed(n).Handle(context.Background(), booking.NotifyPayload{BookingID: b.ID}))

	require.Len(t, box.sent, 1)
	e := box.sent[0]
	assert.Equal(t, []string{"asha@example.com"}, e.To)
	assert.Equal(t, "Sri Venkateswara Purohit Services confirmed your booking", e.Subject)
	assert.Contains(t, e.Text, "The amount due is **₹25,000.00**.")
}

func TestPaymentReleased(t *testing.T) {
	t.Parallel()

	pay := &PaymentView{ID: uuid.New(), Amount: 2500000, Commission: 250000, Payout: 2250000, Booking: *testBookingView()}
	dir := &MockDirectory{}
	dir.On("Payment", mock.Anything, pay.ID).Return(pay, nil)
	n, box := newNotifier(dir)

	task := NewPaymentReleased(n)
	assert.Equal(t, payment.TaskNotifyPaymentReleased, task.Name())
	require.NoError(t, task.Handle(context.Background(), payment.NotifyPayload{PaymentID: pay.ID}))

	require.Len(t, box.sent, 1)
	e := box.sent[0]
	assert.Equal(t, []string{"ravi@example.com"}, e.To)
	assert.Equal(t, "Payout of ₹22,500.00 released", e.Subject)
	assert.Contains(t, e.Text, "| Commission | ₹2,500.00 |")
}

func TestDisputeOpened(t *testing.T) {
	t.Parallel()

	pay := &PaymentView{ID: uuid.New(), Amount: 2500000, DisputeReason: "Priest never arrived", Booking: *testBookingView()}
	dir := &MockDirectory{}
	dir.On("Payment", mock.Anything, pay.ID).Return(pay, nil)
	n, box := newNotifier(dir)

	task := NewDisputeOpened(n)
	assert.Equal(t, payment.TaskNotifyDisputeOpened, task.Name())
	require.NoError(t, task.Handle(context.Background(), payment.NotifyPayload{PaymentID: pay.ID}))

	require.Len(t, box.sent, 1)
	e := box.sent[0]
	assert.Equal(t, []string{"ops@subhakaryam.in"}, e.To)
	assert.Equal(t, "asha@example.com", e.ReplyTo)
	assert.Equal(t, "Dispute opened on payment "+pay.ID.String(), e.Subject)
	assert.Contains(t, e.Text, "> Priest never arrived")
	assert.Contains(t, e.HTML, "<blockquote>")
}

func TestNotifier_Failures(t *testing.T) {
	t.Parallel()

	t.Run("missing record is dropped", func(t *testing.T) {
		t.Parallel()
		dir := &MockDirectory{}
		dir.On("Booking", mock.Anything, mock.Anything).Return(nil, ErrNotFound)
		n, box := newNotifier(dir)

		require.NoError(t, NewBookingRequested(n).Handle(context.Background(), booking.NotifyPayload{BookingID: uuid.New()}))
		assert.Empty(t, box.sent)
	})

	t.Run("lookup error is retried", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("connection reset")
		dir := &MockDirectory{}
		dir.On("User", mock.Anything, mock.Anything).Return(nil, boom)
		n, _ := newNotifier(dir)

		require.ErrorIs(t, NewSendWelcomeEmail(n).Handle(context.Background(), auth.WelcomePayload{UserID: uuid.New()}), boom)
	})

	t.Run("delivery error is retried", func(t *testing.T) {
		t.Parallel()
		b := testBookingView()
		dir := &MockDirectory{}
		dir.On("Booking", mock.Anything, b.ID).Return(b, nil)
		n, box := newNotifier(dir)
		box.err = errors.New("rate limited")

		err := NewBookingConfirmed(n).Handle(context.Background(), booking.NotifyPayload{BookingID: b.ID})
		require.ErrorIs(t, err, mailer.ErrSendFailed)
	})
}
