package payment

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/subhakaryam/subhakaryam/internal/auth"
	"github.com/subhakaryam/subhakaryam/internal/web/webtest"
	"github.com/subhakaryam/subhakaryam/pkg/job/jobtest"
)

func newServer(store *MockStore) *webtest.Server {
	return webtest.New(auth.Permissions(), NewHandler(newService(store, &jobtest.Recorder{}, anyRecorder())))
}

func webhookRequest(body []byte, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, signature)
	return req
}

func TestHandler_Webhook(t *testing.T) {
	t.Parallel()

	p := &Payment{ID: uuid.New(), Status: StatusHeld}
	store := &MockStore{}
	store.On("Get", mock.Anything, p.ID).Return(p, nil)
	srv := newServer(store)

	body := capturedEvent(p.ID)
	rec := srv.Do(webhookRequest(body, Sign(testSecret, body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	srv.Do(webhookRequest(body, Sign("nope", body)))
	assert.ErrorIs(t, srv.Err(), ErrInvalidSignature)
}

func TestHandler_Webhook_TooLarge(t *testing.T) {
	t.Parallel()

	srv := newServer(&MockStore{})
	body := []byte(`{"event":"` + strings.Repeat("x", maxWebhookBody) + `"}`)
	rec := srv.Do(webhookRequest(body, Sign(testSecret, body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandler_ForBooking(t *testing.T) {
	t.Parallel()

	customer := uuid.New()
	bookingID := uuid.New()
	store := &MockStore{}
	store.On("Booking", mock.Anything, bookingID).Return(&BookingRef{CustomerID: customer}, nil)
	store.On("GetByBooking", mock.Anything, bookingID).
		Return(&Payment{BookingID: bookingID, Amount: 500_000, Commission: 50_000, Payout: 450_000, Status: StatusHeld}, nil)
	srv := newServer(store)
	target := "/api/bookings/" + bookingID.String() + "/payment"

	rec := srv.Do(webtest.AsUser(webtest.Request(t, http.MethodGet, target, nil), customer.String(), "customer"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got Payment
	webtest.Decode(t, rec, &got)
	assert.Equal(t, int64(450_000), got.Payout)
	assert.Equal(t, StatusHeld, got.Status)

	srv.Do(webtest.AsUser(webtest.Request(t, http.MethodGet, target, nil), uuid.NewString(), "provider"))
	assert.ErrorIs(t, srv.Err(), ErrNotParticipant)

	rec = srv.Do(webtest.AsUser(webtest.Request(t, http.MethodGet, target, nil), uuid.NewString(), "admin"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.Do(webtest.Request(t, http.MethodGet, target, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Dispute(t *testing.T) {
	t.Parallel()

	customer := uuid.New()
	p := &Payment{ID: uuid.New(), BookingID: uuid.New(), Status: StatusHeld}
	store := &MockStore{}
	store.On("Get", mock.Anything, p.ID).Return(p, nil)
	store.On("Booking", mock.Anything, p.BookingID).Return(&BookingRef{CustomerID: customer}, nil)
	store.On("Transition", mock.Anything, p.ID, []Status{StatusHeld}, StatusDisputed, "Food was cold").
		Return(&Payment{ID: p.ID, Status: StatusDisputed, DisputeReason: "Food was cold"}, nil)
	srv := newServer(store)
	target := "/api/payments/" + p.ID.String() + "/dispute"

	rec := srv.Do(webtest.AsUser(webtest.Request(t, http.MethodPost, target, map[string]string{"reason": "Food was cold"}), customer.String(), "customer"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"disputed"`)

	rec = srv.Do(webtest.AsUser(webtest.Request(t, http.MethodPost, target, map[string]string{}), customer.String(), "customer"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = srv.Do(webtest.AsUser(webtest.Request(t, http.MethodPost, target, map[string]string{"reason": "x"}), uuid.NewString(), "provider"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
