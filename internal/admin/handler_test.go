package admin

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/subhakaryam/subhakaryam/internal/auth"
	"github.com/subhakaryam/subhakaryam/internal/payment"
	"github.com/subhakaryam/subhakaryam/internal/provider"
	"github.com/subhakaryam/subhakaryam/internal/web/webtest"
	"github.com/subhakaryam/subhakaryam/pkg/logger"
)

func newServer() (*webtest.Server, *MockProviders, *MockPayments) {
	providers, payments := &MockProviders{}, &MockPayments{}
	return webtest.New(auth.Permissions(), NewHandler(providers, payments, logger.NewNope())), providers, payments
}

func asAdmin(t *testing.T, method, target string, body any) *http.Request {
	return webtest.AsUser(webtest.Request(t, method, target, body), uuid.NewString(), "admin")
}

func TestHandler_Access(t *testing.T) {
	t.Parallel()

	srv, _, _ := newServer()
	targets := []string{"/api/admin/providers", "/api/admin/payments"}
	for _, target := range targets {
		rec := srv.Do(webtest.Request(t, http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)

		for _, role := range []string{"customer", "provider"} {
			rec = srv.Do(webtest.AsUser(webtest.Request(t, http.MethodGet, target, nil), uuid.NewString(), role))
			assert.Equal(t, http.StatusForbidden, rec.Code, "%s as %s", target, role)
		}
	}
}

func TestHandler_ListProviders(t *testing.T) {
	t.Parallel()

	srv, providers, _ := newServer()
	pending := false
	providers.On("List", mock.Anything, provider.Filter{Verified: &pending, Limit: 20}).
		Return([]provider.Provider{{ID: uuid.New(), BusinessName: "Lens & Light"}}, nil).Once()
	providers.On("List", mock.Anything, provider.Filter{Category: provider.CategoryPriest, Limit: 100, Offset: 40}).
		Return(nil, nil).Once()

	rec := srv.Do(asAdmin(t, http.MethodGet, "/api/admin/providers?verified=false", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body providersResponse
	webtest.Decode(t, rec, &body)
	require.Len(t, body.Providers, 1)
	assert.Equal(t, "Lens & Light", body.Providers[0].BusinessName)

	rec = srv.Do(asAdmin(t, http.MethodGet, "/api/admin/providers?category=priest&limit=500&offset=40", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"providers":[]}`, rec.Body.String())

	rec = srv.Do(asAdmin(t, http.MethodGet, "/api/admin/providers?verified=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.Do(asAdmin(t, http.MethodGet, "/api/admin/providers?category=astrologer", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	providers.AssertExpectations(t)
}

func TestHandler_Verify(t *testing.T) {
	t.Parallel()

	srv, providers, _ := newServer()
	id := uuid.New()
	providers.On("Verify", mock.Anything, id, true).Return(&provider.Provider{ID: id, Verified: true}, nil)

	rec := srv.Do(asAdmin(t, http.MethodPost, "/api/admin/providers/"+id.String()+"/verify", map[string]bool{"verified": true}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"verified":true`)

	rec = srv.Do(asAdmin(t, http.MethodPost, "/api/admin/providers/"+id.String()+"/verify", map[string]any{}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	missing := uuid.New()
	providers.On("Verify", mock.Anything, missing, false).Return(nil, provider.ErrNotFound)
	srv.Do(asAdmin(t, http.MethodPost, "/api/admin/providers/"+missing.String()+"/verify", map[string]bool{"verified": false}))
	assert.ErrorIs(t, srv.Err(), provider.ErrNotFound)
}

func TestHandler_ListPayments(t *testing.T) {
	t.Parallel()

	srv, _, payments := newServer()
	payments.On("List", mock.Anything, payment.StatusDisputed, 20, 0).
		Return([]payment.Payment{{ID: uuid.New(), Status: payment.StatusDisputed}}, nil)

	rec := srv.Do(asAdmin(t, http.MethodGet, "/api/admin/payments?status=disputed", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body paymentsResponse
	webtest.Decode(t, rec, &body)
	require.Len(t, body.Payments, 1)
	assert.Equal(t, payment.StatusDisputed, body.Payments[0].Status)

	rec = srv.Do(asAdmin(t, http.MethodGet, "/api/admin/payments?status=captured", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Settle(t *testing.T) {
	t.Parallel()

	srv, _, payments := newServer()
	id := uuid.New()
	payments.On("Release", mock.Anything, id).Return(&payment.Payment{ID: id, Status: payment.StatusReleased}, nil)
	payments.On("Resolve", mock.Anything, id, payment.StatusRefunded).Return(&payment.Payment{ID: id, Status: payment.StatusRefunded}, nil)

	rec := srv.Do(asAdmin(t, http.MethodPost, "/api/admin/payments/"+id.String()+"/release", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"released"`)

	rec = srv.Do(asAdmin(t, http.MethodPost, "/api/admin/payments/"+id.String()+"/resolve", map[string]string{"outcome": "refunded"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"refunded"`)

	rec = srv.Do(asAdmin(t, http.MethodPost, "/api/admin/payments/"+id.String()+"/resolve", map[string]string{"outcome": "held"}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	stale := uuid.New()
	payments.On("Release", mock.Anything, stale).Return(nil, payment.ErrInvalidTransition)
	srv.Do(asAdmin(t, http.MethodPost, "/api/admin/payments/"+stale.String()+"/release", nil))
	assert.ErrorIs(t, srv.Err(), payment.ErrInvalidTransition)

	payments.AssertExpectations(t)
}
