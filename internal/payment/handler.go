package payment

import (
	"errors"
	"io"
	"net/http"

	"github.com/subhakaryam/subhakaryam/internal/auth"
	"github.com/subhakaryam/subhakaryam/internal/web"
	"github.com/subhakaryam/subhakaryam/middlewares"
)

// SignatureHeader carries the hex HMAC-SHA256 of the webhook body.
const SignatureHeader = "X-Webhook-Signature"

const maxWebhookBody = 64 << 10

// Handler serves the gateway webhook and the party-facing payment routes.
// Admin settlement routes live in the admin package.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r web.Router) {
	r.POST("/api/payments/webhook", h.webhook)
	r.GET("/api/bookings/{id}/payment", h.forBooking, middlewares.RequireAuth())
	r.POST("/api/payments/{id}/dispute", h.dispute, middlewares.RequireRole(string(auth.RoleCustomer)))
}

func (h *Handler) webhook(c web.Context) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return web.NewHTTPError(http.StatusRequestEntityTooLarge, "webhook body too large")
		}
		return web.ErrBadRequest("failed to read webhook body", web.WithError(err))
	}
	if err := h.svc.HandleWebhook(c.Context(), body, c.Header(SignatureHeader)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) forBooking(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}
	bookingID, err := web.UUIDParam(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.ForBooking(c.Context(), bookingID, uid, c.Can(auth.PermManagePayments))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

type disputeRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (h *Handler) dispute(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}
	paymentID, err := web.UUIDParam(c, "id")
	if err != nil {
		return err
	}
	var in disputeRequest
	if err := c.BindJSON(&in); err != nil {
		return err
	}
	p, err := h.svc.Dispute(c.Context(), paymentID, uid, in.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
