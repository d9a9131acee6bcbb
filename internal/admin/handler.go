package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/subhakaryam/subhakaryam/internal/auth"
	"github.com/subhakaryam/subhakaryam/internal/payment"
	"github.com/subhakaryam/subhakaryam/internal/provider"
	"github.com/subhakaryam/subhakaryam/internal/web"
	"github.com/subhakaryam/subhakaryam/middlewares"
)

// Handler serves /api/admin.
type Handler struct {
	providers Providers
	payments  Payments
	logger    *slog.Logger
}

func NewHandler(providers Providers, payments Payments, log *slog.Logger) *Handler {
	return &Handler{providers: providers, payments: payments, logger: log}
}

func (h *Handler) Routes(r web.Router) {
	r.Group(func(r web.Router) {
		r.Use(middlewares.RequirePermission(auth.PermVerifyProviders))
		r.GET("/api/admin/providers", h.listProviders)
		r.POST("/api/admin/providers/{id}/verify", h.verify)
	})
	r.Group(func(r web.Router) {
		r.Use(middlewares.RequirePermission(auth.PermManagePayments))
		r.GET("/api/admin/payments", h.listPayments)
		r.POST("/api/admin/payments/{id}/release", h.release)
		r.POST("/api/admin/payments/{id}/resolve", h.resolve)
	})
}

func page(c web.Context) (limit, offset int) {
	limit = web.QueryDefault(c, "limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	return min(limit, maxLimit), max(web.Query[int](c, "offset"), 0)
}

type providersResponse struct {
	Providers []provider.Provider `json:"providers"`
}

// listProviders filters on ?verified when present; verified=false is the
// verification queue.
func (h *Handler) listProviders(c web.Context) error {
	limit, offset := page(c)
	f := provider.Filter{
		Category: provider.Category(c.Query("category")),
		City:     c.Query("city"),
		Limit:    limit,
		Offset:   offset,
	}
	if f.Category != "" && !f.Category.Valid() {
		return web.ErrBadRequest("unknown category", web.WithDetail(string(f.Category)))
	}
	if raw := c.Query("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return web.ErrBadRequest("verified must be true or false", web.WithError(err))
		}
		f.Verified = &v
	}

	list, err := h.providers.List(c.Context(), f)
	if err != nil {
		return err
	}
	if list == nil {
		list = []provider.Provider{}
	}
	return c.JSON(http.StatusOK, providersResponse{Providers: list})
}

type verifyRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

func (h *Handler) verify(c web.Context) error {
	id, err := web.UUIDParam(c, "id")
	if err != nil {
		return err
	}
	var in verifyRequest
	if err := c.BindJSON(&in); err != nil {
		return err
	}
	p, err := h.providers.Verify(c.Context(), id, *in.Verified)
	if err != nil {
		return err
	}
	h.logger.InfoContext(c.Context(), "provider verification changed",
		slog.String("provider_id", p.ID.String()),
		slog.Bool("verified", p.Verified),
	)
	return c.JSON(http.StatusOK, p)
}

type paymentsResponse struct {
	Payments []payment.Payment `json:"payments"`
}

func (h *Handler) listPayments(c web.Context) error {
	status := payment.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		return web.ErrBadRequest("unknown status", web.WithDetail(string(status)))
	}
	limit, offset := page(c)
	list, err := h.payments.List(c.Context(), status, limit, offset)
	if err != nil {
		return err
	}
	if list == nil {
		list = []payment.Payment{}
	}
	return c.JSON(http.StatusOK, paymentsResponse{Payments: list})
}

func (h *Handler) release(c web.Context) error {
	id, err := web.UUIDParam(c, "id")
	if err != nil {
		return err
	}
	p, err := h.payments.Release(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

type resolveRequest struct {
	Outcome payment.Status `json:"outcome" validate:"required,oneof=released refunded"`
}

func (h *Handler) resolve(c web.Context) error {
	id, err := web.UUIDParam(c, "id")
	if err != nil {
		return err
	}
	var in resolveRequest
	if err := c.BindJSON(&in); err != nil {
		return err
	}
	p, err := h.payments.Resolve(c.Context(), id, in.Outcome)
	if err != nil {
		return err
	}
	h.logger.InfoContext(c.Context(), "dispute resolved",
		slog.String("payment_id", p.ID.String()),
		slog.String("outcome", string(p.Status)),
	)
	return c.JSON(http.StatusOK, p)
}
