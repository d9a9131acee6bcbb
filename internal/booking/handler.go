package booking

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/subhakaryam/subhakaryam/internal/auth"
	"github.com/subhakaryam/subhakaryam/internal/web"
	"github.com/subhakaryam/subhakaryam/middlewares"
)

// Handler serves /api/bookings.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r web.Router) {
	customer := middlewares.RequireRole(string(auth.RoleCustomer))
	provider := middlewares.RequireRole(string(auth.RoleProvider))

	r.POST("/api/bookings", h.create, customer)
	r.GET("/api/bookings", h.list, middlewares.RequireAuth())
	r.GET("/api/bookings/{id}", h.get, middlewares.RequireAuth())
	r.POST("/api/bookings/{id}/confirm", h.action((*Service).Confirm), provider)
	r.POST("/api/bookings/{id}/decline", h.action((*Service).Decline), provider)
	r.POST("/api/bookings/{id}/complete", h.action((*Service).Complete), provider)
	r.POST("/api/bookings/{id}/cancel", h.action((*Service).Cancel), customer)
}

func (h *Handler) create(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}
	var in CreateInput
	if err := c.BindJSON(&in); err != nil {
		return err
	}
	b, err := h.svc.Create(c.Context(), uid, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

type listResponse struct {
	Bookings []Booking `json:"bookings"`
}

func (h *Handler) list(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}
	status, ok := parseStatus(c.Query("status"))
	if !ok {
		return web.ErrBadRequest("unknown status", web.WithDetail(c.Query("status")))
	}
	limit := web.Query[int](c, "limit")
	offset := web.Query[int](c, "offset")

	id, _ := c.Identity()
	var list []Booking
	switch auth.Role(id.Role) {
	case auth.RoleCustomer:
		list, err = h.svc.ListForCustomer(c.Context(), uid, status, limit, offset)
	case auth.RoleProvider:
		list, err = h.svc.ListForProvider(c.Context(), uid, status, limit, offset)
	default:
		return web.ErrForbidden("only customers and providers have bookings")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse{Bookings: list})
}

func (h *Handler) get(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}
	bookingID, err := web.UUIDParam(c, "id")
	if err != nil {
		return err
	}
	b, err := h.svc.Get(c.Context(), bookingID, uid, c.Can(auth.PermViewAllBookings))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

type actionFunc func(s *Service, ctx context.Context, bookingID, userID uuid.UUID) (*Booking, error)

// action adapts a lifecycle method to a handler acting on {id} as the caller.
func (h *Handler) action(fn actionFunc) web.HandlerFunc {
	return func(c web.Context) error {
		uid, err := auth.CallerID(c)
		if err != nil {
			return err
		}
		bookingID, err := web.UUIDParam(c, "id")
		if err != nil {
			return err
		}
		b, err := fn(h.svc, c.Context(), bookingID, uid)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, b)
	}
}
