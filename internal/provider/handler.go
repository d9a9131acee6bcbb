package provider

import (
	"net/http"

	"github.com/subhakaryam/subhakaryam/internal/auth"
	"github.com/subhakaryam/subhakaryam/internal/web"
	"github.com/subhakaryam/subhakaryam/middlewares"
)

const uploadOverhead = 1 << 20

// Handler serves the public directory and the provider's own profile.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r web.Router) {
	r.GET("/api/providers", h.list)
	r.GET("/api/providers/{slug}", h.get)

	r.Group(func(r web.Router) {
		r.Use(middlewares.RequireRole(string(auth.RoleProvider)))
		r.GET("/api/provider/profile", h.profile)
		r.POST("/api/provider/profile", h.create)
		r.PUT("/api/provider/profile", h.update)
		r.POST("/api/provider/portfolio", h.upload)
		r.DELETE("/api/provider/portfolio", h.removePortfolio)
	})
}

type listResponse struct {
	Providers []Provider `json:"providers"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

// list only shows verified providers.
func (h *Handler) list(c web.Context) error {
	verified := true
	f := Filter{
		Category: Category(c.Query("category")),
		City:     c.Query("city"),
		Verified: &verified,
		Limit:    web.QueryDefault(c, "limit", defaultLimit),
		Offset:   web.Query[int](c, "offset"),
	}
	if f.Category != "" && !f.Category.Valid() {
		return web.ErrBadRequest("unknown category", web.WithDetail(string(f.Category)))
	}
	f = f.normalized()

	list, err := h.svc.List(c.Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse{Providers: list, Limit: f.Limit, Offset: f.Offset})
}

type detailResponse struct {
	*Provider
	Portfolio []PortfolioItem `json:"portfolio"`
}

func (h *Handler) detail(c web.Context, code int, p *Provider) error {
	items, err := h.svc.PortfolioURLs(c.Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(code, detailResponse{Provider: p, Portfolio: items})
}

func (h *Handler) get(c web.Context) error {
	p, err := h.svc.Get(c.Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	if !p.Verified && !h.ownedByCaller(c, p) {
		return ErrNotFound
	}
	return h.detail(c, http.StatusOK, p)
}

func (h *Handler) ownedByCaller(c web.Context, p *Provider) bool {
	uid, err := auth.CallerID(c)
	return err == nil && uid == p.UserID
}

func (h *Handler) profile(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetByUserID(c.Context(), uid)
	if err != nil {
		return err
	}
	return h.detail(c, http.StatusOK, p)
}

func (h *Handler) create(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}
	var in Input
	if err := c.BindJSON(&in); err != nil {
		return err
	}
	p, err := h.svc.Create(c.Context(), uid, in)
	if err != nil {
		return err
	}
	return h.detail(c, http.StatusCreated, p)
}

func (h *Handler) update(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}
	var in Input
	if err := c.BindJSON(&in); err != nil {
		return err
	}
	p, err := h.svc.Update(c.Context(), uid, in)
	if err != nil {
		return err
	}
	return h.detail(c, http.StatusOK, p)
}

func (h *Handler) upload(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}

	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, MaxPortfolioSize+uploadOverhead)
	file, _, err := req.FormFile("file")
	if err != nil {
		return web.ErrBadRequest("multipart field \"file\" is required", web.WithError(err))
	}
	defer file.Close()

	p, err := h.svc.UploadPortfolio(c.Context(), uid, file)
	if err != nil {
		return err
	}
	return h.detail(c, http.StatusCreated, p)
}

func (h *Handler) removePortfolio(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}
	key := c.Query("key")
	if key == "" {
		return web.ErrBadRequest("query parameter \"key\" is required")
	}
	p, err := h.svc.RemovePortfolio(c.Context(), uid, key)
	if err != nil {
		return err
	}
	return h.detail(c, http.StatusOK, p)
}
