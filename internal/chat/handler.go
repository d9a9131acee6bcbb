package chat

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/subhakaryam/subhakaryam/internal/auth"
	"github.com/subhakaryam/subhakaryam/internal/web"
	"github.com/subhakaryam/subhakaryam/middlewares"
)

// Handler serves the messages of a booking.
type Handler struct {
	svc       *Service
	heartbeat time.Duration
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, heartbeat: 25 * time.Second}
}

func (h *Handler) Routes(r web.Router) {
	r.Group(func(r web.Router) {
		r.Use(middlewares.RequireAuth())
		r.GET("/api/bookings/{id}/messages", h.history)
		r.POST("/api/bookings/{id}/messages", h.send)
		r.GET("/api/bookings/{id}/messages/stream", h.stream)
	})
}

type historyResponse struct {
	Messages []Message `json:"messages"`
}

func (h *Handler) history(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}
	bookingID, err := web.UUIDParam(c, "id")
	if err != nil {
		return err
	}

	var before time.Time
	if raw := c.Query("before"); raw != "" {
		before, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return web.ErrBadRequest("before must be an RFC 3339 timestamp", web.WithError(err))
		}
	}

	msgs, err := h.svc.History(c.Context(), bookingID, uid, before, web.Query[int](c, "limit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, historyResponse{Messages: msgs})
}

type sendRequest struct {
	Body string `json:"body" validate:"required"`
}

func (h *Handler) send(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}
	bookingID, err := web.UUIDParam(c, "id")
	if err != nil {
		return err
	}
	var in sendRequest
	if err := c.BindJSON(&in); err != nil {
		return err
	}
	m, err := h.svc.Send(c.Context(), bookingID, uid, in.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// stream serves new messages as server-sent events until the client goes
// away or the server shuts down.
func (h *Handler) stream(c web.Context) error {
	uid, err := auth.CallerID(c)
	if err != nil {
		return err
	}
	bookingID, err := web.UUIDParam(c, "id")
	if err != nil {
		return err
	}
	msgs, err := h.svc.Subscribe(c.Context(), bookingID, uid)
	if err != nil {
		return err
	}

	w := c.ResponseWriter()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	w.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-c.Context().Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			data, err := json.Marshal(m)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: message\ndata: %s\n\n", m.ID, data); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
