package web

// Handler declares routes on a router.
//
//	func (h *BookingHandler) Routes(r web.Router) {
//	    r.POST("/api/bookings", h.create)
//	    r.GET("/api/bookings/{id}", h.get)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc handles a request. A non-nil error is passed to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned by handlers.
type ErrorHandler func(Context, error) error
