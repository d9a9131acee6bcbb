// Package middlewares provides the HTTP middleware used by the Subhakaryam API.
//
// # Request ID
//
// RequestID assigns a ULID to each request, or reuses one set by an upstream
// proxy. Pair it with RequestIDExtractor so every log line carries request_id:
//
//	log := logger.New(middlewares.RequestIDExtractor())
//	app := web.New(
//	    web.WithLogger(log),
//	    web.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover and Timeout
//
// Recover turns a panic into *PanicError and Timeout turns an exceeded deadline
// into *TimeoutError. Both are returned to the application's error handler:
//
//	web.WithErrorHandler(func(c web.Context, err error) error {
//	    if middlewares.IsTimeoutError(err) {
//	        return c.JSON(http.StatusGatewayTimeout, ...)
//	    }
//	    ...
//	})
//
// Timeout runs the handler on the calling goroutine with a deadline attached
// to the request context. Event streams are skipped by default.
//
// # Authentication
//
// Authenticate resolves a bearer token through a TokenParser and stores the
// resulting web.Identity. It never rejects a request on its own; RequireAuth,
// RequireRole and RequirePermission do that on the routes that need it:
//
//	r.Group(func(r web.Router) {
//	    r.Use(middlewares.RequireRole("admin"))
//	    r.GET("/api/admin/payments", h.listPayments)
//	})
//
// # CORS and Metrics
//
// CORS answers preflight requests for the browser UI. Metrics reports method,
// status and latency of every request to a RequestObserver.
package middlewares
