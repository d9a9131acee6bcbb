// Package web is the HTTP runtime shared by every feature package: a chi
// router behind a small handler/middleware model, a request Context with JSON
// helpers and the caller's identity, structured HTTP errors, health endpoints
// and graceful shutdown.
//
// Feature packages implement Handler and never touch chi directly:
//
//	app := web.New(
//	    web.WithLogger(log),
//	    web.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    web.WithRoles(permissions, roleOf),
//	    web.WithErrorHandler(errorHandler),
//	    web.WithHandlers(auth.NewHandler(...), booking.NewHandler(...)),
//	    web.WithHealthChecks(web.WithReadinessCheck("db", db.Healthcheck(pool))),
//	)
//	err := app.Run(web.Address(":8080"), web.StartupHook(jobs.Start), web.ShutdownHook(jobs.Stop))
package web
