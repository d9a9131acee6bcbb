// Command subhakaryam serves the marketplace API: provider directory,
// bookings, escrow payments, booking chat and the back office.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/getsentry/sentry-go"
	goredis "github.com/redis/go-redis/v9"

	"github.com/subhakaryam/subhakaryam/internal/admin"
	"github.com/subhakaryam/subhakaryam/internal/auth"
	"github.com/subhakaryam/subhakaryam/internal/booking"
	"github.com/subhakaryam/subhakaryam/internal/chat"
	"github.com/subhakaryam/subhakaryam/internal/db/migrations"
	"github.com/subhakaryam/subhakaryam/internal/metrics"
	"github.com/subhakaryam/subhakaryam/internal/notify"
	"github.com/subhakaryam/subhakaryam/internal/pagesearch"
	"github.com/subhakaryam/subhakaryam/internal/payment"
	"github.com/subhakaryam/subhakaryam/internal/provider"
	"github.com/subhakaryam/subhakaryam/internal/web"
	"github.com/subhakaryam/subhakaryam/middlewares"
	"github.com/subhakaryam/subhakaryam/pkg/cache"
	"github.com/subhakaryam/subhakaryam/pkg/cookie"
	"github.com/subhakaryam/subhakaryam/pkg/db"
	"github.com/subhakaryam/subhakaryam/pkg/job"
	"github.com/subhakaryam/subhakaryam/pkg/logger"
	"github.com/subhakaryam/subhakaryam/pkg/mailer"
	"github.com/subhakaryam/subhakaryam/pkg/mailer/resend"
	"github.com/subhakaryam/subhakaryam/pkg/oauth"
	"github.com/subhakaryam/subhakaryam/pkg/redis"
	"github.com/subhakaryam/subhakaryam/pkg/storage"
)

func main() {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithSentry(cfg.Sentry, middlewares.RequestIDExtractor(), auth.UserIDExtractor())
	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("application error", slog.Any("error", err))
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, log *slog.Logger) error {
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx, pool, migrations.FS, cfg.DB.MigrationsTable, log); err != nil {
		pool.Close()
		return err
	}
	rdb, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		pool.Close()
		return err
	}

	m := metrics.New()
	tx := db.Runner(pool)
	var jobs job.Deferred

	files, err := newStorage(cfg, log)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenIssuer(cfg.Auth)
	if err != nil {
		return err
	}
	cookies, err := cookie.NewSigner(cfg.cookieSecret(), cfg.CookieSecure)
	if err != nil {
		return err
	}
	var google auth.GoogleFlow
	if cfg.Google.Enabled() {
		g, err := oauth.NewGoogle(cfg.Google)
		if err != nil {
			return err
		}
		google = g
	}

	authSvc := auth.NewService(auth.NewPGStore(pool), tokens, &jobs, cfg.Auth, log)
	providerSvc := provider.NewService(provider.NewPGStore(pool), files, listingCache(rdb, cfg.ListingCacheTTL), log)
	paymentSvc := payment.NewService(payment.NewPGStore(pool), &jobs, tx, cfg.Payment, m, log)
	bookingSvc := booking.NewService(booking.NewPGStore(pool), providerSvc, paymentSvc, &jobs, tx, m, log)
	chatSvc := chat.NewService(chat.NewPGStore(pool), chat.NewRedisBroker(rdb, log), bookingSvc, log)

	notifier := notify.New(notify.NewPGDirectory(pool), newMailer(cfg, log), cfg.Notify, log)
	manager, err := job.NewManager(pool,
		job.WithLogger(log),
		job.WithTask(notify.NewSendWelcomeEmail(notifier)),
		job.WithTask(notify.NewBookingRequested(notifier)),
		job.WithTask(notify.NewBookingConfirmed(notifier)),
		job.WithTask(notify.NewPaymentReleased(notifier)),
		job.WithTask(notify.NewDisputeOpened(notifier)),
		job.WithScheduledTask(payment.NewReleaseDueTask(paymentSvc)),
	)
	if err != nil {
		return err
	}
	jobs.Bind(manager)

	pages := pagesearch.NewHandler(pagesearch.DefaultCatalog(), m)
	handlers := []web.Handler{
		auth.NewHandler(authSvc, google, cookies),
		provider.NewHandler(providerSvc),
		booking.NewHandler(bookingSvc),
		payment.NewHandler(paymentSvc),
		chat.NewHandler(chatSvc),
		admin.NewHandler(providerSvc, paymentSvc, log),
		pages,
	}
	if mem, ok := files.(*storage.Memory); ok {
		handlers = append(handlers, newUploadsHandler(mem))
	}

	app := web.New(
		web.WithLogger(log),
		web.WithMiddleware(
			// Errors render in the outermost layer, which must carry the request id.
			middlewares.RequestID(),
			middlewares.Metrics(m, middlewares.WithStatusMapper(statusOf)),
			middlewares.Recover(),
			middlewares.CORS(
				middlewares.WithAllowOrigins(cfg.CORSOrigins...),
				middlewares.WithAllowHeaders("Authorization", "Content-Type", payment.SignatureHeader),
				middlewares.WithAllowCredentials(),
			),
			middlewares.Authenticate(tokens, middlewares.WithTokenExtractor(
				// EventSource cannot set headers, so chat streams pass the token in the query.
				web.NewExtractor(web.FromBearerToken(), web.FromQuery("access_token")),
			)),
			middlewares.Timeout(cfg.RequestTimeout),
		),
		web.WithRoles(auth.Permissions()),
		web.WithHandlers(handlers...),
		web.WithErrorHandler(handleError),
		web.WithNotFoundHandler(pages.NotFound),
		web.WithMethodNotAllowedHandler(handleMethodNotAllowed),
		web.WithMount("/metrics", m.Handler()),
		web.WithHealthChecks(
			web.WithReadinessCheck("postgres", db.Healthcheck(pool)),
			web.WithReadinessCheck("redis", redis.Healthcheck(rdb)),
			web.WithReadinessCheck("jobs", manager.Healthcheck),
		),
	)

	return app.Run(
		web.Address(cfg.Addr),
		web.ShutdownTimeout(cfg.ShutdownTimeout),
		// Workers stop in the shutdown hook, not when the signal cancels ctx.
		web.StartupHook(func(ctx context.Context) error {
			return manager.Start(context.WithoutCancel(ctx))
		}),
		web.ShutdownHook(manager.Stop),
		web.ShutdownHook(redis.Shutdown(rdb)),
		web.ShutdownHook(db.Shutdown(pool)),
		web.ShutdownHook(func(context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		}),
	)
}

func newStorage(cfg config, log *slog.Logger) (storage.Storage, error) {
	if !cfg.Storage.Enabled() {
		log.Warn("S3 is not configured, portfolio uploads are kept in memory")
		return storage.NewMemory(cfg.UploadsURL), nil
	}
	return storage.NewS3(cfg.Storage)
}

func newMailer(cfg config, log *slog.Logger) *mailer.Mailer {
	var sender mailer.Sender = mailer.LogSender{Logger: log}
	if cfg.Resend.APIKey != "" {
		sender = resend.New(cfg.Resend)
	}
	return mailer.New(sender, mailer.NewRenderer(notify.Templates()), cfg.Mailer)
}

func listingCache(client goredis.UniversalClient, ttl time.Duration) cache.Cache[[]provider.Provider] {
	return cache.NewRedis[[]provider.Provider](client, "providers", ttl, cache.JSON[[]provider.Provider]{})
}
