// Package job runs background tasks on River, the Postgres-native queue.
//
// Tasks are plain structs. A one-off task has Name and Handle(ctx, P) where P
// is its JSON payload; a periodic task has Name, Schedule (five-field cron)
// and Handle(ctx):
//
//	type SendWelcomeEmail struct{ mailer mailer.Mailer }
//
//	func (t *SendWelcomeEmail) Name() string { return "send_welcome_email" }
//	func (t *SendWelcomeEmail) Handle(ctx context.Context, p WelcomePayload) error { ... }
//
//	mgr, err := job.NewManager(pool,
//	    job.WithTask(notify.NewSendWelcomeEmail(n)),
//	    job.WithScheduledTask(payment.NewReleaseDueTask(svc)),
//	    job.WithLogger(log),
//	)
//
// Services enqueue by name through the Dispatcher interface. EnqueueTx inserts
// the job inside the caller's transaction so it only becomes visible on commit.
package job
