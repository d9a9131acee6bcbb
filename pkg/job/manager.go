package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"
)

const defaultMaxWorkers = 50

// Manager owns the River client: it inserts jobs and, once started, works them.
type Manager struct {
	pool     *pgxpool.Pool
	client   *river.Client[pgx.Tx]
	registry *registry
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
}

var _ Dispatcher = (*Manager)(nil)

// NewManager builds the River client. Jobs may be enqueued before Start.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := &config{
		registry:   newRegistry(),
		queues:     make(map[string]int),
		maxWorkers: defaultMaxWorkers,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	queues := map[string]river.QueueConfig{river.QueueDefault: {MaxWorkers: cfg.maxWorkers}}
	for name, n := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: n}
	}

	periodic := make([]*river.PeriodicJob, 0, len(cfg.schedules))
	for _, s := range cfg.schedules {
		sched, err := parseSchedule(s.cron)
		if err != nil {
			return nil, fmt.Errorf("%w %q for %s: %w", ErrInvalidSchedule, s.cron, s.name, err)
		}
		name := s.name
		periodic = append(periodic, river.NewPeriodicJob(sched, func() (river.JobArgs, *river.InsertOpts) {
			return taskArgs{Task: name}, nil
		}, &river.PeriodicJobOpts{RunOnStart: false}))
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{registry: cfg.registry, logger: cfg.logger})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		pool:     pool,
		client:   client,
		registry: cfg.registry,
		logger:   cfg.logger,
	}, nil
}

// Start begins working jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start: %w", err)
	}
	m.started = true
	m.logger.InfoContext(ctx, "job manager started", slog.Any("tasks", m.registry.names()))
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop: %w", err)
	}
	m.started = false
	m.logger.InfoContext(ctx, "job manager stopped")
	return nil
}

// Enqueue inserts a job for a registered task.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := m.prepare(name, payload, opts)
	if err != nil {
		return err
	}
	if _, err := m.client.Insert(ctx, args, insertOpts); err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	return nil
}

// EnqueueTx inserts a job inside tx.
func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := m.prepare(name, payload, opts)
	if err != nil {
		return err
	}
	if _, err := m.client.InsertTx(ctx, tx, args, insertOpts); err != nil {
		return fmt.Errorf("job: enqueue %s in tx: %w", name, err)
	}
	return nil
}

// Healthcheck reports whether the manager runs and its database answers.
func (m *Manager) Healthcheck(ctx context.Context) error {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()

	if !started {
		return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
	}
	if err := m.pool.Ping(ctx); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}

func (m *Manager) prepare(name string, payload any, opts []EnqueueOption) (taskArgs, *river.InsertOpts, error) {
	if _, ok := m.registry.lookup(name); !ok {
		return taskArgs{}, nil, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return buildArgs(name, payload, opts...)
}

func buildArgs(name string, payload any, opts ...EnqueueOption) (taskArgs, *river.InsertOpts, error) {
	args := taskArgs{Task: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return taskArgs{}, nil, errors.Join(ErrInvalidPayload, err)
		}
		args.Payload = raw
	}

	var ec enqueueConfig
	for _, opt := range opts {
		opt(&ec)
	}

	insertOpts := &river.InsertOpts{
		Queue:       ec.queue,
		ScheduledAt: ec.runAt,
		MaxAttempts: ec.maxAttempts,
	}
	if ec.uniqueFor > 0 {
		args.UniqueKey = ec.uniqueKey
		insertOpts.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: ec.uniqueFor}
	}
	return args, insertOpts, nil
}

// taskArgs is the single River job kind; the task name selects the handler.
type taskArgs struct {
	Task      string          `json:"task" river:"unique"`
	UniqueKey string          `json:"unique_key,omitempty" river:"unique"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string { return "subhakaryam:task" }

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry *registry
	logger   *slog.Logger
}

func (w *taskWorker) Work(ctx context.Context, j *river.Job[taskArgs]) error {
	exec, ok := w.registry.lookup(j.Args.Task)
	if !ok {
		return river.JobCancel(fmt.Errorf("%w: %s", ErrUnknownTask, j.Args.Task))
	}

	log := w.logger.With(
		slog.String("task", j.Args.Task),
		slog.Int64("job_id", j.ID),
		slog.Int("attempt", j.Attempt),
	)

	start := time.Now()
	if err := exec.Execute(ctx, j.Args.Payload); err != nil {
		if errors.Is(err, ErrInvalidPayload) {
			log.ErrorContext(ctx, "task payload rejected", slog.Any("error", err))
			return river.JobCancel(err)
		}
		log.ErrorContext(ctx, "task failed", slog.Any("error", err))
		return err
	}
	log.DebugContext(ctx, "task completed", slog.Duration("took", time.Since(start)))
	return nil
}

type cronSchedule struct{ cron.Schedule }

func (s cronSchedule) Next(t time.Time) time.Time { return s.Schedule.Next(t) }

func parseSchedule(expr string) (river.PeriodicSchedule, error) {
	s, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, err
	}
	return cronSchedule{s}, nil
}
