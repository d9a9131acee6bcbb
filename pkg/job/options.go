package job

import (
	"context"
	"log/slog"
	"time"
)

type config struct {
	registry   *registry
	logger     *slog.Logger
	queues     map[string]int
	schedules  []schedule
	maxWorkers int
}

type schedule struct {
	name string
	cron string
}

// Option configures a Manager.
type Option func(*config)

// WithTask registers a one-off task. P is inferred from Handle.
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.registry.add(task.Name(), typedTask[P]{handle: task.Handle})
	}
}

// WithScheduledTask registers a task that River runs on a cron schedule.
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.registry.add(task.Name(), periodicTask{handle: task.Handle})
		c.schedules = append(c.schedules, schedule{name: task.Name(), cron: task.Schedule()})
	}
}

// WithQueue adds a named queue with its own worker count.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if name != "" && workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger used by the manager and River.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the worker count of the default queue. Defaults to 50.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

type enqueueConfig struct {
	runAt       time.Time
	queue       string
	uniqueKey   string
	maxAttempts int
	uniqueFor   time.Duration
}

// EnqueueOption tunes a single insert.
type EnqueueOption func(*enqueueConfig)

// InQueue routes the job to a named queue.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) { c.queue = name }
}

// RunAt delays the job until t.
func RunAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) { c.runAt = t }
}

// MaxAttempts caps retries. River's default is 25.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Unique skips the insert when a job with the same task name and key was
// inserted within d. Used to avoid double notifications on retried requests.
func Unique(key string, d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueKey = key
		c.uniqueFor = d
	}
}
