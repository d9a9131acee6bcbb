package job

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/jackc/pgx/v5"
)

var (
	ErrUnknownTask       = errors.New("job: unknown task")
	ErrInvalidPayload    = errors.New("job: invalid payload")
	ErrAlreadyStarted    = errors.New("job: already started")
	ErrNotStarted        = errors.New("job: not started")
	ErrPoolRequired      = errors.New("job: pool is required")
	ErrInvalidSchedule   = errors.New("job: invalid cron schedule")
	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
	ErrNotBound          = errors.New("job: dispatcher not bound")
)

// Dispatcher enqueues tasks by name. *Manager implements it; services depend
// on this interface so tests can record enqueued jobs.
type Dispatcher interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error
	EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error
}

type executor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

type registry struct {
	mu    sync.RWMutex
	tasks map[string]executor
}

func newRegistry() *registry {
	return &registry{tasks: make(map[string]executor)}
}

func (r *registry) add(name string, e executor) {
	r.mu.Lock()
	r.tasks[name] = e
	r.mu.Unlock()
}

func (r *registry) lookup(name string) (executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tasks[name]
	return e, ok
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := slices.Collect(maps.Keys(r.tasks))
	slices.Sort(names)
	return names
}

type typedTask[P any] struct {
	handle func(context.Context, P) error
}

func (t typedTask[P]) Execute(ctx context.Context, raw json.RawMessage) error {
	var payload P
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errors.Join(ErrInvalidPayload, err)
		}
	}
	return t.handle(ctx, payload)
}

type periodicTask struct {
	handle func(context.Context) error
}

func (t periodicTask) Execute(ctx context.Context, _ json.RawMessage) error {
	return t.handle(ctx)
}
