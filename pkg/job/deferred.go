package job

import (
	"context"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
)

// Deferred is a Dispatcher whose target is bound after construction. Services
// that enqueue jobs can be built before the Manager whose tasks call them.
type Deferred struct {
	target atomic.Pointer[Dispatcher]
}

var _ Dispatcher = (*Deferred)(nil)

// Bind routes every later call to d.
func (f *Deferred) Bind(d Dispatcher) {
	f.target.Store(&d)
}

func (f *Deferred) dispatcher() (Dispatcher, error) {
	d := f.target.Load()
	if d == nil {
		return nil, ErrNotBound
	}
	return *d, nil
}

func (f *Deferred) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	d, err := f.dispatcher()
	if err != nil {
		return err
	}
	return d.Enqueue(ctx, name, payload, opts...)
}

func (f *Deferred) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	d, err := f.dispatcher()
	if err != nil {
		return err
	}
	return d.EnqueueTx(ctx, tx, name, payload, opts...)
}
