// Package jobtest provides a job.Dispatcher that records what it is given.
package jobtest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/subhakaryam/subhakaryam/pkg/job"
)

// Enqueued is one recorded task.
type Enqueued struct {
	Name    string
	Payload json.RawMessage
	InTx    bool
}

// Recorder implements job.Dispatcher. Set Err to make every call fail.
type Recorder struct {
	mu   sync.Mutex
	jobs []Enqueued
	Err  error
}

var _ job.Dispatcher = (*Recorder)(nil)

func (r *Recorder) Enqueue(_ context.Context, name string, payload any, _ ...job.EnqueueOption) error {
	return r.record(name, payload, false)
}

// EnqueueTx records the task as transactional. tx may be nil.
func (r *Recorder) EnqueueTx(_ context.Context, _ pgx.Tx, name string, payload any, _ ...job.EnqueueOption) error {
	return r.record(name, payload, true)
}

func (r *Recorder) record(name string, payload any, inTx bool) error {
	if r.Err != nil {
		return r.Err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.jobs = append(r.jobs, Enqueued{Name: name, Payload: raw, InTx: inTx})
	r.mu.Unlock()
	return nil
}

// Jobs returns a copy of everything recorded so far.
func (r *Recorder) Jobs() []Enqueued {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Enqueued(nil), r.jobs...)
}

// Names returns the recorded task names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.jobs))
	for i, j := range r.jobs {
		out[i] = j.Name
	}
	return out
}

// Decode unmarshals the payload of the i-th recorded task into v.
func (r *Recorder) Decode(i int, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return json.Unmarshal(r.jobs[i].Payload, v)
}
