// Copyright 2026 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package periodic runs a function on a fixed interval until it is told to
// stop.
package periodic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrAlreadyStarted is returned by Start on a running task.
var ErrAlreadyStarted = errors.New("periodic task already started")

// Task calls a function once per interval. Runs never overlap: a run that
// takes longer than the interval delays the next one.
type Task struct {
	interval  time.Duration
	work      func(context.Context)
	immediate bool

	mtx    sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Task.
type Option func(*Task)

// WithImmediateStart makes the task run once as soon as it starts instead of
// waiting for the first tick.
func WithImmediateStart() Option {
	return func(t *Task) { t.immediate = true }
}

// New returns a task calling work every interval. The interval must be
// positive.
func New(interval time.Duration, work func(context.Context), opts ...Option) (*Task, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("periodic task interval must be positive, got %s", interval)
	}
	if work == nil {
		return nil, errors.New("periodic task needs a function to run")
	}
	t := &Task{interval: interval, work: work}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Run blocks, calling the task function on every tick, until ctx is done. A
// run in progress is allowed to finish. Run always returns nil; the error
// return lets it be used with errgroup.
func (t *Task) Run(ctx context.Context) error {
	if t.immediate && ctx.Err() == nil {
		t.work(ctx)
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// Both channels may be ready at once; cancellation wins.
			if ctx.Err() != nil {
				return nil
			}
			t.work(ctx)
		}
	}
}

// Start runs the task in a new goroutine until Stop is called or ctx is done.
func (t *Task) Start(ctx context.Context) error {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.done != nil {
		return ErrAlreadyStarted
	}
	ctx, t.cancel = context.WithCancel(ctx)
	done := make(chan struct{})
	t.done = done
	go func() {
		defer close(done)
		_ = t.Run(ctx)
	}()
	return nil
}

// Stop cancels a task started with Start and waits for a run in progress to
// finish. It is a no-op on a task that is not running. A stopped task can be
// started again.
func (t *Task) Stop() {
	t.mtx.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mtx.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
