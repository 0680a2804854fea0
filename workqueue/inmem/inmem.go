/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package inmem provides a process-local workqueue.Interface.
//
// Keys become due at their NotBefore time. A key that fails is requeued with
// exponential backoff plus jitter; a key requeued with explicit options has
// its attempt count reset. Dead-lettered keys are kept for inspection until
// they are queued again.
package inmem

import (
	"cmp"
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"slices"
	"sync"
	"time"

	"chainguard.dev/mskreplicator/workqueue"
)

// Backoff bounds the delay applied when a failed key is requeued.
type Backoff struct {
	Base      time.Duration
	Max       time.Duration
	MaxJitter time.Duration
}

// DefaultBackoff is used unless overridden with WithBackoff.
var DefaultBackoff = Backoff{
	Base:      time.Second,
	Max:       time.Minute,
	MaxJitter: 500 * time.Millisecond,
}

// Delay returns the wait before the given retry attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	delay := b.Max
	if shift := attempt - 1; shift < 62 && b.Base <= b.Max>>shift {
		delay = b.Base << shift
	}
	if b.MaxJitter > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(int64(b.MaxJitter))); err == nil {
			delay += time.Duration(n.Int64())
		}
	}
	return delay
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock overrides the time source deciding when keys are due.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

// WithBackoff overrides the failure backoff.
func WithBackoff(b Backoff) Option {
	return func(q *Queue) {
		q.backoff = b
	}
}

type entry struct {
	name      string
	priority  int64
	notBefore time.Time
	attempts  int
	failedAt  time.Time
}

// Queue is an in-memory work queue. A key may be both in progress and queued
// at the same time; the queued copy becomes startable once the in-progress
// one finishes.
type Queue struct {
	mu         sync.Mutex
	now        func() time.Time
	backoff    Backoff
	queued     map[string]*entry
	inProgress map[string]*inProgressKey
	dead       map[string]*entry
}

var _ workqueue.Interface = (*Queue)(nil)

// New constructs an empty Queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		now:        time.Now,
		backoff:    DefaultBackoff,
		queued:     make(map[string]*entry),
		inProgress: make(map[string]*inProgressKey),
		dead:       make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Queue implements workqueue.Interface.
func (q *Queue) Queue(_ context.Context, key string, opts workqueue.Options) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.dead, key)
	q.enqueue(&entry{name: key, priority: opts.Priority, notBefore: opts.NotBefore})
	return nil
}

// enqueue merges e into any queued entry with the same name. Callers hold mu.
func (q *Queue) enqueue(e *entry) {
	existing, ok := q.queued[e.name]
	if !ok {
		q.queued[e.name] = e
		return
	}
	existing.priority = max(existing.priority, e.priority)
	if e.notBefore.Before(existing.notBefore) {
		existing.notBefore = e.notBefore
	}
	existing.attempts = max(existing.attempts, e.attempts)
}

// Enumerate implements workqueue.Interface.
func (q *Queue) Enumerate(context.Context) ([]workqueue.ObservedInProgressKey, []workqueue.QueuedKey, []workqueue.DeadLetteredKey, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()

	wip := make([]workqueue.ObservedInProgressKey, 0, len(q.inProgress))
	for _, k := range q.inProgress {
		wip = append(wip, k)
	}

	due := make([]*entry, 0, len(q.queued))
	for _, e := range q.queued {
		if _, busy := q.inProgress[e.name]; busy {
			continue
		}
		if !e.notBefore.After(now) {
			due = append(due, e)
		}
	}
	slices.SortFunc(due, func(a, b *entry) int {
		return cmp.Or(
			cmp.Compare(b.priority, a.priority),
			a.notBefore.Compare(b.notBefore),
			cmp.Compare(a.name, b.name),
		)
	})
	next := make([]workqueue.QueuedKey, 0, len(due))
	for _, e := range due {
		next = append(next, &queuedKey{q: q, entry: *e})
	}

	dead := make([]workqueue.DeadLetteredKey, 0, len(q.dead))
	for _, e := range q.dead {
		dead = append(dead, &deadKey{entry: *e})
	}
	slices.SortFunc(dead, func(a, b workqueue.DeadLetteredKey) int {
		return cmp.Compare(a.Name(), b.Name())
	})

	return wip, next, dead, nil
}

// NextDue reports the earliest time a queued key becomes due. It returns
// false when nothing is queued.
func (q *Queue) NextDue() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var (
		earliest time.Time
		found    bool
	)
	for _, e := range q.queued {
		if !found || e.notBefore.Before(earliest) {
			earliest, found = e.notBefore, true
		}
	}
	return earliest, found
}

// Idle reports whether nothing is queued or in progress.
func (q *Queue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queued) == 0 && len(q.inProgress) == 0
}

type queuedKey struct {
	q     *Queue
	entry entry
}

func (k *queuedKey) Name() string    { return k.entry.name }
func (k *queuedKey) Priority() int64 { return k.entry.priority }

// Start implements workqueue.QueuedKey.
func (k *queuedKey) Start(ctx context.Context) (workqueue.OwnedInProgressKey, error) {
	q := k.q
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.queued[k.entry.name]
	if !ok {
		return nil, fmt.Errorf("key %q is no longer queued", k.entry.name)
	}
	if _, busy := q.inProgress[e.name]; busy {
		return nil, fmt.Errorf("key %q is already in progress", e.name)
	}
	delete(q.queued, e.name)

	ctx, cancel := context.WithCancel(ctx)
	ipk := &inProgressKey{q: q, entry: *e, ctx: ctx, cancel: cancel}
	q.inProgress[e.name] = ipk
	return ipk, nil
}

type inProgressKey struct {
	q      *Queue
	entry  entry
	ctx    context.Context
	cancel context.CancelFunc
}

var (
	_ workqueue.ObservedInProgressKey = (*inProgressKey)(nil)
	_ workqueue.OwnedInProgressKey    = (*inProgressKey)(nil)
)

func (k *inProgressKey) Name() string             { return k.entry.name }
func (k *inProgressKey) Priority() int64          { return k.entry.priority }
func (k *inProgressKey) Context() context.Context { return k.ctx }
func (k *inProgressKey) GetAttempts() int         { return k.entry.attempts }

// IsOrphaned reports whether the context the key was started with is done.
func (k *inProgressKey) IsOrphaned() bool { return k.ctx.Err() != nil }

// finish removes the key from the in-progress set. Callers hold mu.
func (k *inProgressKey) finish() error {
	if current, ok := k.q.inProgress[k.entry.name]; !ok || current != k {
		return fmt.Errorf("key %q is not in progress", k.entry.name)
	}
	delete(k.q.inProgress, k.entry.name)
	k.cancel()
	return nil
}

// Complete implements workqueue.OwnedInProgressKey.
func (k *inProgressKey) Complete(context.Context) error {
	k.q.mu.Lock()
	defer k.q.mu.Unlock()
	return k.finish()
}

// Requeue returns the key to the queue after the backoff for its next
// attempt. An orphaned key is requeued the same way.
func (k *inProgressKey) Requeue(context.Context) error {
	q := k.q
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := k.finish(); err != nil {
		return err
	}
	e := k.entry
	e.attempts++
	e.notBefore = q.now().Add(q.backoff.Delay(e.attempts))
	q.enqueue(&e)
	return nil
}

// RequeueWithOptions schedules the key as requested and resets its attempts.
func (k *inProgressKey) RequeueWithOptions(_ context.Context, opts workqueue.Options) error {
	q := k.q
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := k.finish(); err != nil {
		return err
	}
	q.enqueue(&entry{name: k.entry.name, priority: opts.Priority, notBefore: opts.NotBefore})
	return nil
}

// Deadletter implements workqueue.OwnedInProgressKey.
func (k *inProgressKey) Deadletter(context.Context) error {
	q := k.q
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := k.finish(); err != nil {
		return err
	}
	e := k.entry
	e.failedAt = q.now()
	q.dead[e.name] = &e
	return nil
}

type deadKey struct {
	entry entry
}

func (k *deadKey) Name() string        { return k.entry.name }
func (k *deadKey) Priority() int64     { return k.entry.priority }
func (k *deadKey) GetAttempts() int    { return k.entry.attempts }
func (k *deadKey) FailedAt() time.Time { return k.entry.failedAt }
