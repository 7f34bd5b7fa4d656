package state

import (
	"context"
	"errors"
	"sync"
)

// ErrWaitCancelled is returned from Waiter.Result after Cancel.
var ErrWaitCancelled = errors.New("wait cancelled")

type waiterState int

const (
	waiterPending waiterState = iota
	waiterFulfilled
	waiterFailed
	waiterCancelled
)

// Waiter is a one-shot resolvable handle. It settles exactly once through
// Fulfill, Fail or Cancel; later settle calls are no-ops.
type Waiter struct {
	mu     sync.Mutex
	done   chan struct{}
	state  waiterState
	result any
	err    error
}

func newWaiter() *Waiter {
	return &Waiter{done: make(chan struct{})}
}

// Fulfill settles the waiter with a value.
func (w *Waiter) Fulfill(value any) {
	w.settle(waiterFulfilled, value, nil)
}

// Fail settles the waiter with an error.
func (w *Waiter) Fail(err error) {
	w.settle(waiterFailed, nil, err)
}

// Cancel settles the waiter as cancelled. Cancelling never raises and is
// safe from any goroutine at any time.
func (w *Waiter) Cancel() {
	w.settle(waiterCancelled, nil, ErrWaitCancelled)
}

func (w *Waiter) settle(state waiterState, result any, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != waiterPending {
		return
	}
	w.state = state
	w.result = result
	w.err = err
	close(w.done)
}

// Cancelled reports whether the waiter was cancelled.
func (w *Waiter) Cancelled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == waiterCancelled
}

// Done returns a channel closed once the waiter settles.
func (w *Waiter) Done() <-chan struct{} {
	return w.done
}

// Result returns the settled value or error. It must only be called
// after Done is closed.
func (w *Waiter) Result() (any, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result, w.err
}

// Wait blocks until the waiter settles or the context expires.
func (w *Waiter) Wait(ctx context.Context) (any, error) {
	select {
	case <-w.done:
		return w.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type listenerKind int

const (
	// listenerChunk waits for a GUILD_MEMBERS_CHUNK matching a guild.
	// Chunk listeners are matched to at most one waiter per resolve.
	listenerChunk listenerKind = iota
)

type listener struct {
	kind      listenerKind
	waiter    *Waiter
	predicate func(any) (bool, error)
}

// listenerRegistry holds predicate-gated one-shot waits on classes of
// reconciliation events, resolved in registration order.
type listenerRegistry struct {
	mu        sync.Mutex
	listeners []*listener
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{}
}

// register adds a listener and returns its resolvable handle.
func (r *listenerRegistry) register(kind listenerKind, predicate func(any) (bool, error)) *Waiter {
	w := newWaiter()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, &listener{kind: kind, waiter: w, predicate: predicate})
	return w
}

// len reports how many listeners are currently registered.
func (r *listenerRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// resolve walks the listeners of one kind in registration order.
// Cancelled handles are pruned. A predicate error fails that handle
// alone. On the first predicate match the handle is fulfilled with
// result; chunk-class resolution stops after the first match so one
// chunk record settles at most one waiter. Survivor order is preserved.
func (r *listenerRegistry) resolve(kind listenerKind, argument any, result any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := make(map[int]struct{})
	for i, l := range r.listeners {
		if l.kind != kind {
			continue
		}

		if l.waiter.Cancelled() {
			removed[i] = struct{}{}
			continue
		}

		passed, err := l.predicate(argument)
		if err != nil {
			l.waiter.Fail(err)
			removed[i] = struct{}{}
			continue
		}
		if passed {
			l.waiter.Fulfill(result)
			removed[i] = struct{}{}
			if l.kind == listenerChunk {
				break
			}
		}
	}

	if len(removed) == 0 {
		return
	}
	kept := r.listeners[:0]
	for i, l := range r.listeners {
		if _, ok := removed[i]; !ok {
			kept = append(kept, l)
		}
	}
	r.listeners = kept
}
