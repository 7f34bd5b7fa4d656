// Package dispatch fans semantic events out to application subscribers
// without ever blocking the state engine.
package dispatch

import (
	"sync"

	"github.com/gammazero/workerpool"
	"go.uber.org/zap"
)

// Handler consumes one dispatched event's payload.
type Handler func(args ...any)

// Dispatcher routes named events to subscribers on a bounded worker
// pool. Submitting is non-blocking; slow subscribers queue behind the
// pool instead of stalling reconciliation.
type Dispatcher struct {
	logger *zap.Logger
	pool   *workerpool.WorkerPool

	mu       sync.RWMutex
	handlers map[string][]Handler
}

// New creates a dispatcher running subscriber callbacks on the given
// number of workers.
func New(logger *zap.Logger, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		logger:   logger,
		pool:     workerpool.New(workers),
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for an event name.
func (d *Dispatcher) Subscribe(event string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], h)
}

// Dispatch hands an event to every subscriber. It returns immediately;
// handler panics are recovered and logged so no subscriber can take the
// engine down.
func (d *Dispatcher) Dispatch(event string, args ...any) {
	d.mu.RLock()
	handlers := d.handlers[event]
	d.mu.RUnlock()

	if len(handlers) == 0 {
		d.logger.Debug("event without subscribers", zap.String("event", event))
		return
	}

	for _, h := range handlers {
		handler := h
		d.pool.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					d.logger.Error("event handler panicked",
						zap.String("event", event),
						zap.Any("panic", r),
					)
				}
			}()
			handler(args...)
		})
	}
}

// Stop drains the pool, waiting for queued handlers to finish.
func (d *Dispatcher) Stop() {
	d.pool.StopWait()
}
