package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDispatcher_DeliversToAllSubscribers(t *testing.T) {
	d := New(zap.NewNop(), 2)
	defer d.Stop()

	var (
		mu   sync.Mutex
		got  []any
		hits int
	)
	handler := func(args ...any) {
		mu.Lock()
		defer mu.Unlock()
		hits++
		got = args
	}
	d.Subscribe("message", handler)
	d.Subscribe("message", handler)

	d.Dispatch("message", "payload", 42)
	d.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, hits)
	assert.Equal(t, []any{"payload", 42}, got)
}

func TestDispatcher_UnsubscribedEventIsDropped(t *testing.T) {
	d := New(zap.NewNop(), 1)
	defer d.Stop()

	assert.NotPanics(t, func() { d.Dispatch("nobody_listens") })
}

func TestDispatcher_SubmitDoesNotBlockOnSlowHandlers(t *testing.T) {
	d := New(zap.NewNop(), 1)
	defer d.Stop()

	release := make(chan struct{})
	d.Subscribe("slow", func(args ...any) { <-release })

	start := time.Now()
	for i := 0; i < 10; i++ {
		d.Dispatch("slow")
	}
	elapsed := time.Since(start)
	close(release)

	assert.Less(t, elapsed, 500*time.Millisecond, "dispatching queues instead of waiting")
}

func TestDispatcher_RecoversHandlerPanic(t *testing.T) {
	d := New(zap.NewNop(), 1)

	delivered := make(chan struct{})
	d.Subscribe("boom", func(args ...any) { panic("handler bug") })
	d.Subscribe("after", func(args ...any) { close(delivered) })

	d.Dispatch("boom")
	d.Dispatch("after")

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("a panicking handler stalled the pool")
	}
	d.Stop()
}
