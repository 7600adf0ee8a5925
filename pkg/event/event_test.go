package event_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/mandi/pkg/event"
)

func TestListenAndFire(t *testing.T) {
	t.Cleanup(event.Flush)

	var got []interface{}
	event.Listen("order.updated", func(p interface{}) {
		got = append(got, p)
	})

	event.Fire("order.updated", "ORD-1")
	event.Fire("cart.updated", "ignored")
	event.Fire("order.updated", "ORD-2")

	assert.Equal(t, []interface{}{"ORD-1", "ORD-2"}, got)
}

func TestMultipleListenersSameEvent(t *testing.T) {
	t.Cleanup(event.Flush)

	calls := 0
	event.Listen("cart.updated", func(interface{}) { calls++ })
	event.Listen("cart.updated", func(interface{}) { calls++ })

	event.Fire("cart.updated", nil)
	assert.Equal(t, 2, calls)
}

func TestSubscribeFiltersByEvent(t *testing.T) {
	t.Cleanup(event.Flush)

	ch, stop := event.Subscribe(4, "order.updated", "admin.notification")
	defer stop()

	event.Fire("cart.updated", "skip")
	event.Fire("order.updated", "ORD-1")
	event.Fire("admin.notification", "NTF-1")

	sig := <-ch
	assert.Equal(t, "order.updated", sig.Event)
	assert.Equal(t, "ORD-1", sig.Payload)

	sig = <-ch
	assert.Equal(t, "admin.notification", sig.Event)

	select {
	case sig = <-ch:
		t.Fatalf("unexpected signal %v", sig)
	default:
	}
}

func TestSubscribeStopClosesChannel(t *testing.T) {
	t.Cleanup(event.Flush)

	ch, stop := event.Subscribe(1, "order.updated")
	stop()
	stop() // idempotent

	_, open := <-ch
	assert.False(t, open)

	// Firing after stop must not panic on the closed channel.
	event.Fire("order.updated", nil)
}

func TestSlowSubscriberLosesSignalsNotPublishers(t *testing.T) {
	t.Cleanup(event.Flush)

	ch, stop := event.Subscribe(1, "order.updated")
	defer stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			event.Fire("order.updated", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}

	assert.Len(t, ch, 1, "overflow is dropped, not queued")
}

func TestFireAsyncReachesListenersAndSubscribers(t *testing.T) {
	t.Cleanup(event.Flush)

	var wg sync.WaitGroup
	wg.Add(1)
	event.Listen("order.updated", func(p interface{}) {
		defer wg.Done()
		assert.Equal(t, "ORD-1", p)
	})

	ch, stop := event.Subscribe(1, "order.updated")
	defer stop()

	event.FireAsync("order.updated", "ORD-1")

	select {
	case sig := <-ch:
		assert.Equal(t, "ORD-1", sig.Payload)
	case <-time.After(time.Second):
		t.Fatal("subscriber missed async fire")
	}

	waited := make(chan struct{})
	go func() { wg.Wait(); close(waited) }()
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("async handler never ran")
	}
}

func TestFlushRemovesEverything(t *testing.T) {
	calls := 0
	event.Listen("order.updated", func(interface{}) { calls++ })
	ch, _ := event.Subscribe(1, "order.updated")

	event.Flush()
	event.Fire("order.updated", nil)

	assert.Zero(t, calls)
	_, open := <-ch
	require.False(t, open, "flush closes subscriber channels")
}
