// Package event is the in-process broadcast bus. It carries the
// payload-bearing signal fired after every cart, order and notification
// mutation; views in other processes are reached through the store's Watch
// channel instead, which is bridged back onto this bus as a payload-less
// "store.changed" signal.
//
// Payload signals are optimistic hints. The store-change signal is the
// authoritative trigger to re-read, because it is the only one that fires
// across processes.
package event

import (
	"sync"

	"github.com/shashiranjanraj/mandi/pkg/workerpool"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

// Signal is one delivered event, as seen by channel subscribers.
type Signal struct {
	Event   string
	Payload interface{}
}

type subscriber struct {
	events map[string]struct{}
	ch     chan Signal
}

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
	subs     = map[*subscriber]struct{}{}
)

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

// Subscribe returns a channel that receives every fired signal whose name is
// in events, plus a stop function. A subscriber that stops draining loses
// signals rather than blocking publishers.
func Subscribe(buf int, events ...string) (<-chan Signal, func()) {
	s := &subscriber{
		events: make(map[string]struct{}, len(events)),
		ch:     make(chan Signal, buf),
	}
	for _, e := range events {
		s.events[e] = struct{}{}
	}

	mu.Lock()
	subs[s] = struct{}{}
	mu.Unlock()

	stop := func() {
		mu.Lock()
		if _, ok := subs[s]; ok {
			delete(subs, s)
			close(s.ch)
		}
		mu.Unlock()
	}
	return s.ch, stop
}

// Fire dispatches an event synchronously to all registered listeners and
// channel subscribers.
func Fire(event string, payload interface{}) {
	mu.RLock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	for s := range subs {
		if _, ok := s.events[event]; !ok {
			continue
		}
		select {
		case s.ch <- Signal{Event: event, Payload: payload}:
		default:
		}
	}
	mu.RUnlock()

	for _, h := range hs {
		h(payload)
	}
}

// asyncPool bounds concurrent async handlers so a burst of fires cannot
// spawn unbounded goroutines.
var asyncPool = workerpool.New(16)

// FireAsync dispatches the event to channel subscribers immediately and to
// listeners on a bounded worker pool. It returns without waiting for
// handlers to complete; when the pool is saturated the handler runs inline.
func FireAsync(event string, payload interface{}) {
	mu.RLock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	for s := range subs {
		if _, ok := s.events[event]; !ok {
			continue
		}
		select {
		case s.ch <- Signal{Event: event, Payload: payload}:
		default:
		}
	}
	mu.RUnlock()

	for _, h := range hs {
		h := h
		if err := asyncPool.Submit(func() { h(payload) }); err != nil {
			h(payload)
		}
	}
}

// Flush removes all listeners and subscribers (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
	for s := range subs {
		close(s.ch)
	}
	subs = map[*subscriber]struct{}{}
}
