package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is a map-backed store. It is the default in tests and mirrors the
// persistence semantics of the other drivers, including change signals.
type Memory struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage

	subMu sync.Mutex
	subs  map[chan string]struct{}
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: map[string]json.RawMessage{},
		subs: map[chan string]struct{}{},
	}
}

func (m *Memory) Read(key string) (json.RawMessage, bool) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok || !json.Valid(raw) {
		return nil, false
	}

	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out, true
}

func (m *Memory) Write(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store/memory: marshal %s: %w", key, err)
	}

	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()

	m.signal(key)
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	_, existed := m.data[key]
	delete(m.data, key)
	m.mu.Unlock()

	if existed {
		m.signal(key)
	}
	return nil
}

func (m *Memory) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 64)

	m.subMu.Lock()
	m.subs[ch] = struct{}{}
	m.subMu.Unlock()

	go func() {
		<-ctx.Done()
		m.subMu.Lock()
		delete(m.subs, ch)
		m.subMu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Seed stores pre-marshalled bytes verbatim, bypassing Write's marshal step.
// Tests use it to plant corrupt or legacy-shaped values.
func (m *Memory) Seed(key string, raw []byte) {
	m.mu.Lock()
	m.data[key] = append(json.RawMessage(nil), raw...)
	m.mu.Unlock()
}

func (m *Memory) signal(key string) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for ch := range m.subs {
		select {
		case ch <- key:
		default:
			// Subscriber is not draining — drop. Watch signals are
			// re-read triggers, not a durable event stream.
		}
	}
}
