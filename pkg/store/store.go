// Package store provides the key-value document store that backs carts,
// orders and the admin notification queue.
//
// Every value is a single JSON document written atomically under one key, so
// a reader never observes a torn write. A value that turns out not to be
// valid JSON is reported as absent rather than as an error: read paths in the
// engine never fail, they degrade to empty.
//
// Three drivers are available:
//   - "file"   — one JSON file per key (default)
//   - "memory" — map-backed, for tests and single-process runs
//   - "redis"  — go-redis, with pub/sub change propagation
//
// Quick start:
//
//	store.Connect()
//	s := store.Default()
//	s.Write("cart", items)
//	raw, ok := s.Read("cart")
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/mandi/config"
)

// Well-known keys used by the engine.
const (
	KeyCart          = "cart"
	KeyOrders        = "orders"
	KeyNotifications = "adminNotifications"
)

// Store is the persistence strategy interface.
type Store interface {
	// Read returns the raw JSON stored under key. The second return is
	// false when the key is absent or the stored bytes are not valid JSON.
	// Read never fails.
	Read(key string) (json.RawMessage, bool)

	// Write marshals value and persists it under key in a single atomic
	// step, then signals watchers.
	Write(key string, value any) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Watch returns a channel that delivers the name of every key changed
	// by any process sharing this store, until ctx is cancelled. The signal
	// carries no payload: subscribers re-read the store.
	Watch(ctx context.Context) (<-chan string, error)
}

// ─── Manager ─────────────────────────────────────────────────────────────────

var (
	managerMu   sync.RWMutex
	drivers     = map[string]Store{}
	defaultName string
)

// Connect boots the store manager using STORE_DRIVER from config.
// Call once at application startup.
func Connect() error {
	name := config.StoreDriver()

	managerMu.Lock()
	defer managerMu.Unlock()

	if _, ok := drivers[name]; !ok {
		s, err := open(name)
		if err != nil {
			return err
		}
		drivers[name] = s
	}
	defaultName = name
	return nil
}

func open(name string) (Store, error) {
	switch name {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(config.StoreRoot())
	case "redis":
		return NewRedis(config.RedisAddr(), config.RedisPassword())
	default:
		return nil, fmt.Errorf("store: unknown driver %q", name)
	}
}

// Register plugs in a custom Store implementation at boot time.
func Register(name string, s Store) {
	managerMu.Lock()
	drivers[name] = s
	if defaultName == "" {
		defaultName = name
	}
	managerMu.Unlock()
}

// Use returns the named driver.
func Use(name string) Store {
	managerMu.RLock()
	s, ok := drivers[name]
	managerMu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("store: driver %q is not configured", name))
	}
	return s
}

// Default returns the driver selected by Connect (or the first Register call).
func Default() Store {
	managerMu.RLock()
	name := defaultName
	managerMu.RUnlock()
	return Use(name)
}
