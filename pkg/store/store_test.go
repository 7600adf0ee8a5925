package store_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/mandi/pkg/store"
)

func TestMemoryRoundtrip(t *testing.T) {
	mem := store.NewMemory()

	_, ok := mem.Read("cart")
	assert.False(t, ok)

	require.NoError(t, mem.Write("cart", []string{"a", "b"}))

	raw, ok := mem.Read("cart")
	require.True(t, ok)

	var items []string
	require.NoError(t, json.Unmarshal(raw, &items))
	assert.Equal(t, []string{"a", "b"}, items)
}

func TestMemoryReadReturnsCopy(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Write("cart", map[string]int{"n": 1}))

	raw, ok := mem.Read("cart")
	require.True(t, ok)
	raw[0] = 'x'

	again, ok := mem.Read("cart")
	require.True(t, ok)
	assert.True(t, json.Valid(again), "caller mutation must not corrupt the store")
}

func TestMemoryCorruptSeedReadsAsAbsent(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed("orders", []byte(`[{"id":"ORD-1"`))

	_, ok := mem.Read("orders")
	assert.False(t, ok)

	require.NoError(t, mem.Write("orders", []string{}))
	_, ok = mem.Read("orders")
	assert.True(t, ok, "a fresh write recovers the key")
}

func TestMemoryRemove(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Write("cart", 1))
	require.NoError(t, mem.Remove("cart"))

	_, ok := mem.Read("cart")
	assert.False(t, ok)

	assert.NoError(t, mem.Remove("cart"), "removing an absent key is a no-op")
}

func TestMemoryWatch(t *testing.T) {
	mem := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := mem.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, mem.Write("cart", 1))
	select {
	case key := <-ch:
		assert.Equal(t, "cart", key)
	case <-time.After(time.Second):
		t.Fatal("no change signal after write")
	}

	require.NoError(t, mem.Remove("cart"))
	select {
	case key := <-ch:
		assert.Equal(t, "cart", key)
	case <-time.After(time.Second):
		t.Fatal("no change signal after remove")
	}

	cancel()
	for range ch {
	}
}

func newFileStore(t *testing.T) (*store.File, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := store.NewFile(dir)
	require.NoError(t, err)
	return fs, dir
}

func TestFileRoundtrip(t *testing.T) {
	fs, dir := newFileStore(t)

	require.NoError(t, fs.Write("orders", []string{"ORD-1"}))

	raw, ok := fs.Read("orders")
	require.True(t, ok)

	var orders []string
	require.NoError(t, json.Unmarshal(raw, &orders))
	assert.Equal(t, []string{"ORD-1"}, orders)

	// One key, one document.
	assert.FileExists(t, filepath.Join(dir, "orders.json"))
}

func TestFileReadMissingKey(t *testing.T) {
	fs, _ := newFileStore(t)

	_, ok := fs.Read("orders")
	assert.False(t, ok)
}

func TestFileCorruptDocumentReadsAsAbsent(t *testing.T) {
	fs, dir := newFileStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cart.json"), []byte(`[{"truncated`), 0o644))

	_, ok := fs.Read("cart")
	assert.False(t, ok)

	require.NoError(t, fs.Write("cart", []int{}))
	_, ok = fs.Read("cart")
	assert.True(t, ok)
}

func TestFileRejectsPathTraversalKeys(t *testing.T) {
	fs, _ := newFileStore(t)

	assert.Error(t, fs.Write("../escape", 1))
	assert.Error(t, fs.Write(`a\b`, 1))
	assert.Error(t, fs.Write("", 1))

	_, ok := fs.Read("../escape")
	assert.False(t, ok)
}

func TestFileRemove(t *testing.T) {
	fs, dir := newFileStore(t)
	require.NoError(t, fs.Write("cart", 1))
	require.NoError(t, fs.Remove("cart"))

	assert.NoFileExists(t, filepath.Join(dir, "cart.json"))
	assert.NoError(t, fs.Remove("cart"))
}

func TestFileWatchSeesForeignWrites(t *testing.T) {
	fs, dir := newFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := fs.Watch(ctx)
	require.NoError(t, err)

	// Simulate another process replacing the document directly.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.json"), []byte(`[]`), 0o644))

	select {
	case key := <-ch:
		assert.Equal(t, "orders", key)
	case <-time.After(2 * time.Second):
		t.Fatal("no change signal for foreign write")
	}
}
