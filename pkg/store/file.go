package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/shashiranjanraj/mandi/pkg/logger"
)

// File stores each key as <root>/<key>.json. It is the production default:
// the durable, per-installation store that carts, orders and notifications
// live in, shared by the server and any CLI process pointed at the same root.
type File struct {
	root string
}

// NewFile creates the root directory if needed and returns a file store.
func NewFile(root string) (*File, error) {
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("store/file: mkdir %s: %w", root, err)
	}
	return &File{root: root}, nil
}

func (f *File) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("store/file: invalid key %q", key)
	}
	return filepath.Join(f.root, key+".json"), nil
}

func (f *File) Read(key string) (json.RawMessage, bool) {
	p, err := f.path(key)
	if err != nil {
		return nil, false
	}

	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	if !json.Valid(raw) {
		// Corrupt document: treat as absent rather than failing the read.
		logger.Warn("store/file: corrupt value, treating as absent", "key", key)
		return nil, false
	}
	return raw, true
}

func (f *File) Write(key string, value any) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store/file: marshal %s: %w", key, err)
	}

	// Write-temp + rename so an interrupted process never leaves a torn
	// document behind.
	tmp, err := os.CreateTemp(f.root, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("store/file: temp for %s: %w", key, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store/file: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store/file: close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store/file: rename %s: %w", key, err)
	}
	return nil
}

func (f *File) Remove(key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store/file: remove %s: %w", key, err)
	}
	return nil
}

// Watch delivers the key behind every file created, replaced or removed under
// the store root, including changes made by other processes. This is the
// cross-view signal: it carries no payload, subscribers re-read the store.
func (f *File) Watch(ctx context.Context) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store/file: watcher: %w", err)
	}
	if err := w.Add(f.root); err != nil {
		w.Close()
		return nil, fmt.Errorf("store/file: watch %s: %w", f.root, err)
	}

	ch := make(chan string, 64)
	go func() {
		defer close(ch)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				key := keyFromFilename(filepath.Base(ev.Name))
				if key == "" {
					continue // temp files and strangers
				}
				// Atomic writes land as Create (rename target);
				// removals matter too since Remove deletes the key.
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				select {
				case ch <- key:
				default:
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("store/file: watch error", "error", err)
			}
		}
	}()
	return ch, nil
}

func keyFromFilename(name string) string {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
		return ""
	}
	return strings.TrimSuffix(name, ".json")
}
