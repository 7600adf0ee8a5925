package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	defaultStoreDriver = "file"
	defaultStoreRoot   = "data"
	defaultRedisAddr   = "localhost:6379"
	defaultJWTSecret   = "change-me-in-production"
	defaultAppPort     = "8080"
	defaultAppEnv      = "local"
	defaultArchiveDisk = "local"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":        defaultAppEnv,
		"APP_PORT":       defaultAppPort,
		"JWT_SECRET":     defaultJWTSecret,
		"STORE_DRIVER":   defaultStoreDriver,
		"STORE_ROOT":     defaultStoreRoot,
		"REDIS_ADDR":     defaultRedisAddr,
		"REDIS_PASSWORD": "",
		"MONGO_URI":      "",
		"ADMIN_EMAILS":   "",
		"ARCHIVE_DISK":   defaultArchiveDisk,
	}
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

// AdminEmails returns the comma-separated ADMIN_EMAILS list. Only these
// identities may log in with the admin role.
func AdminEmails() []string {
	_ = Load()
	raw := get("ADMIN_EMAILS", "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}

// ── Store ────────────────────────────────────────────────────────────────────

// StoreDriver selects the key-value store backend: "file", "memory" or "redis".
func StoreDriver() string {
	_ = Load()

	driver := strings.ToLower(get("STORE_DRIVER", defaultStoreDriver))
	switch driver {
	case "file", "memory", "redis":
		return driver
	default:
		return defaultStoreDriver
	}
}

// StoreRoot is the directory the file store keeps its JSON documents in.
func StoreRoot() string {
	_ = Load()
	return get("STORE_ROOT", defaultStoreRoot)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// ── Logging ──────────────────────────────────────────────────────────────────

// MongoURI enables the async Mongo log sink when non-empty.
func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", "")
}

func MongoLogDB() string {
	_ = Load()
	return get("MONGO_LOG_DB", "mandi")
}

func MongoLogCollection() string {
	_ = Load()
	return get("MONGO_LOG_COLLECTION", "logs")
}

// ── Archive (order exports) ──────────────────────────────────────────────────

func ArchiveDisk() string {
	_ = Load()
	return get("ARCHIVE_DISK", defaultArchiveDisk)
}

func ArchiveLocalRoot() string {
	_ = Load()
	return get("ARCHIVE_LOCAL_ROOT", "archive")
}

func ArchiveS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func ArchiveS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func ArchiveS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func ArchiveS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func ArchiveS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func ArchiveS3URL() string      { _ = Load(); return get("S3_URL", "") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	// Process environment wins over files so the CLI can point a second
	// process at the same store without editing .env.
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
