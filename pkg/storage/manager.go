package storage

import (
	"fmt"
	"sync"

	"github.com/shashiranjanraj/mandi/config"
	"github.com/shashiranjanraj/mandi/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk string
)

// Connect boots the archive manager. Call once at application startup.
// The local disk is always available; the s3 disk only when S3_BUCKET is set.
func Connect() {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDisk = config.ArchiveDisk()
	disks["local"] = newLocalDisk()

	if config.ArchiveS3Bucket() != "" {
		d, err := newS3Disk()
		if err != nil {
			logger.Warn("storage/s3: disk disabled", "error", err)
		} else {
			disks["s3"] = d
		}
	}
}

// Use returns the named disk ("local" or "s3"), or the default when name is
// empty.
func Use(name string) Disk {
	managerMu.RLock()
	defer managerMu.RUnlock()

	if name == "" {
		name = defaultDisk
	}
	d, ok := disks[name]
	if !ok {
		panic(fmt.Sprintf("storage: disk %q is not configured", name))
	}
	return d
}

// Has reports whether the named disk is configured. An empty name checks
// the default disk. Callers taking user-supplied disk names check here
// before Use, which panics on unknown names.
func Has(name string) bool {
	managerMu.RLock()
	defer managerMu.RUnlock()

	if name == "" {
		name = defaultDisk
	}
	_, ok := disks[name]
	return ok
}

// Register plugs in a custom Disk implementation at boot time.
func Register(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}
