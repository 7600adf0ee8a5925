// Package storage provides the archive filesystem abstraction used for order
// exports.
//
// Two drivers are available out of the box:
//   - "local" — a directory on the local filesystem (default)
//   - "s3"    — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Quick start:
//
//	storage.Connect()
//	storage.Use("local").Put("exports/orders.csv", data)
package storage

import "time"

// Disk is the archive driver interface.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(path string, content []byte) error

	// Get returns the full content of the file at path.
	Get(path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Size returns the byte size of the file.
	Size(path string) (int64, error)

	// LastModified returns the file's last-modified time.
	LastModified(path string) (time.Time, error)

	// URL returns the public URL for path (meaningful for S3-style disks).
	URL(path string) string

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(path string) error

	// Files lists filenames directly inside directory.
	Files(directory string) ([]string, error)
}
