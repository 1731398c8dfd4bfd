// Package platform holds ports for infrastructure collaborators that are
// neither repositories nor services: the clock and the blob store.
package platform

import (
	"io"
	"time"
)

// Clock supplies the current instant. Services take it as a dependency so
// that time-sensitive logic stays deterministic under test.
type Clock interface {
	// Now returns the current instant in UTC.
	Now() time.Time
}

// UTCClock is the production Clock backed by the system time.
type UTCClock struct{}

func (UTCClock) Now() time.Time {
	return time.Now().UTC()
}

// BlobStore is an opaque file store addressed by path. Implementations issue
// public URLs and can recover the storage path from a URL they issued.
type BlobStore interface {
	// Exists reports whether a blob is present at the given path.
	Exists(path string) bool

	// Save writes the reader's content to the given path, creating parent
	// directories or prefixes as needed.
	Save(r io.Reader, path string) error

	// Copy duplicates the blob at srcPath under dstPath.
	Copy(srcPath, dstPath string) error

	// Delete removes the blob at the given path. Deleting a missing blob is
	// not an error.
	Delete(path string) error

	// URL returns the public URL for a stored path.
	URL(path string) string

	// PathFromURL recovers the storage path from a previously issued URL.
	// It tolerates query-string suffixes and returns false for URLs outside
	// the store's base URL.
	PathFromURL(url string) (string, bool)
}
