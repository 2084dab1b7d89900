// Package cache stores resolved item data between runs.
//
// The layout itself is never persisted: it is cheap to recompute and only
// valid for one container geometry. What is worth keeping is the expensive
// collaborator data the layout consumes, chiefly image dimensions decoded
// from files on disk.
//
// Three backends implement [Cache]:
//   - [FileCache] for the CLI, under the user cache directory
//   - [RedisCache] for the HTTP server when several instances share state
//   - [NullCache] when caching is disabled
//
// Keys are produced by a [Keyer] so that backends stay agnostic of what
// they store.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLDimensions applies to decoded image dimensions. Keys include the
// content hash, so an edited image never hits a stale entry.
const TTLDimensions = 30 * 24 * time.Hour

// Keyer builds cache keys.
type Keyer interface {
	// DimensionsKey is the key for the decoded size of an image with the
	// given content hash.
	DimensionsKey(contentHash string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DimensionsKey implements [Keyer].
func (DefaultKeyer) DimensionsKey(contentHash string) string {
	return versionedKey("dims", dimensionsVersion, contentHash)
}

// dimensionsVersion is bumped when the cached dimensions format changes.
const dimensionsVersion = 1
