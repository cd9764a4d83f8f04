// Package cache provides content-addressed caching for layout results and
// rendered artifacts. Keys are derived from scene hashes and viewport or
// format options, so a cache entry is valid exactly as long as its inputs
// are unchanged.
package cache

import (
	"context"
	"time"
)

// Cache TTLs per pipeline stage. Layouts are cheap to recompute, artifacts
// less so, and both are content-addressed, so long TTLs are safe.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is the storage interface for cached byte payloads.
//
// Implementations must treat a missing key as a miss, not an error.
// A TTL of 0 means the entry never expires.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// LayoutKeyOpts captures the inputs that affect a resolved layout beyond
// the scene itself.
type LayoutKeyOpts struct {
	Width  float64
	Height float64
}

// ArtifactKeyOpts captures the inputs that affect a rendered artifact
// beyond the layout it was rendered from.
type ArtifactKeyOpts struct {
	Format string
	Scale  float64
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// LayoutKey generates a key for a resolved layout, derived from the
	// scene content hash and the viewport.
	LayoutKey(sceneHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact, derived from
	// the layout hash and the output format.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer implementation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for a resolved layout.
func (k *DefaultKeyer) LayoutKey(sceneHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", sceneHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
