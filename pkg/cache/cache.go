// Package cache stores rendered scene artifacts between runs.
//
// Rendering a group diagram goes through Graphviz and, for PDF and PNG,
// an external converter. Both are slow next to loading a scene and
// assigning orders, so the pipeline keys finished artifacts by the scene's
// content hash and the render options and reuses them until the scene file
// changes.
//
//	c, err := cache.NewFileCache(dir)
//	key := cache.NewDefaultKeyer().ArtifactKey(sceneHash, opts)
//	if data, hit, _ := c.Get(ctx, key); hit {
//	    ...
//	}
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered artifacts stay valid. Keys already
// change with the scene content, so this only bounds disk usage.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired and
	// unreadable entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// ArtifactKeyOpts lists every render option that changes an artifact's bytes.
type ArtifactKeyOpts struct {
	Format     string   `json:"format"`
	Detailed   bool     `json:"detailed,omitempty"`
	GroupsOnly bool     `json:"groups_only,omitempty"`
	Roots      []string `json:"roots,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	Mode       string   `json:"mode,omitempty"`
	Layer      string   `json:"layer,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for one rendered format of a scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<format>:<hash>".
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, sceneHash, opts)
}
