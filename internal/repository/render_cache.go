package repository

import "sync"

// RenderArtifact is a generated renovation image plus the source photo it
// was derived from. Entries are immutable once cached.
type RenderArtifact struct {
	Image       string `json:"renovated_image"` // data URL
	OriginalURL string `json:"original_url"`
}

// RenderCache maps content-addressed render keys to generated artifacts.
// The cache is append-only for the life of the process and carries no
// eviction policy, matching the upstream behavior this service replaces.
type RenderCache struct {
	mu      sync.RWMutex
	entries map[string]RenderArtifact
}

// NewRenderCache creates an empty render cache.
func NewRenderCache() *RenderCache {
	return &RenderCache{
		entries: make(map[string]RenderArtifact),
	}
}

// Get returns the cached artifact for the key, if present.
func (c *RenderCache) Get(key string) (RenderArtifact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	artifact, ok := c.entries[key]
	return artifact, ok
}

// PutIfAbsent stores the artifact unless the key is already present.
// It returns the artifact that is now authoritative for the key and whether
// an entry already existed. A concurrent caller that computed the value
// independently never overwrites the first write.
func (c *RenderCache) PutIfAbsent(key string, artifact RenderArtifact) (RenderArtifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		return existing, true
	}
	c.entries[key] = artifact
	return artifact, false
}

// Len returns the number of cached artifacts.
func (c *RenderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
