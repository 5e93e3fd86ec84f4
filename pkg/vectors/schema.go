package vectors

import "sync"

// collectionSchema is the cached vector configuration of one collection,
// keyed by short name. The etag is the server's schema version, replayed in
// If-Match so concurrent schema changes are detected instead of silently
// corrupting writes.
type collectionSchema struct {
	Size     int
	Distance DistanceMetric
	ETag     string
}

// schemaCache caches collection schemas across calls. It is the only
// mutable state a Client carries and is guarded for concurrent use.
type schemaCache struct {
	mu      sync.RWMutex
	entries map[string]collectionSchema
}

func newSchemaCache() *schemaCache {
	return &schemaCache{entries: make(map[string]collectionSchema)}
}

func (c *schemaCache) get(collection string) (collectionSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[collection]
	return s, ok
}

func (c *schemaCache) set(collection string, s collectionSchema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[collection] = s
}

func (c *schemaCache) invalidate(collection string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, collection)
}

func (c *schemaCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]collectionSchema)
}

// InvalidateSchema drops the cached schema for one collection. The next
// upsert re-fetches it.
func (c *Client) InvalidateSchema(collection string) {
	c.schemas.invalidate(collection)
}

// ClearSchemaCache drops every cached schema.
func (c *Client) ClearSchemaCache() {
	c.schemas.clear()
}
