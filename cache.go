package typegraph

import (
	"fmt"
	"strings"
	"sync"

	"github.com/typegraph/typegraph/coreschema"
)

// sharedCache is the process-wide core schema cache, keyed by declaration
// identity plus the ambient configuration frame the declaration was built
// under. Entries are built lazily and read concurrently once published;
// publication itself is serialized by the cache lock, and racing builders
// for the same key produce structurally interchangeable trees by the
// registry invariant, so first-write-wins is safe.
var sharedCache = newSchemaCache()

type cacheEntry struct {
	node     *coreschema.Node
	complete bool
}

type schemaCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newSchemaCache() *schemaCache {
	return &schemaCache{entries: make(map[string]cacheEntry)}
}

func cacheKey(ref string, f frame) string {
	return fmt.Sprintf("%s|strict=%t|extra=%d", ref, f.strict, f.extra)
}

// cacheKeyFor maps a descriptor to its cache key, when the descriptor is of
// a cached granularity (record or fully instantiated template).
func cacheKeyFor(d Descriptor, opt GenerateOpt) (string, bool) {
	switch t := d.(type) {
	case *Record:
		return cacheKey(t.RefID(), opt.rootFrame().apply(t.Policy)), true
	case *Template:
		if len(t.Args) == len(t.Params) {
			return cacheKey(t.RefID(), opt.rootFrame()), true
		}
	}
	// Hooked descriptors are deliberately not keyed: hook output diverges
	// from the cached declaration tree, so they regenerate every time.
	return "", false
}

func (c *schemaCache) lookup(key string) (*coreschema.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.node, e.complete
}

// publish stores a complete tree for key unless one is already present.
func (c *schemaCache) publish(key string, n *coreschema.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = cacheEntry{node: n, complete: !n.Incomplete}
}

func (c *schemaCache) drop(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Invalidate removes every cached tree built for the given declaration
// identity (as returned by Record.RefID or Template.RefID), across all
// configuration frames. The next Generate rebuilds it.
func Invalidate(refID string) {
	sharedCache.mu.Lock()
	defer sharedCache.mu.Unlock()
	for k := range sharedCache.entries {
		if strings.HasPrefix(k, refID+"|") {
			delete(sharedCache.entries, k)
		}
	}
}

// ResetCache drops every cached tree. Intended for tests.
func ResetCache() {
	sharedCache.mu.Lock()
	defer sharedCache.mu.Unlock()
	sharedCache.entries = make(map[string]cacheEntry)
}
