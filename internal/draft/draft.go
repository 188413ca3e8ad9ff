// Package draft keeps the last edited source text per problem.
package draft

import (
	"sync"

	"github.com/verte-zerg/jsoj/internal/localstore"
)

// Key is the durable key holding every draft.
const Key = "js-oj:codeDrafts"

var schema = localstore.Schema[map[string]string]{
	Key:     Key,
	Version: 1,
	Default: func() map[string]string { return map[string]string{} },
	Normalize: func(m map[string]string) map[string]string {
		if m == nil {
			return map[string]string{}
		}
		return m
	},
}

// Cache maps problem ids to draft text.
type Cache struct {
	mu    sync.Mutex
	store *localstore.Adapter
	// mirror holds drafts saved in this process and wins over storage.
	mirror map[string]string
}

// New returns a cache backed by store.
func New(store *localstore.Adapter) *Cache {
	return &Cache{store: store, mirror: map[string]string{}}
}

// Get returns the saved draft for problemID. The bool is false if the
// problem was never saved.
func (c *Cache) Get(problemID string) (string, bool) {
	if problemID == "" {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if text, ok := c.mirror[problemID]; ok {
		return text, true
	}
	text, ok := localstore.Load(c.store, schema)[problemID]
	return text, ok
}

// Save stores text as the draft for problemID. Empty ids are ignored.
// When storage cannot be read the draft is kept in memory only.
func (c *Cache) Save(problemID, text string) {
	if problemID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mirror[problemID] = text
	drafts, read := localstore.Fetch(c.store, schema)
	if !read {
		return
	}
	drafts[problemID] = text
	localstore.Save(c.store, schema, drafts)
}

// All returns a copy of every stored draft.
func (c *Cache) All() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := localstore.Load(c.store, schema)
	for id, text := range c.mirror {
		out[id] = text
	}
	return out
}
