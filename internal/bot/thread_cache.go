package bot

import (
	"sync"
)

// threadCache remembers thread names after discordgo's state has already
// dropped a deleted thread, since THREAD_DELETE carries only ids.
type threadCache struct {
	mu      sync.RWMutex
	entries map[string]threadEntry
	limit   int
}

type threadEntry struct {
	name    string
	starter string
}

func newThreadCache(limit int) *threadCache {
	return &threadCache{
		entries: make(map[string]threadEntry),
		limit:   limit,
	}
}

func (c *threadCache) Store(threadID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[threadID]; !ok && len(c.entries) >= c.limit {
		// evict an arbitrary entry
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	e := c.entries[threadID]
	e.name = name
	c.entries[threadID] = e
}

// SetStarter records the content of a forum post's opening message. The
// starter message shares its id with the thread.
func (c *threadCache) SetStarter(threadID, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[threadID]; ok {
		e.starter = content
		c.entries[threadID] = e
	}
}

// Take returns and forgets the cached entry.
func (c *threadCache) Take(threadID string) (threadEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[threadID]
	delete(c.entries, threadID)
	return e, ok
}
