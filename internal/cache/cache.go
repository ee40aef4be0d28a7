// Package cache holds short-lived aggregation results so repeated page
// loads do not refetch every upstream feed. Purely in-memory; nothing
// survives a restart.
package cache

import (
	"fmt"
	"sync"
	"time"

	"newsdesk/internal/news"
)

type entry struct {
	articles  []news.Article
	expiresAt time.Time
}

type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
}

func New(ttl time.Duration) *Cache {
	return &Cache{
		items: make(map[string]entry),
		ttl:   ttl,
	}
}

// Key derives the cache key for one aggregation request.
func Key(category string, translated bool) string {
	return fmt.Sprintf("%s|translate=%t", category, translated)
}

// Get returns a copy of the cached articles; callers may mutate the
// result freely.
func (c *Cache) Get(key string) ([]news.Article, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}

	out := make([]news.Article, len(e.articles))
	copy(out, e.articles)
	return out, true
}

func (c *Cache) Set(key string, articles []news.Article) {
	stored := make([]news.Article, len(articles))
	copy(stored, articles)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired()
	c.items[key] = entry{
		articles:  stored,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// evictExpired runs under c.mu. With one key per (category, translate)
// pair the map stays tiny, so a full sweep on every Set is fine.
func (c *Cache) evictExpired() {
	now := time.Now()
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
		}
	}
}
