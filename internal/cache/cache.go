package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is an in-process map with a single TTL applied to every entry.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
	now func() time.Time
}
type entry struct {
	val string
	exp time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl: ttl,
		m:   make(map[string]entry),
		now: time.Now,
	}
}

func (c *Cache) Get(key string) (string, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed the entry
		if cur, ok := c.m[key]; ok && now.After(cur.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return "", false
	}

	return e.val, true
}

func (c *Cache) Set(key string, val string) {
	c.mu.Lock()
	c.m[key] = entry{val: val, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// LocalIdentityCache maps verified emails to user ids inside one process.
type LocalIdentityCache struct {
	c *Cache
}

func NewLocalIdentityCache(ttl time.Duration) *LocalIdentityCache {
	return &LocalIdentityCache{c: New(ttl)}
}

func (l *LocalIdentityCache) GetUserID(_ context.Context, email string) (string, bool, error) {
	id, ok := l.c.Get(email)
	return id, ok, nil
}

func (l *LocalIdentityCache) SetUserID(_ context.Context, email, userID string) error {
	l.c.Set(email, userID)
	return nil
}
