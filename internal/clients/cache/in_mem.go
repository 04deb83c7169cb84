package cache

import "sync"

// InMemCache is the process-local fallback when no memcached hosts are
// configured.
type InMemCache struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewInMem() *InMemCache {
	return &InMemCache{items: make(map[string][]byte)}
}

func (c *InMemCache) Get(key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	res := make([]byte, len(value))
	copy(res, value)
	return res, true, nil
}

func (c *InMemCache) Set(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	c.items[key] = stored
	return nil
}
