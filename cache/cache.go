package cache

import (
	"sync"
	"time"
)

// просроченные записи вычищаются не на каждую запись, а раз в setsPerSweep вызовов Set
const setsPerSweep = 1024

type Item struct {
	data      []byte
	expiredAt time.Time
}

type Cache struct {
	store map[string]Item
	lock  *sync.RWMutex
	sets  int
}

func New() *Cache {
	return &Cache{
		store: map[string]Item{},
		lock:  &sync.RWMutex{},
	}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	item, ok := c.store[key]
	if !ok {
		return nil, false
	}

	if c.now().After(item.expiredAt) {
		return nil, false
	}

	return item.data, true
}

func (c *Cache) Set(key string, data []byte, lifeTime time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.store[key] = Item{
		data:      data,
		expiredAt: c.now().Add(lifeTime),
	}

	c.sets++
	if c.sets >= setsPerSweep {
		c.sets = 0
		c.sweep()
	}
}

func (c *Cache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return len(c.store)
}

func (c *Cache) sweep() {
	now := c.now()
	for key, item := range c.store {
		if now.After(item.expiredAt) {
			delete(c.store, key)
		}
	}
}

func (c *Cache) now() time.Time {
	return time.Now()
}
