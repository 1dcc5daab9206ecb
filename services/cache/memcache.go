package cache

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheService implements CacheService over memcached. In this
// pipeline it holds one entry per blocked host: the key is the offer-URL
// host and the TTL is the block time, so a blocked host naturally
// unblocks when the entry lapses.
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService connects to the memcached instance at addr
func NewMemcacheService(addr string) *MemcacheService {
	return &MemcacheService{
		client: memcache.New(addr),
	}
}

// Get returns the value for key. A miss comes back as an error, which
// the scraper reads as "host not blocked".
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores value under key until expiration lapses. memcached takes
// whole seconds, so sub-second expirations round down.
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
}

// Delete removes key, unblocking the host immediately
func (m *MemcacheService) Delete(key string) error {
	return m.client.Delete(key)
}
