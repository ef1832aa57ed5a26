package share

import (
	"log/slog"
	"time"

	"github.com/coocood/freecache"
)

// Cache holds encoded snapshots keyed by token.
type Cache interface {
	Get(token string) ([]byte, bool)
	Set(token string, value []byte)
	Del(token string)
}

type snapshotCache struct {
	cache *freecache.Cache
	ttl   int
}

// NewCache returns a freecache-backed Cache of sizeMB megabytes whose
// entries expire after ttl, or a no-op Cache when sizeMB is not positive.
// The TTL bounds how long another instance's re-share can go unseen.
func NewCache(sizeMB int, ttl time.Duration, log *slog.Logger) Cache {
	if sizeMB <= 0 {
		log.Info("snapshot cache disabled")
		return noopCache{}
	}

	secs := max(int(ttl.Seconds()), 1)
	log.Info("snapshot cache initialized", "size_mb", sizeMB, "ttl_seconds", secs)
	return &snapshotCache{
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   secs,
	}
}

func (c *snapshotCache) Get(token string) ([]byte, bool) {
	val, err := c.cache.Get([]byte(token))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *snapshotCache) Set(token string, value []byte) {
	// An entry larger than 1/1024 of the cache is rejected; the read
	// path then falls through to the store.
	_ = c.cache.Set([]byte(token), value, c.ttl)
}

func (c *snapshotCache) Del(token string) {
	c.cache.Del([]byte(token))
}

type noopCache struct{}

func (noopCache) Get(string) ([]byte, bool) { return nil, false }
func (noopCache) Set(string, []byte)        {}
func (noopCache) Del(string)                {}
