package geocoders

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/airsense/internal/airquality"
	"github.com/i474232898/airsense/internal/common"
)

type cacheEntry struct {
	loc     airquality.Location
	expires time.Time
}

// CachingGeocoder remembers successful lookups for ttl.
// Failures are never cached.
type CachingGeocoder struct {
	next airquality.Geocoder
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCachingGeocoder wraps next. A non-positive ttl disables expiry.
func NewCachingGeocoder(next airquality.Geocoder, ttl time.Duration) *CachingGeocoder {
	return &CachingGeocoder{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachingGeocoder) Name() string {
	return c.next.Name()
}

func (c *CachingGeocoder) Geocode(ctx context.Context, name string) (airquality.Location, error) {
	key := common.NormalizeKey(name)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && !c.expired(e) {
		return e.loc, nil
	}

	loc, err := c.next.Geocode(ctx, name)
	if err != nil {
		return airquality.Location{}, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{loc: loc, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return loc, nil
}

// Len returns the number of cached entries, expired ones included.
func (c *CachingGeocoder) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep drops expired entries and returns how many were removed.
func (c *CachingGeocoder) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *CachingGeocoder) expired(e cacheEntry) bool {
	return c.ttl > 0 && !c.now().Before(e.expires)
}
