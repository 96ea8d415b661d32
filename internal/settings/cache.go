package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medconnect/clinic-platform/pkg/logging"
)

// CachedRepository layers a Redis read-through cache over another Repository.
// Saves write through and drop the cached entry so the next read is fresh.
// Cache failures degrade to the underlying store, never to an error.
type CachedRepository struct {
	inner  Repository
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedRepository wraps inner with a Redis cache. A nil client disables
// caching entirely.
func NewCachedRepository(inner Repository, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedRepository {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func cacheKey(doctorID string) string {
	return "settings:" + doctorID
}

// Get returns the cached document when present, falling through to the
// underlying store on miss.
func (c *CachedRepository) Get(ctx context.Context, doctorID string) (*DoctorSettings, error) {
	if c.client != nil {
		raw, err := c.client.Get(ctx, cacheKey(doctorID)).Bytes()
		switch {
		case err == nil:
			var s DoctorSettings
			if jerr := json.Unmarshal(raw, &s); jerr == nil {
				return &s, nil
			}
			// Unreadable entry: fall through and overwrite.
		case !errors.Is(err, redis.Nil):
			c.logger.Error("settings cache read failed", "error", err, "doctor_id", doctorID)
		}
	}

	s, err := c.inner.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, s)
	return s, nil
}

// Save writes through to the underlying store and invalidates the cache.
func (c *CachedRepository) Save(ctx context.Context, s *DoctorSettings) error {
	if err := c.inner.Save(ctx, s); err != nil {
		return err
	}
	if c.client != nil {
		if err := c.client.Del(ctx, cacheKey(s.DoctorID)).Err(); err != nil {
			c.logger.Error("settings cache invalidation failed", "error", err, "doctor_id", s.DoctorID)
		}
	}
	return nil
}

// Exists delegates to the underlying store.
func (c *CachedRepository) Exists(ctx context.Context, doctorID string) (bool, error) {
	return c.inner.Exists(ctx, doctorID)
}

func (c *CachedRepository) store(ctx context.Context, s *DoctorSettings) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(s.DoctorID), raw, c.ttl).Err(); err != nil {
		c.logger.Error("settings cache write failed", "error", err, "doctor_id", s.DoctorID)
	}
}

var _ Repository = (*CachedRepository)(nil)
