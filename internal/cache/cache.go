// Package cache is a stale-while-revalidate fetch cache keyed by entity,
// user and query parameters.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// ErrMiss is returned by a Store when the key is absent
var ErrMiss = errors.New("cache miss")

// Store is the backing key/value store. Incr stores its counter as a
// decimal string readable through Get.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

// Entities cached per user
const (
	EntityTrades   = "trades"
	EntityProfile  = "profile"
	EntityRules    = "rules"
	EntitySessions = "sessions"
)

const (
	keyPrefix   = "trademind"
	loadTimeout = 10 * time.Second
)

type envelope struct {
	Data      json.RawMessage `json:"data"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Cache serves cached results and refreshes them in the background once they
// are older than staleAfter. Entries are dropped by the store after ttl.
type Cache struct {
	store      Store
	ttl        time.Duration
	staleAfter time.Duration
	now        clock.Clock
	logger     zerolog.Logger
	group      singleflight.Group

	// background revalidations run detached from the request context
	background func(func())
}

// New creates a cache
func New(store Store, ttl, staleAfter time.Duration, now clock.Clock, logger zerolog.Logger) *Cache {
	return &Cache{
		store:      store,
		ttl:        ttl,
		staleAfter: staleAfter,
		now:        now,
		logger:     logger.With().Str("component", "cache").Logger(),
		background: func(fn func()) { go fn() },
	}
}

// Key builds the cache key for entity, userID and params at generation gen
func Key(entity, userID string, gen int64, params interface{}) string {
	raw, _ := json.Marshal(params)
	sum := sha1.Sum(raw)
	return fmt.Sprintf("%s:%s:%s:%d:%s", keyPrefix, entity, userID, gen, hex.EncodeToString(sum[:]))
}

func generationKey(entity, userID string) string {
	return fmt.Sprintf("%s:gen:%s:%s", keyPrefix, entity, userID)
}

// generation returns the current invalidation generation of entity for userID
func (c *Cache) generation(ctx context.Context, entity, userID string) (int64, error) {
	raw, err := c.store.Get(ctx, generationKey(entity, userID))
	if errors.Is(err, ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cache generation %q: %w", raw, err)
	}
	return gen, nil
}

// Fetch returns the value for key, calling fetch on a miss. dest must be a
// pointer; fetch returns the value to cache, which is decoded into dest.
//
// Keys carry the entity's generation, so a load that started before an
// Invalidate can only write to a key no later reader looks up.
func (c *Cache) Fetch(ctx context.Context, entity, userID string, params interface{}, dest interface{}, fetch func(ctx context.Context) (interface{}, error)) error {
	gen, err := c.generation(ctx, entity, userID)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(entity, "error").Inc()
		c.logger.Warn().Err(err).Str("entity", entity).Msg("cache generation read failed, fetching directly")
		v, err := fetch(ctx)
		if err != nil {
			return err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode value: %w", err)
		}
		return json.Unmarshal(data, dest)
	}
	key := Key(entity, userID, gen, params)

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var env envelope
		if uerr := json.Unmarshal(raw, &env); uerr == nil && json.Unmarshal(env.Data, dest) == nil {
			if c.now().Sub(env.FetchedAt) < c.staleAfter {
				metrics.CacheLookups.WithLabelValues(entity, "fresh").Inc()
				return nil
			}
			metrics.CacheLookups.WithLabelValues(entity, "stale").Inc()
			c.revalidate(key, entity, fetch)
			return nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	case errors.Is(err, ErrMiss):
		metrics.CacheLookups.WithLabelValues(entity, "miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues(entity, "error").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, fetching directly")
	}

	// The shared load is detached from the request that starts it
	ch := c.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return c.load(loadCtx, key, fetch)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// load fetches, stores and returns the encoded value
func (c *Cache) load(ctx context.Context, key string, fetch func(ctx context.Context) (interface{}, error)) ([]byte, error) {
	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache value: %w", err)
	}
	env, err := json.Marshal(envelope{Data: data, FetchedAt: c.now()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache envelope: %w", err)
	}
	if err := c.store.Set(ctx, key, env, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return data, nil
}

func (c *Cache) revalidate(key, entity string, fetch func(ctx context.Context) (interface{}, error)) {
	c.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		_, err, _ := c.group.Do(key, func() (interface{}, error) {
			return c.load(ctx, key, fetch)
		})
		if err != nil {
			c.logger.Warn().Err(err).Str("entity", entity).Msg("background revalidation failed")
		}
	})
}

// Invalidate moves entity for userID to a new generation and drops the
// entries of older ones
func (c *Cache) Invalidate(ctx context.Context, entity, userID string) {
	if _, err := c.store.Incr(ctx, generationKey(entity, userID)); err != nil {
		c.logger.Warn().Err(err).Str("entity", entity).Str("user_id", userID).Msg("cache generation bump failed")
	}
	prefix := fmt.Sprintf("%s:%s:%s:", keyPrefix, entity, userID)
	if err := c.store.DeletePrefix(ctx, prefix); err != nil {
		c.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache invalidation failed")
	}
}
