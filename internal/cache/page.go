// page.go provides a Valkey-backed full-page HTML cache for the public
// site. Rendered recipe pages and the homepage are stored so repeat
// requests skip the database query and markdown rendering. Entries are
// invalidated whenever a recipe is created, updated, or deleted, which
// includes every auto-generation cycle.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix namespaces cached pages in Valkey.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute

	// homepageKey is the synthetic key for the recipe listing page.
	homepageKey = "_homepage"
)

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves cached HTML for a page key.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores rendered HTML for a page key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidateRecipe removes a recipe page and the homepage, which lists it.
func (pc *PageCache) InvalidateRecipe(ctx context.Context, slug string) {
	if err := pc.client.Del(ctx, pageKeyPrefix+RecipeKey(slug), pageKeyPrefix+homepageKey).Err(); err != nil {
		slog.Warn("page cache invalidate error", "slug", slug, "error", err)
	}
}

// InvalidateAll removes every cached page by scanning for the prefix.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
}

// HomepageKey returns the cache key for the recipe listing page.
func HomepageKey() string {
	return homepageKey
}

// RecipeKey returns the cache key for a recipe page.
func RecipeKey(slug string) string {
	return "receitas/" + slug
}
