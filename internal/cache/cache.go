// Package cache is the TTL-keyed projection accelerating read paths.
// It is never the system of record: a miss always falls through to the
// store, and invalidation after publish is best-effort with staleness
// bounded by the TTL.
package cache

import (
	"context"
	"time"
)

// TTLs per resource class.
const (
	TTLDetail  = 10 * time.Minute
	TTLList    = 5 * time.Minute
	TTLSitemap = 5 * time.Minute
	TTLStats   = 5 * time.Minute
	TTLETag    = 24 * time.Hour
)

// Key construction for the shared namespaces.
const (
	StatsKey   = "stats:global"
	ETagKey    = "defillama:etag"
	ListPrefix = "airdrop:list:"
)

func DetailKey(chain, slug string) string {
	return "airdrop:" + chain + ":" + slug
}

func ListKey(paramsHash string) string {
	return ListPrefix + paramsHash
}

func SitemapKey(path string) string {
	return "sitemap:" + path
}

// Cache is a TTL key-value store. Implementations must treat a missing
// or expired key identically (found=false, no error).
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix removes at most limit keys sharing prefix and
	// returns how many were removed. limit <= 0 means no cap.
	DeleteByPrefix(ctx context.Context, prefix string, limit int) (int, error)
}
