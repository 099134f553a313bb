package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/nodehealth/internal/core/domain"
)

// BlockCache stores network reference heights in Redis so that replicas watching the
// same network share one quota at the reference provider.
type BlockCache struct {
	client *Client
	ttl    time.Duration
}

// NewBlockCache creates a BlockCache whose keys expire after ttl.
// Expiry only bounds memory; freshness is still judged by the caller.
func NewBlockCache(client *Client, ttl time.Duration) *BlockCache {
	return &BlockCache{client: client, ttl: ttl}
}

func blockKey(network string) string {
	return fmt.Sprintf("network_block:%s", network)
}

// Load returns the cached entry for network, if any.
func (b *BlockCache) Load(ctx context.Context, network string) (domain.CacheEntry, bool, error) {
	val, err := b.client.rdb.Get(ctx, blockKey(network)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.CacheEntry{}, false, nil
	}
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("get failed: %w", err)
	}

	entry, err := DecodeEntry(val)
	if err != nil {
		return domain.CacheEntry{}, false, err
	}
	return entry, true, nil
}

// Store overwrites the entry for network.
func (b *BlockCache) Store(ctx context.Context, network string, entry domain.CacheEntry) error {
	if err := b.client.rdb.Set(ctx, blockKey(network), EncodeEntry(entry), b.ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// EncodeEntry formats entry as "height:fetchedAtUnixNano".
func EncodeEntry(entry domain.CacheEntry) string {
	return fmt.Sprintf("%d:%d", entry.Height, entry.FetchedAt.UnixNano())
}

// DecodeEntry parses the "height:fetchedAtUnixNano" format.
func DecodeEntry(s string) (domain.CacheEntry, error) {
	height, at, ok := strings.Cut(s, ":")
	if !ok {
		return domain.CacheEntry{}, fmt.Errorf("invalid cache entry: %s", s)
	}

	h, err := strconv.ParseUint(height, 10, 64)
	if err != nil {
		return domain.CacheEntry{}, fmt.Errorf("invalid height: %w", err)
	}

	nanos, err := strconv.ParseInt(at, 10, 64)
	if err != nil {
		return domain.CacheEntry{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	return domain.CacheEntry{Height: h, FetchedAt: time.Unix(0, nanos).UTC()}, nil
}
