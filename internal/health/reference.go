package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/nodehealth/internal/core/domain"
	"github.com/vietddude/nodehealth/internal/infra/chain"
	"github.com/vietddude/nodehealth/internal/metrics"
)

// ReferenceClient returns network block heights from an external reference, remembering
// each answer for cacheFor to bound the number of calls made. cacheFor <= 0 disables
// caching.
type ReferenceClient struct {
	source   chain.Reference
	store    CacheStore
	cacheFor time.Duration
	clock    Clock
}

// NewReferenceClient creates a ReferenceClient. A nil store or clock gets the in-memory
// cache or the wall clock.
func NewReferenceClient(
	source chain.Reference,
	store CacheStore,
	cacheFor time.Duration,
	clock Clock,
) *ReferenceClient {
	if store == nil {
		store = NewMemoryCache()
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &ReferenceClient{
		source:   source,
		store:    store,
		cacheFor: cacheFor,
		clock:    clock,
	}
}

// GetNetworkBlockHeight returns the cached height while it is at most cacheFor old,
// and otherwise fetches, caches and returns a fresh one.
func (c *ReferenceClient) GetNetworkBlockHeight(ctx context.Context, network string) (uint64, error) {
	if c.cacheFor > 0 {
		entry, ok, err := c.store.Load(ctx, network)
		switch {
		case err != nil:
			// A broken cache costs a fetch, not a verdict.
			slog.Warn("Reference cache load failed", "network", network, "error", err)
			metrics.ReferenceCacheTotal.WithLabelValues("error").Inc()
		case ok && c.clock.Now().Sub(entry.FetchedAt) <= c.cacheFor:
			slog.Debug("Using cached network block",
				"network", network,
				"block", entry.Height,
				"fetched_at", entry.FetchedAt,
			)
			metrics.ReferenceCacheTotal.WithLabelValues("hit").Inc()
			return entry.Height, nil
		default:
			metrics.ReferenceCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	height, err := c.source.BlockHeight(ctx, network)
	if err != nil {
		return 0, err
	}
	metrics.NetworkBlock.WithLabelValues(network).Set(float64(height))

	if c.cacheFor > 0 {
		entry := domain.CacheEntry{Height: height, FetchedAt: c.clock.Now()}
		if err := c.store.Store(ctx, network, entry); err != nil {
			slog.Warn("Reference cache store failed", "network", network, "error", err)
		}
	}

	return height, nil
}
