package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vietddude/nodehealth/internal/core/domain"
)

func TestReferenceClient_CachesWithinWindow(t *testing.T) {
	clock := newFakeClock()
	source := &stubReference{height: 1000}
	client := NewReferenceClient(source, NewMemoryCache(), 10*time.Second, clock)
	ctx := context.Background()

	h1, err := client.GetNetworkBlockHeight(ctx, "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	source.height = 1001
	clock.Advance(10 * time.Second)

	h2, err := client.GetNetworkBlockHeight(ctx, "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h1 != 1000 || h2 != 1000 {
		t.Errorf("expected cached 1000 twice, got %d and %d", h1, h2)
	}
	if source.callCount() != 1 {
		t.Errorf("expected 1 external call, got %d", source.callCount())
	}
}

func TestReferenceClient_RefetchesAfterWindow(t *testing.T) {
	clock := newFakeClock()
	source := &stubReference{height: 1000}
	store := NewMemoryCache()
	client := NewReferenceClient(source, store, 10*time.Second, clock)
	ctx := context.Background()

	if _, err := client.GetNetworkBlockHeight(ctx, "main"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	source.height = 1005
	clock.Advance(11 * time.Second)

	h, err := client.GetNetworkBlockHeight(ctx, "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 1005 {
		t.Errorf("expected fresh height 1005, got %d", h)
	}
	if source.callCount() != 2 {
		t.Errorf("expected 2 external calls, got %d", source.callCount())
	}

	entry, ok, _ := store.Load(ctx, "main")
	if !ok || entry.Height != 1005 || !entry.FetchedAt.Equal(clock.Now()) {
		t.Errorf("expected cache updated to 1005 at %v, got %+v", clock.Now(), entry)
	}
}

func TestReferenceClient_CachePerNetwork(t *testing.T) {
	source := &stubReference{height: 1000}
	client := NewReferenceClient(source, nil, time.Minute, newFakeClock())
	ctx := context.Background()

	_, _ = client.GetNetworkBlockHeight(ctx, "main")
	_, _ = client.GetNetworkBlockHeight(ctx, "ropsten")
	_, _ = client.GetNetworkBlockHeight(ctx, "main")

	if source.callCount() != 2 {
		t.Errorf("expected one call per network, got %d", source.callCount())
	}
}

func TestReferenceClient_NonPositiveWindowDisablesCache(t *testing.T) {
	for _, window := range []time.Duration{0, -time.Second} {
		source := &stubReference{height: 1000}
		client := NewReferenceClient(source, nil, window, newFakeClock())

		for i := 0; i < 3; i++ {
			if _, err := client.GetNetworkBlockHeight(context.Background(), "main"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if source.callCount() != 3 {
			t.Errorf("window %v: expected 3 calls, got %d", window, source.callCount())
		}
	}
}

func TestReferenceClient_ErrorNotCached(t *testing.T) {
	source := &stubReference{err: domain.ErrReferenceUnavailable}
	store := NewMemoryCache()
	client := NewReferenceClient(source, store, time.Minute, newFakeClock())

	_, err := client.GetNetworkBlockHeight(context.Background(), "main")
	if !errors.Is(err, domain.ErrReferenceUnavailable) {
		t.Fatalf("expected ErrReferenceUnavailable, got %v", err)
	}
	if _, ok, _ := store.Load(context.Background(), "main"); ok {
		t.Error("expected failed fetch not to be cached")
	}
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) (domain.CacheEntry, bool, error) {
	return domain.CacheEntry{}, false, errors.New("connection refused")
}

func (brokenStore) Store(context.Context, string, domain.CacheEntry) error {
	return errors.New("connection refused")
}

func TestReferenceClient_BrokenStoreFallsBackToFetch(t *testing.T) {
	source := &stubReference{height: 42}
	client := NewReferenceClient(source, brokenStore{}, time.Minute, newFakeClock())

	h, err := client.GetNetworkBlockHeight(context.Background(), "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 42 {
		t.Errorf("expected 42, got %d", h)
	}
}
