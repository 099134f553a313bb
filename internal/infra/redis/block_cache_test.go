package redis

import (
	"testing"
	"time"

	"github.com/vietddude/nodehealth/internal/core/domain"
)

func TestEncodeDecodeEntry(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 123, time.UTC)
	entry := domain.CacheEntry{Height: 19_000_000, FetchedAt: at}

	s := EncodeEntry(entry)
	if s != "19000000:1709294400000000123" {
		t.Fatalf("unexpected encoding %q", s)
	}

	got, err := DecodeEntry(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Height != entry.Height || !got.FetchedAt.Equal(at) {
		t.Errorf("expected %+v, got %+v", entry, got)
	}
}

func TestDecodeEntry_Invalid(t *testing.T) {
	for _, s := range []string{"", "123", "abc:1", "1:abc", "-1:5"} {
		if _, err := DecodeEntry(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestBlockKey(t *testing.T) {
	if got := blockKey("Ropsten"); got != "network_block:Ropsten" {
		t.Errorf("unexpected key %q", got)
	}
	// Names that select different Etherscan hosts must not share an entry.
	if blockKey("Main") == blockKey("main") {
		t.Error("expected keys to be case sensitive")
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{}).Enabled() {
		t.Error("expected empty config to be disabled")
	}
	if !(Config{URL: "redis://localhost:6379"}).Enabled() {
		t.Error("expected configured URL to be enabled")
	}
}
