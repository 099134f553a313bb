package etherscan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/nodehealth/internal/core/domain"
)

func TestSubdomain(t *testing.T) {
	tests := map[string]string{
		"":        "api",
		"main":    "api",
		"mainnet": "api",
		"Ropsten": "ropsten",
		"sepolia": "sepolia",
	}
	for network, want := range tests {
		if got := Subdomain(network); got != want {
			t.Errorf("Subdomain(%q) = %s, want %s", network, got, want)
		}
	}
}

func TestClient_EndpointFor(t *testing.T) {
	c := NewClient(Config{APIKey: "key"})
	if got := c.EndpointFor("main"); got != "https://api.etherscan.io/api" {
		t.Errorf("unexpected mainnet endpoint %s", got)
	}
	if got := c.EndpointFor("Rinkeby"); got != "https://rinkeby.etherscan.io/api" {
		t.Errorf("unexpected rinkeby endpoint %s", got)
	}

	c = NewClient(Config{BaseURL: "http://mirror.local/api"})
	if got := c.EndpointFor("rinkeby"); got != "http://mirror.local/api" {
		t.Errorf("expected base url override, got %s", got)
	}
}

func TestClient_BlockHeight(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("module") != "proxy" {
			t.Errorf("expected module=proxy, got %s", q.Get("module"))
		}
		if q.Get("action") != "eth_blockNumber" {
			t.Errorf("expected action=eth_blockNumber, got %s", q.Get("action"))
		}
		if q.Get("apikey") != "testApiKey" {
			t.Errorf("expected apikey=testApiKey, got %s", q.Get("apikey"))
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":83,"result":"0x2694"}`))
	}))
	defer server.Close()

	c := NewClient(Config{APIKey: "testApiKey", BaseURL: server.URL, Timeout: 5 * time.Second})

	height, err := c.BlockHeight(context.Background(), "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if height != 9876 {
		t.Errorf("expected 9876, got %d", height)
	}
}

func TestClient_BlockHeight_Errors(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
	}{
		{"invalid key", http.StatusOK, `{"status":"0","message":"NOTOK","result":"Invalid API Key"}`},
		{"rpc error", http.StatusOK, `{"jsonrpc":"2.0","id":83,"error":{"code":-32000,"message":"bad"}}`},
		{"non integer", http.StatusOK, `{"jsonrpc":"2.0","id":83,"result":"Max rate limit reached"}`},
		{"server error", http.StatusServiceUnavailable, `unavailable`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(Config{APIKey: "k", BaseURL: server.URL})
			_, err := c.BlockHeight(context.Background(), "ropsten")
			if !errors.Is(err, domain.ErrReferenceUnavailable) {
				t.Fatalf("expected ErrReferenceUnavailable, got %v", err)
			}
		})
	}
}

func TestParseBlockNumber_ZeroPadded(t *testing.T) {
	height, err := parseBlockNumber([]byte(`{"jsonrpc":"2.0","id":83,"result":"0x002694"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if height != 9876 {
		t.Errorf("expected 9876, got %d", height)
	}
}
