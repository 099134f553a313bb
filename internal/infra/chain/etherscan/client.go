// Package etherscan reads network block heights from the Etherscan proxy API.
package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vietddude/nodehealth/internal/core/domain"
	"github.com/vietddude/nodehealth/internal/infra/rpc/provider"
)

// Config holds Etherscan API settings.
type Config struct {
	APIKey string `yaml:"api_key"`
	// BaseURL replaces https://{host}.etherscan.io/api for every network when set.
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client fetches the latest block number of a network. It does not cache.
type Client struct {
	cfg Config

	mu        sync.Mutex
	providers map[string]*provider.HTTPProvider
}

// NewClient creates a new Etherscan client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:       cfg,
		providers: make(map[string]*provider.HTTPProvider),
	}
}

// Subdomain returns the API host prefix for a network: "api" for mainnet,
// otherwise the lower-cased network name.
func Subdomain(network string) string {
	if network == "" || network == "main" || network == "mainnet" {
		return "api"
	}
	return strings.ToLower(network)
}

// EndpointFor returns the API URL used for network.
func (c *Client) EndpointFor(network string) string {
	if c.cfg.BaseURL != "" {
		return c.cfg.BaseURL
	}
	return fmt.Sprintf("https://%s.etherscan.io/api", Subdomain(network))
}

// BlockHeight calls module=proxy&action=eth_blockNumber for network.
func (c *Client) BlockHeight(ctx context.Context, network string) (uint64, error) {
	p := c.providerFor(network)

	query := url.Values{}
	query.Set("module", "proxy")
	query.Set("action", "eth_blockNumber")
	query.Set("apikey", c.cfg.APIKey)

	body, err := p.Get(ctx, "eth_blockNumber", query)
	if err != nil {
		return 0, fmt.Errorf("%w: etherscan %s: %w", domain.ErrReferenceUnavailable, network, err)
	}

	height, err := parseBlockNumber(body)
	if err != nil {
		return 0, fmt.Errorf("%w: etherscan %s: %w", domain.ErrReferenceUnavailable, network, err)
	}
	return height, nil
}

// Close releases idle connections of every network endpoint.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.providers {
		_ = p.Close()
	}
	return nil
}

func (c *Client) providerFor(network string) *provider.HTTPProvider {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Subdomain(network)
	if p, ok := c.providers[key]; ok {
		return p
	}
	p := provider.NewHTTPProvider("etherscan-"+key, c.EndpointFor(network), c.cfg.Timeout)
	c.providers[key] = p
	return p
}

// response covers both the proxy (JSON-RPC) and the classic status/message shapes.
type response struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Result  json.RawMessage    `json:"result"`
	Error   *provider.RPCError `json:"error"`
}

func parseBlockNumber(body json.RawMessage) (uint64, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != nil {
		return 0, resp.Error
	}
	if resp.Status == "0" {
		return 0, fmt.Errorf("%s: %s", resp.Message, strings.Trim(string(resp.Result), `"`))
	}

	height, err := provider.DecodeQuantity(resp.Result)
	if err != nil {
		return 0, fmt.Errorf("malformed result: %w", err)
	}
	return height, nil
}
