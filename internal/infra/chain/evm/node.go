package evm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/vietddude/nodehealth/internal/core/domain"
	"github.com/vietddude/nodehealth/internal/infra/rpc/provider"
)

const (
	DefaultAddress = "localhost"
	DefaultPort    = 8545
)

// Config locates the node's JSON-RPC endpoint.
type Config struct {
	Address string        `yaml:"address"`
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// Endpoint returns http://address:port, falling back to localhost:8545.
func (c Config) Endpoint() string {
	address := c.Address
	if address == "" {
		address = DefaultAddress
	}
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return "http://" + net.JoinHostPort(address, strconv.Itoa(port))
}

// NodeClient queries a local EVM node over JSON-RPC.
type NodeClient struct {
	provider *provider.HTTPProvider
}

// NewNodeClient creates a client for the node described by cfg.
func NewNodeClient(cfg Config) *NodeClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NodeClient{
		provider: provider.NewHTTPProvider("node", cfg.Endpoint(), timeout),
	}
}

// Endpoint returns the node URL.
func (c *NodeClient) Endpoint() string {
	return c.provider.Endpoint()
}

// GetSyncStatus calls eth_syncing.
func (c *NodeClient) GetSyncStatus(ctx context.Context) (domain.SyncStatus, error) {
	result, err := c.provider.Call(ctx, "eth_syncing", nil)
	if err != nil {
		return domain.SyncStatus{}, fmt.Errorf("%w: eth_syncing failed: %w", domain.ErrTransport, err)
	}

	status, err := ParseSyncing(result)
	if err != nil {
		return domain.SyncStatus{}, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	return status, nil
}

// GetBlockHeight calls eth_blockNumber.
func (c *NodeClient) GetBlockHeight(ctx context.Context) (uint64, error) {
	result, err := c.provider.Call(ctx, "eth_blockNumber", nil)
	if err != nil {
		return 0, fmt.Errorf("%w: eth_blockNumber failed: %w", domain.ErrTransport, err)
	}

	height, err := provider.DecodeQuantity(result)
	if err != nil {
		return 0, fmt.Errorf("%w: eth_blockNumber: %w", domain.ErrTransport, err)
	}
	return height, nil
}

// Close releases idle connections.
func (c *NodeClient) Close() error {
	return c.provider.Close()
}

// ParseSyncing maps an eth_syncing result to a SyncStatus.
// false (or the string "false") and null mean idle; an object means syncing.
func ParseSyncing(result json.RawMessage) (domain.SyncStatus, error) {
	trimmed := bytes.TrimSpace(result)
	switch string(trimmed) {
	case "false", `"false"`, "null", "":
		return domain.Idle(), nil
	}

	if trimmed[0] != '{' {
		return domain.SyncStatus{}, fmt.Errorf("unexpected eth_syncing result: %s", trimmed)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return domain.SyncStatus{}, fmt.Errorf("parse eth_syncing result: %w", err)
	}

	raw, ok := fields["currentBlock"]
	if !ok {
		return domain.SyncStatus{}, fmt.Errorf("eth_syncing result has no currentBlock: %s", trimmed)
	}
	current, err := provider.DecodeQuantity(raw)
	if err != nil {
		return domain.SyncStatus{}, fmt.Errorf("eth_syncing currentBlock: %w", err)
	}

	status := domain.SyncStatus{
		Syncing:      true,
		CurrentBlock: current,
		Raw:          append(json.RawMessage(nil), trimmed...),
	}

	if raw, ok := fields["pulledStates"]; ok && string(bytes.TrimSpace(raw)) != "null" {
		pulled, err := provider.DecodeQuantity(raw)
		if err != nil {
			return domain.SyncStatus{}, fmt.Errorf("eth_syncing pulledStates: %w", err)
		}
		status.PulledStates = &pulled
	}

	return status, nil
}
