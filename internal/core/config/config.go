package config

import (
	"log/slog"
	"time"

	"github.com/vietddude/nodehealth/internal/infra/chain/etherscan"
	"github.com/vietddude/nodehealth/internal/infra/chain/evm"
	redisclient "github.com/vietddude/nodehealth/internal/infra/redis"
	"github.com/vietddude/nodehealth/internal/infra/storage/postgres"
)

const (
	DefaultPort    = 50336
	DefaultNetwork = "main"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Node     evm.Config         `yaml:"node"`
	Network  NetworkConfig      `yaml:"network"`
	Health   HealthConfig       `yaml:"health"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP and gRPC server settings.
type ServerConfig struct {
	Port     int `yaml:"port"`
	GRPCPort int `yaml:"grpc_port"` // 0 = disabled
}

// NetworkConfig describes the network the node belongs to and where its head is read from.
type NetworkConfig struct {
	Name         string           `yaml:"name"`
	Etherscan    etherscan.Config `yaml:"etherscan"`
	CacheSeconds int              `yaml:"cache_seconds"` // <= 0 = no caching
}

// HealthConfig holds the health policy.
type HealthConfig struct {
	NodeLabel          string `yaml:"node_label"`
	MaxBlockDifference int64  `yaml:"max_block_difference"` // <= 0 = default
	MaxTimeFrozen      int    `yaml:"max_time_frozen"`      // seconds, <= 0 = default
	Verbose            bool   `yaml:"verbose"`
}

// Log formats. An empty format means text.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// SlogLevel parses Level. Unknown levels fall back to info.
func (l LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// CacheFor returns how long a fetched network height is reused.
func (n NetworkConfig) CacheFor() time.Duration {
	return time.Duration(n.CacheSeconds) * time.Second
}

// MaxSyncFreeze returns the freeze window as a duration.
func (h HealthConfig) MaxSyncFreeze() time.Duration {
	return time.Duration(h.MaxTimeFrozen) * time.Second
}
