package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadOrDefault is Load, except that an empty path or a missing file yields Default.
func LoadOrDefault(path string) (*AppConfig, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Network.Name == "" {
		cfg.Network.Name = DefaultNetwork
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// ApplyEnv overrides cfg with PORT, NETWORK and ETHERSCAN_API_KEY when they are set.
func ApplyEnv(cfg *AppConfig) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("NETWORK"); v != "" {
		cfg.Network.Name = v
	}
	if v := os.Getenv("ETHERSCAN_API_KEY"); v != "" {
		cfg.Network.Etherscan.APIKey = v
	}
	return nil
}

// Validate checks cfg. needReference is set for modes that compare against the network head.
func (c *AppConfig) Validate(needReference bool) error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port %d", c.Server.GRPCPort)
	}
	if c.Server.GRPCPort != 0 && c.Server.GRPCPort == c.Server.Port {
		return fmt.Errorf("grpc port %d collides with http port", c.Server.GRPCPort)
	}
	if c.Node.Port < 0 || c.Node.Port > 65535 {
		return fmt.Errorf("invalid node port %d", c.Node.Port)
	}
	switch c.Logging.Format {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", c.Logging.Format)
	}
	if needReference && c.Network.Etherscan.APIKey == "" && c.Network.Etherscan.BaseURL == "" {
		return errors.New("etherscan api key is required (--key or ETHERSCAN_API_KEY)")
	}
	return nil
}
