// Package configloader reads the YAML application config and applies
// defaults.
package configloader

import (
	"fmt"
	"os"

	"defolio/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RPCConfig tunes chain client construction and failover.
type RPCConfig struct {
	ConnectTimeoutSeconds int `yaml:"connectTimeoutSeconds"`
	CallTimeoutSeconds    int `yaml:"callTimeoutSeconds"`
	MaxRetries            int `yaml:"maxRetries"`
}

// PriceOracleConfig tunes the DEX Screener oracle.
type PriceOracleConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	CacheTTLMinutes      int     `yaml:"cacheTTLMinutes"`
	RequestsPerSecond    float64 `yaml:"requestsPerSecond"`
}

// PerformanceConfig holds fan-out settings.
type PerformanceConfig struct {
	MaxConcurrentChains int `yaml:"maxConcurrentChains"`
}

// HistoryConfig tunes the snapshot store.
type HistoryConfig struct {
	MaxSnapshotsPerAddress int `yaml:"maxSnapshotsPerAddress"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig         `yaml:"server"`
	Logging     LoggingConfig        `yaml:"logging"`
	RPC         RPCConfig            `yaml:"rpc"`
	PriceOracle PriceOracleConfig    `yaml:"priceOracle"`
	Performance PerformanceConfig    `yaml:"performance"`
	History     HistoryConfig        `yaml:"history"`
	Chains      []entity.ChainConfig `yaml:"chains"`
}

// Load reads the YAML configuration file from the given path and applies
// defaults. Chains listed in the file supplement or override the built-in
// catalog when registered.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a usable configuration when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.RPC.ConnectTimeoutSeconds <= 0 {
		cfg.RPC.ConnectTimeoutSeconds = 10
	}
	if cfg.RPC.CallTimeoutSeconds <= 0 {
		cfg.RPC.CallTimeoutSeconds = 15
	}
	if cfg.RPC.MaxRetries <= 0 {
		cfg.RPC.MaxRetries = 3
	}
	if cfg.PriceOracle.RequestTimeoutMillis <= 0 {
		cfg.PriceOracle.RequestTimeoutMillis = 10000
	}
	if cfg.PriceOracle.CacheTTLMinutes <= 0 {
		cfg.PriceOracle.CacheTTLMinutes = 5
		logrus.Infof("CacheTTLMinutes for price oracle not set, defaulting to %d minutes", cfg.PriceOracle.CacheTTLMinutes)
	}
	if cfg.PriceOracle.RequestsPerSecond <= 0 {
		cfg.PriceOracle.RequestsPerSecond = 4
	}
	if cfg.Performance.MaxConcurrentChains <= 0 {
		cfg.Performance.MaxConcurrentChains = 4
	}
	if cfg.History.MaxSnapshotsPerAddress <= 0 {
		cfg.History.MaxSnapshotsPerAddress = 100
	}
}
