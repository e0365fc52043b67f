package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	RPCAddress        string `toml:"RPCAddress"`
	DataDir           string `toml:"DataDir"`
	OwnerAccount      string `toml:"OwnerAccount"`
	InitialSupply     uint64 `toml:"InitialSupply"`
	Environment       string `toml:"Environment"`
	LogFile           string `toml:"LogFile"`
	FulfillmentRoutes string `toml:"FulfillmentRoutes"`

	// RateLimitPerMinute bounds JSON-RPC calls per client address.
	// Zero disables limiting.
	RateLimitPerMinute int `toml:"RateLimitPerMinute"`
	RateLimitBurst     int `toml:"RateLimitBurst"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the daemon cannot safely start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("RPCAddress must not be empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DataDir must not be empty")
	}
	if strings.TrimSpace(c.OwnerAccount) == "" {
		return fmt.Errorf("OwnerAccount must not be empty")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RateLimitPerMinute must not be negative")
	}
	if c.RateLimitBurst < 0 {
		return fmt.Errorf("RateLimitBurst must not be negative")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./ledger-data"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "local"
	}
	if cfg.RateLimitPerMinute > 0 && cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = cfg.RateLimitPerMinute
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:         ":8080",
		DataDir:            "./ledger-data",
		OwnerAccount:       "ledger-owner",
		InitialSupply:      0,
		Environment:        "local",
		RateLimitPerMinute: 600,
		RateLimitBurst:     100,
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
