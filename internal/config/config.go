// Package config loads buffer pool defaults via viper, following the
// shape of tuannm99-novasql's internal/config.go: a typed config struct
// populated from an optional YAML file, environment variables, and
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/pnathan/storagepool/internal/bufferpool"
)

// Config holds the buffer pool's runtime configuration.
type Config struct {
	Pool struct {
		PageSize     int    `mapstructure:"page_size"`
		Size         int    `mapstructure:"size"`
		Strategy     string `mapstructure:"strategy"`
		PageFilePath string `mapstructure:"page_file_path"`
		ThreadSafe   bool   `mapstructure:"thread_safe"`
	} `mapstructure:"pool"`
}

// Strategy parses the configured strategy name into a bufferpool.Strategy.
func (c *Config) Strategy() (bufferpool.Strategy, error) {
	return bufferpool.ParseStrategy(c.Pool.Strategy)
}

// Load reads path (a YAML file) if it exists, layering it over built-in
// defaults. STORAGEPOOL_*-prefixed environment variables take precedence
// over both. An empty or missing path is not an error: defaults (and any
// environment overrides) are used.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STORAGEPOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("pool.page_size", bufferpool.DefaultPageSize)
	v.SetDefault("pool.size", 64)
	v.SetDefault("pool.strategy", "LRU")
	v.SetDefault("pool.page_file_path", "storagepool.dat")
	v.SetDefault("pool.thread_safe", true)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if _, err := cfg.Strategy(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
