// Package config loads the server's startup configuration from a YAML
// file, with sensible defaults and duration-string validation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server's startup configuration.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	LogLevel    string `yaml:"log_level"`
	Broadcaster string `yaml:"broadcaster"` // "memory" or "redis"
	RedisAddr   string `yaml:"redis_addr"`
	ReadTimeout string `yaml:"read_timeout"`

	readTimeout time.Duration
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr:  ":8080",
		LogLevel:    "info",
		Broadcaster: "memory",
		ReadTimeout: "30s",
	}
}

// Load reads and validates a YAML config file, applying Default's values
// for anything the file leaves unset.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks the configuration for internal consistency, parsing its
// duration strings in the process.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listen_addr must not be empty")
	}
	switch c.Broadcaster {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: broadcaster must be \"memory\" or \"redis\", got %q", c.Broadcaster)
	}
	if c.Broadcaster == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("config: redis_addr is required when broadcaster is \"redis\"")
	}
	d, err := time.ParseDuration(c.ReadTimeout)
	if err != nil {
		return fmt.Errorf("config: invalid read_timeout %q: %w", c.ReadTimeout, err)
	}
	c.readTimeout = d
	return nil
}

// ReadTimeoutDuration returns the parsed read timeout. Validate must have
// run first (Load always runs it).
func (c Config) ReadTimeoutDuration() time.Duration { return c.readTimeout }
