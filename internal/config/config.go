// Package config loads the spyglass server configuration from a YAML file
// with environment variable overrides layered on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Tools  ToolsConfig  `yaml:"tools"`
}

// ServerConfig selects and binds the MCP transport.
type ServerConfig struct {
	// Transport is "stdio" or "streamable-http".
	Transport string `yaml:"transport" env:"SPYGLASS_TRANSPORT"`
	Host      string `yaml:"host" env:"SPYGLASS_HOST"`
	Port      int    `yaml:"port" env:"SPYGLASS_PORT"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"SPYGLASS_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"SPYGLASS_LOG_PRETTY"`
}

// ToolsConfig scopes the exposed tool surface.
type ToolsConfig struct {
	// Enabled restricts the tool surface to the named tools. Empty means all.
	Enabled []string `yaml:"enabled,omitempty" env:"SPYGLASS_ENABLED_TOOLS"`
	// Audit logs every tool invocation with its arguments.
	Audit bool `yaml:"audit" env:"SPYGLASS_AUDIT"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: "streamable-http",
			Host:      "127.0.0.1",
			Port:      8766,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path, falling back to defaults when path is
// empty or the file does not exist, then applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := LoadFromEnv(config); err != nil {
		return nil, fmt.Errorf("load environment overrides: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case "stdio", "streamable-http":
	default:
		return fmt.Errorf("invalid transport %q: must be stdio or streamable-http", c.Server.Transport)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be in 1-65535", c.Server.Port)
	}
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}
