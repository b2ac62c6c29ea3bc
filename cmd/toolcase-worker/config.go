package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the worker's YAML configuration file. Every field has a default;
// an absent file runs the worker with defaults.
type Config struct {
	// Addr is the HTTP listen address. Ignored for the stdio transport.
	Addr string `yaml:"addr"`
	// Secret, when set, is required as a bearer token on worker routes.
	Secret string `yaml:"secret"`
	// Transport selects the serving surface: "http" or "stdio".
	Transport string `yaml:"transport"`

	Timeout        duration `yaml:"timeout"`
	MaxConcurrency int      `yaml:"max_concurrency"`

	DisabledTools    []string `yaml:"disabled_tools"`
	DisabledToolkits []string `yaml:"disabled_toolkits"`

	LogLevel string `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Addr:           ":8002",
		Transport:      "http",
		Timeout:        duration(30 * time.Second),
		MaxConcurrency: 10,
		LogLevel:       "info",
	}
}

// duration decodes "30s"-style YAML values, which yaml.v3 does not do for
// time.Duration itself.
type duration time.Duration

func (d *duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = duration(parsed)
	return nil
}

// loadConfig reads the YAML config at path. An empty path or a missing file
// yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Transport {
	case "http", "stdio":
	default:
		return fmt.Errorf("unknown transport %q: want http or stdio", c.Transport)
	}
	return nil
}
