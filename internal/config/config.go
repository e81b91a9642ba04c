// Package config loads settings from built-in defaults, an optional YAML
// file and the environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type Config struct {
	TableName   string    `koanf:"table_name"`
	IndexName   string    `koanf:"index_name"`
	TopicArn    string    `koanf:"topic_arn"`
	PublicURL   string    `koanf:"public_url"`
	Endpoint    string    `koanf:"endpoint"`
	Region      string    `koanf:"region"`
	TokenSecret string    `koanf:"token_secret"`
	AuthPoolURL string    `koanf:"auth_pool_url"`
	Log         LogConfig `koanf:"log"`
}

var envMappings = map[string]string{
	"table_name":       "table_name",
	"index_name":       "index_name",
	"topic_arn":        "topic_arn",
	"public_url":       "public_url",
	"aws_endpoint_url": "endpoint",
	"aws_region":       "region",
	"token_secret":     "token_secret",
	"auth_pool_url":    "auth_pool_url",
	"log_level":        "log.level",
	"log_format":       "log.format",
}

func defaultConfig() *Config {
	return &Config{
		TableName: "RecipeData",
		IndexName: "GS1",
		PublicURL: "http://localhost",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envTransform maps known environment variables onto koanf paths and drops
// the rest.
func envTransform(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		return envPath
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TableName == "" {
		return fmt.Errorf("table_name is required")
	}
	if c.IndexName == "" {
		return fmt.Errorf("index_name is required")
	}
	return nil
}
