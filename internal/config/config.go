package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DataFile    string `yaml:"data_file" mapstructure:"data_file"`
	SearchLimit int    `yaml:"search_limit" mapstructure:"search_limit"`
	PrettySave  bool   `yaml:"pretty_save" mapstructure:"pretty_save"`
	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`
}

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

func DefaultConfig() *Config {
	return &Config{
		DataFile:    filepath.Join(configDir(), "memory.json"),
		SearchLimit: 10,
		PrettySave:  true,
		LogLevel:    "info",
	}
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mnemo")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mnemo")
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Search paths
	v.AddConfigPath(".")
	v.AddConfigPath(configDir())

	// Environment variables
	v.SetEnvPrefix("MNEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error produced
			return nil, err
		}
		// Config file not found; ignore and use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	cfg.DataFile = expandEnv(cfg.DataFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors and normalizes zero values.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("config: data_file is required")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("config: log_level %q is invalid (must be debug, info, warn, or error)", c.LogLevel)
	}
	if c.SearchLimit < 1 {
		c.SearchLimit = 10
	}
	return nil
}

// WriteDefault writes a commented starter config.yaml into the config
// directory, refusing to clobber an existing file.
func WriteDefault() (string, error) {
	dir := configDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config: %s already exists", path)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}
	header := "# mnemo configuration. Every key can also be set via MNEMO_* env vars.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
