// Package cliconfig loads settings for the givehub command-line tool from a
// YAML file, a .env file and GIVEHUB_* environment variables.
package cliconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"

	"github.com/thegivehub/givehub-go"
)

const EnvPrefix = "GIVEHUB"

type Config struct {
	BaseURL      string
	Version      string
	APIKey       string
	AccessToken  string
	RefreshToken string
	Timeout      time.Duration
	LogLevel     string
	Output       string
	Reconnect    ReconnectConfig
}

type ReconnectConfig struct {
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	MaxAttempts       int
	AttemptsPerMinute int
}

func Default() *Config {
	policy := givehub.DefaultReconnectPolicy()

	return &Config{
		BaseURL:  givehub.DefaultBaseURL,
		Version:  givehub.DefaultVersion,
		Timeout:  30 * time.Second,
		LogLevel: "warn",
		Output:   "json",
		Reconnect: ReconnectConfig{
			InitialDelay:      policy.InitialDelay,
			MaxDelay:          policy.MaxDelay,
			MaxAttempts:       policy.MaxAttempts,
			AttemptsPerMinute: policy.AttemptsPerMinute,
		},
	}
}

// Load merges, in increasing precedence: defaults, the YAML file at path,
// variables from envFile, and the process environment. Empty path or
// envFile skip that source; a missing envFile is not an error.
func Load(path, envFile string) (*Config, error) {
	def := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("version", def.Version)
	v.SetDefault("api_key", "")
	v.SetDefault("access_token", "")
	v.SetDefault("refresh_token", "")
	v.SetDefault("timeout", def.Timeout.String())
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("output", def.Output)
	v.SetDefault("reconnect.initial_delay", def.Reconnect.InitialDelay.String())
	v.SetDefault("reconnect.max_delay", def.Reconnect.MaxDelay.String())
	v.SetDefault("reconnect.max_attempts", def.Reconnect.MaxAttempts)
	v.SetDefault("reconnect.attempts_per_minute", def.Reconnect.AttemptsPerMinute)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		BaseURL:      v.GetString("base_url"),
		Version:      v.GetString("version"),
		APIKey:       v.GetString("api_key"),
		AccessToken:  v.GetString("access_token"),
		RefreshToken: v.GetString("refresh_token"),
		LogLevel:     strings.ToLower(v.GetString("log_level")),
		Output:       strings.ToLower(v.GetString("output")),
		Reconnect: ReconnectConfig{
			MaxAttempts:       v.GetInt("reconnect.max_attempts"),
			AttemptsPerMinute: v.GetInt("reconnect.attempts_per_minute"),
		},
	}

	var err error

	if cfg.Timeout, err = parseDuration(v, "timeout"); err != nil {
		return nil, err
	}

	if cfg.Reconnect.InitialDelay, err = parseDuration(v, "reconnect.initial_delay"); err != nil {
		return nil, err
	}

	if cfg.Reconnect.MaxDelay, err = parseDuration(v, "reconnect.max_delay"); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := str2duration.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return d, nil
}

func (c *Config) Validate() error {
	switch c.Output {
	case "json", "yaml":
	default:
		return fmt.Errorf("output must be json or yaml, got %q", c.Output)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}

	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	return c.ReconnectPolicy().Validate()
}

// ClientConfig returns the connection settings for [givehub.New].
func (c *Config) ClientConfig() givehub.Config {
	return givehub.Config{
		BaseURL:      c.BaseURL,
		Version:      c.Version,
		APIKey:       c.APIKey,
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
	}
}

func (c *Config) ReconnectPolicy() givehub.ReconnectPolicy {
	policy := givehub.DefaultReconnectPolicy()
	policy.InitialDelay = c.Reconnect.InitialDelay
	policy.MaxDelay = c.Reconnect.MaxDelay
	policy.MaxAttempts = c.Reconnect.MaxAttempts
	policy.AttemptsPerMinute = c.Reconnect.AttemptsPerMinute

	return policy
}

// WriteDefault writes the default config to path, creating parent
// directories.
func WriteDefault(path string) error {
	def := Default()

	doc := map[string]any{
		"base_url":  def.BaseURL,
		"version":   def.Version,
		"api_key":   "",
		"timeout":   def.Timeout.String(),
		"log_level": def.LogLevel,
		"output":    def.Output,
		"reconnect": map[string]any{
			"initial_delay":       def.Reconnect.InitialDelay.String(),
			"max_delay":           def.Reconnect.MaxDelay.String(),
			"max_attempts":        def.Reconnect.MaxAttempts,
			"attempts_per_minute": def.Reconnect.AttemptsPerMinute,
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// DefaultPath returns ~/.givehub/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".givehub", "config.yaml")
}
