package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thegivehub/givehub-go"
	"github.com/thegivehub/givehub-go/internal/cliconfig"
)

// app carries state shared by all subcommands once flags are parsed.
type app struct {
	configPath string
	envFile    string

	baseURL      string
	apiVersion   string
	apiKey       string
	accessToken  string
	refreshToken string
	output       string
	logLevel     string

	cfg    *cliconfig.Config
	logger *slog.Logger
	client *givehub.Client
	out    io.Writer
}

func (a *app) bindFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "Config file (default ~/.givehub/config.yaml when present)")
	f.StringVar(&a.envFile, "env-file", ".env", "Environment file to load")
	f.StringVar(&a.baseURL, "base-url", "", "API base URL")
	f.StringVar(&a.apiVersion, "api-version", "", "API version segment")
	f.StringVar(&a.apiKey, "api-key", "", "API key")
	f.StringVar(&a.accessToken, "access-token", "", "Access token")
	f.StringVar(&a.refreshToken, "refresh-token", "", "Refresh token")
	f.StringVarP(&a.output, "output", "o", "", "Output format (json, yaml)")
	f.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func (a *app) init(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		if p := cliconfig.DefaultPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}

	cfg, err := cliconfig.Load(path, a.envFile)
	if err != nil {
		return err
	}

	override(&cfg.BaseURL, a.baseURL)
	override(&cfg.Version, a.apiVersion)
	override(&cfg.APIKey, a.apiKey)
	override(&cfg.AccessToken, a.accessToken)
	override(&cfg.RefreshToken, a.refreshToken)
	override(&cfg.Output, strings.ToLower(a.output))
	override(&cfg.LogLevel, strings.ToLower(a.logLevel))

	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.out = cmd.OutOrStdout()
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	client, err := givehub.New(cfg.ClientConfig(),
		givehub.WithRequestTimeout(cfg.Timeout),
		givehub.WithReconnectPolicy(cfg.ReconnectPolicy()),
		givehub.WithRequestLogger(givehub.NewSlogLogger(a.logger)),
		givehub.WithUserAgent("givehub-cli/"+Version),
	)
	if err != nil {
		return err
	}

	a.client = client

	return nil
}

func (a *app) print(v any) error {
	switch a.cfg.Output {
	case "yaml":
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// exitCode maps errors to process exit codes: 3 for authentication
// problems, 4 for other API errors, 5 when the API is unreachable.
func exitCode(err error) int {
	var connErr *givehub.ConnectionError

	switch {
	case givehub.IsUnauthorized(err):
		return 3
	case givehub.StatusCode(err) != 0:
		return 4
	case errors.As(err, &connErr):
		return 5
	default:
		return 1
	}
}

// parseFields turns key=value pairs into a JSON object. Values that parse as
// JSON (numbers, booleans, objects) keep their type; everything else is a
// string.
func parseFields(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", pair)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			out[key] = decoded
		} else {
			out[key] = value
		}
	}

	return out, nil
}

func parseParams(pairs []string) (givehub.Params, error) {
	out := make(givehub.Params, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}

		out[key] = value
	}

	return out, nil
}

// readBody returns the request body from --data (inline JSON or @file) merged
// with --field pairs.
func readBody(data string, fields []string) (map[string]any, error) {
	body := map[string]any{}

	if data != "" {
		raw := []byte(data)

		if strings.HasPrefix(data, "@") {
			var err error
			if raw, err = os.ReadFile(strings.TrimPrefix(data, "@")); err != nil {
				return nil, err
			}
		}

		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("invalid --data: %w", err)
		}
	}

	extra, err := parseFields(fields)
	if err != nil {
		return nil, err
	}

	for k, v := range extra {
		body[k] = v
	}

	return body, nil
}
