package givehub

import (
	"errors"
	"net/url"
	"strings"
)

const (
	DefaultBaseURL = "https://api.thegivehub.com"
	DefaultVersion = "v1"
)

// Config holds the connection settings and the initial credentials of a
// [Client]. It is copied into the client by [New]; later token changes made
// by [Auth] are observable through [Client.Session], not through the caller's
// Config value.
type Config struct {
	BaseURL      string
	Version      string
	APIKey       string
	AccessToken  string
	RefreshToken string
}

// DefaultConfig returns a Config pointing at the public API with no
// credentials.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Version: DefaultVersion,
	}
}

func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Version = strings.Trim(strings.TrimSpace(c.Version), "/")

	if c.Version == "" {
		c.Version = DefaultVersion
	}

	return c
}

// Validate reports whether the config can be used to build request URLs.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base URL must be set")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.New("base URL is invalid: " + err.Error())
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("base URL scheme must be http or https")
	}

	if u.Host == "" {
		return errors.New("base URL must include a host")
	}

	return nil
}
