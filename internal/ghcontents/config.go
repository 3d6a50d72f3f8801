package ghcontents

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.github.com"
	DefaultTimeout = 30 * time.Second
)

// Config is the configuration for Client
type Config struct {
	BaseURL string        // BaseURL defaults to DefaultBaseURL
	Token   string        // Token is required
	Timeout time.Duration // Timeout defaults to DefaultTimeout
}

func (c *Config) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return ErrNoToken
	}

	if c.BaseURL == "" {
		return ErrNoBaseURL
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrNoBaseURL, c.BaseURL)
	}

	return nil
}
