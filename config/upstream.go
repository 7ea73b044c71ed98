package config

import (
	"errors"
	"strings"
	"time"
)

// UpstreamConfig contains configuration for the upstream complaint backend.
// The gateway never owns resource data; every resource call is forwarded to
// this backend with a bearer token attached.
type UpstreamConfig struct {
	// BaseURL is the root URL of the complaint REST backend.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:5000"`

	// Timeout bounds each outbound call, including the refresh round trip.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// Sanitize applies guardrails to upstream configuration values.
func (u *UpstreamConfig) Sanitize() {
	u.BaseURL = strings.TrimRight(strings.TrimSpace(u.BaseURL), "/")
	if u.Timeout <= 0 {
		u.Timeout = 15 * time.Second
	}
}

// Validate reports configuration errors that cannot be defaulted away.
func (u *UpstreamConfig) Validate() error {
	if u.BaseURL == "" {
		return errors.New("upstream base URL is required")
	}
	return nil
}
