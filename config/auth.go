package config

import (
	"fmt"
	"strings"
	"time"
)

// StoreMode selects the backend for the credential/session store.
type StoreMode string

const (
	// StoreModeRedis persists sessions in Redis (production).
	StoreModeRedis StoreMode = "redis"
	// StoreModeMemory keeps sessions in process memory (development only).
	StoreModeMemory StoreMode = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreMode.
func (m *StoreMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "redis", "memory":
		*m = StoreMode(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreMode: %q (valid options: redis, memory)", v)
	}
}

// AuthConfig groups session and credential-store configuration.
type AuthConfig struct {
	// StoreMode determines which credential store backend to use.
	StoreMode StoreMode `env:"SESSION_STORE" envDefault:"redis"`

	// CookieName is the name of the session ID cookie handed to the SPA.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"lapor_session"`

	// SessionTTL bounds how long a session record lives in the store.
	// The refresh token is what keeps a session usable; rotation re-saves
	// the record under this same TTL.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// SignInPath is the SPA route unauthenticated visitors are sent to.
	SignInPath string `env:"SIGN_IN_PATH" envDefault:"/"`

	// ExpiryGrace is how long the SPA should wait before navigating away
	// after a session-expired notice, so the notice is visible to the user.
	ExpiryGrace time.Duration `env:"EXPIRY_GRACE" envDefault:"2s"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.CookieName == "" {
		a.CookieName = "lapor_session"
	}
	if a.SessionTTL <= 0 {
		a.SessionTTL = 720 * time.Hour
	}
	if !strings.HasPrefix(a.SignInPath, "/") {
		a.SignInPath = "/" + a.SignInPath
	}
	if a.ExpiryGrace < 0 {
		a.ExpiryGrace = 0
	}
}
