package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
	apperrors "github.com/lapor-kampus/lapor-ui-api/internal/errors"
	"github.com/lapor-kampus/lapor-ui-api/internal/observability/statsd"
	"github.com/lapor-kampus/lapor-ui-api/internal/ports"
)

// AuthAPI is the slice of the upstream client the session service needs.
type AuthAPI interface {
	Login(ctx context.Context, identityNumber, password string) (domainauth.Credentials, domainauth.Profile, error)
}

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Store   ports.SessionStore
	API     AuthAPI
	Logger  *slog.Logger
	Metrics statsd.Sink

	// Now is the clock used for expiry checks; defaults to time.Now.
	Now func() time.Time
}

// SessionService owns the session lifecycle: sign-in, who-am-I resolution
// with local expiry checking, and sign-out. It is the only component besides
// the refresh interceptor that writes to the credential store.
type SessionService struct {
	store   ports.SessionStore
	api     AuthAPI
	logger  *slog.Logger
	metrics statsd.Sink
	now     func() time.Time
}

// ErrSessionExpired reports that the session's access token expiry has
// passed; the store has already been purged when it is returned.
var ErrSessionExpired error = apperrors.SessionExpired("session expired")

// NewSessionService constructs a new SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		store:   opts.Store,
		api:     opts.API,
		logger:  logger,
		metrics: opts.Metrics,
		now:     now,
	}
}

// SignIn exchanges credentials for a token pair, persists the pair and
// profile atomically, and returns the new session. On a rejected login the
// store is untouched and an InvalidCredentials error is returned.
func (s *SessionService) SignIn(ctx context.Context, identityNumber, password string) (domainauth.Session, error) {
	if identityNumber == "" {
		return domainauth.Session{}, apperrors.ValidationField("no_identitas", "identity number is required")
	}
	if password == "" {
		return domainauth.Session{}, apperrors.ValidationField("password", "password is required")
	}

	creds, profile, err := s.api.Login(ctx, identityNumber, password)
	if err != nil {
		s.count("session.signin", "rejected")
		return domainauth.Session{}, err
	}

	sess := domainauth.Session{
		ID:          uuid.NewString(),
		Credentials: creds,
		Profile:     profile,
	}
	if saveErr := s.store.Save(ctx, sess); saveErr != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", saveErr)
	}

	s.count("session.signin", "ok")
	return sess, nil
}

// CurrentUser resolves the signed-in user for a session ID without any
// network round trip. No session is "no user", not an error. An access token
// whose expiry claim has passed purges the store and returns
// ErrSessionExpired; the handler layer owns the redirect side effect.
func (s *SessionService) CurrentUser(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if expiry, ok := tokenExpiry(sess.Credentials.AccessToken); ok && s.now().After(expiry) {
		if deleteErr := s.store.Delete(ctx, sessionID); deleteErr != nil {
			s.logger.ErrorContext(ctx, "purge expired session failed", "session_id", sessionID, "error", deleteErr)
		}
		s.count("session.expired", "token_expiry")
		return nil, ErrSessionExpired
	}

	return &sess, nil
}

// SignOut unconditionally purges the session. It is idempotent and always
// succeeds; no upstream call is required.
func (s *SessionService) SignOut(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "sign-out purge failed", "session_id", sessionID, "error", err)
	}
	s.count("session.signout", "ok")
}

func (s *SessionService) count(name, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Count(name, 1, map[string]string{"outcome": outcome})
}

// tokenExpiry decodes the expiry claim from the access token without
// verifying the signature. This is a UX convenience only; the upstream
// backend re-validates the token on every protected call. Tokens without a
// readable expiry claim are treated as not-yet-expired.
func tokenExpiry(accessToken string) (time.Time, bool) {
	if accessToken == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
