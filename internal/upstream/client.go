package upstream

// Package upstream is the single outbound HTTP client for the complaint REST
// backend. Every call attaches the session's bearer token; 401 responses are
// intercepted and resolved with exactly one refresh-and-retry per logical
// request, de-duplicated per session across concurrent callers.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
	apperrors "github.com/lapor-kampus/lapor-ui-api/internal/errors"
	"github.com/lapor-kampus/lapor-ui-api/internal/observability/statsd"
	"github.com/lapor-kampus/lapor-ui-api/internal/ports"
)

const (
	loginPath   = "/login"
	refreshPath = "/refresh-token"
	verifyPath  = "/verify-token"
	aclPath     = "/acl/"
)

// ErrSessionExpired is the only error this layer invents: no valid token or
// refresh path remains for the session. All other upstream error bodies pass
// through verbatim to callers.
var ErrSessionExpired error = apperrors.SessionExpired("session expired")

// Options groups dependencies for Client.
type Options struct {
	BaseURL string
	HTTP    *http.Client
	Store   ports.SessionStore
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// Client wraps one *http.Client against the upstream backend.
// Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	store   ports.SessionStore
	logger  *slog.Logger
	metrics statsd.Sink

	// refresh collapses concurrent refresh attempts per session ID so a
	// burst of parallel 401s produces exactly one /refresh-token call.
	refresh singleflight.Group
}

// NewClient constructs a Client. BaseURL and Store are required.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("upstream base URL is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}
	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: base,
		http:    httpClient,
		store:   opts.Store,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Request describes one logical outbound call. The body is a byte slice so
// the interceptor can rebuild the request for the single permitted retry
// without mutating anything the caller owns.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Do sends the request with the session's bearer token attached, resolving a
// 401 with at most one refresh-and-retry. Non-401 responses pass through
// unchanged, success or domain error alike; the caller owns resp.Body.
func (c *Client) Do(ctx context.Context, sessionID string, r Request) (*http.Response, error) {
	retried := false
	token := c.currentToken(ctx, sessionID)

	for {
		req, err := c.build(ctx, r, token)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusUnauthorized {
			return resp, nil
		}

		drain(resp)

		if retried {
			// Second 401 on the same logical request: never loop.
			return nil, ErrSessionExpired
		}

		creds, refreshErr := c.refreshCredentials(ctx, sessionID, token)
		if refreshErr != nil {
			return nil, refreshErr
		}
		token = creds.AccessToken
		retried = true
	}
}

// currentToken reads the session's access token; absence yields an empty
// token and the request goes out unauthenticated.
func (c *Client) currentToken(ctx context.Context, sessionID string) string {
	if sessionID == "" {
		return ""
	}
	sess, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return ""
	}
	return sess.Credentials.AccessToken
}

func (c *Client) build(ctx context.Context, r Request, token string) (*http.Request, error) {
	u := c.baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// refreshCredentials rotates the session's credential pair, collapsing
// concurrent callers into a single upstream refresh call. All callers observe
// either the same rotated pair or the same failure.
func (c *Client) refreshCredentials(
	ctx context.Context,
	sessionID string,
	staleToken string,
) (domainauth.Credentials, error) {
	if sessionID == "" {
		return domainauth.Credentials{}, ErrSessionExpired
	}

	// The shared result must not die with the first caller, and the store
	// write must complete even if the originating request goes away.
	detached := context.WithoutCancel(ctx)

	v, err, _ := c.refresh.Do(sessionID, func() (any, error) {
		return c.doRefresh(detached, sessionID, staleToken)
	})
	if err != nil {
		return domainauth.Credentials{}, err
	}
	creds, ok := v.(domainauth.Credentials)
	if !ok {
		return domainauth.Credentials{}, apperrors.Internal("unexpected refresh result type")
	}
	return creds, nil
}

func (c *Client) doRefresh(ctx context.Context, sessionID, staleToken string) (domainauth.Credentials, error) {
	sess, err := c.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return domainauth.Credentials{}, ErrSessionExpired
		}
		return domainauth.Credentials{}, fmt.Errorf("load session for refresh: %w", err)
	}

	// Another caller may have rotated the pair while we queued; reuse the
	// fresh token instead of rotating twice.
	if staleToken != "" && sess.Credentials.AccessToken != staleToken {
		return sess.Credentials, nil
	}

	if !sess.Credentials.Refreshable() {
		// No refresh path remains; purge before failing, without any
		// network call.
		c.purge(ctx, sessionID)
		c.count("session.refresh", "missing_refresh_token")
		return domainauth.Credentials{}, ErrSessionExpired
	}

	creds, err := c.Refresh(ctx, sess.Credentials.RefreshToken)
	if err != nil {
		c.purge(ctx, sessionID)
		c.count("session.refresh", "rejected")
		c.logger.InfoContext(ctx, "token refresh rejected", "session_id", sessionID, "error", err)
		return domainauth.Credentials{}, ErrSessionExpired
	}

	sess.Credentials = creds
	if saveErr := c.store.Save(ctx, sess); saveErr != nil {
		return domainauth.Credentials{}, fmt.Errorf("store rotated credentials: %w", saveErr)
	}

	c.count("session.refresh", "rotated")
	return creds, nil
}

func (c *Client) purge(ctx context.Context, sessionID string) {
	if err := c.store.Delete(ctx, sessionID); err != nil {
		c.logger.ErrorContext(ctx, "purge session failed", "session_id", sessionID, "error", err)
	}
}

func (c *Client) count(name, outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.Count(name, 1, map[string]string{"outcome": outcome})
}

// drain discards and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
