package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
	apperrors "github.com/lapor-kampus/lapor-ui-api/internal/errors"
)

// SessionResolver is the slice of the session service the middleware needs.
type SessionResolver interface {
	CurrentUser(ctx context.Context, sessionID string) (*domainauth.Session, error)
}

// GuardConfig configures the route guard for a protected subtree.
type GuardConfig struct {
	CookieName   string
	CookieDomain string

	// SignInPath is where unauthenticated visitors are redirected.
	SignInPath string

	// ExpiryGrace is surfaced in the session-expired notice so the SPA can
	// show it before navigating away.
	ExpiryGrace time.Duration

	// RequiredRoles, when non-empty, restricts the subtree to those roles.
	// The role/path-prefix policy applies regardless.
	RequiredRoles []domainauth.Role

	Logger *slog.Logger
}

func (c GuardConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Guard returns the route-guard middleware for browser page routes. Each
// request passes through a checking phase and ends authorized or redirected:
//
//  1. no session: redirect to sign-in;
//  2. role not in RequiredRoles: redirect to the role's landing dashboard
//     with one access-denied notice;
//  3. path outside the role's allowed prefixes: same redirect and notice;
//  4. otherwise the session lands in the request context and children render.
//
// The notice is written only on the redirect response itself, never on
// re-renders of an authorized page. This guard is client-side
// defense-in-depth; the upstream ACL stays authoritative.
func Guard(svc SessionResolver, cfg GuardConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, outcome := probeSession(r, svc, cfg)
			switch outcome {
			case probeExpired:
				clearCookie(w, r, cfg.CookieName, cfg.CookieDomain)
				setNotice(w, r, cfg.CookieDomain, Notice{
					Code:    string(apperrors.ErrCodeSessionExpired),
					Message: "Sesi Anda telah berakhir, silakan masuk kembali.",
					GraceMS: cfg.ExpiryGrace.Milliseconds(),
				})
				http.Redirect(w, r, cfg.SignInPath, http.StatusFound)
				return
			case probeNoUser:
				http.Redirect(w, r, cfg.SignInPath, http.StatusFound)
				return
			case probeOK:
			}

			role := sess.Role()
			if len(cfg.RequiredRoles) > 0 && !roleIn(role, cfg.RequiredRoles) {
				redirectDenied(w, r, cfg, role)
				return
			}
			if !domainauth.AllowsPath(role, r.URL.Path) {
				redirectDenied(w, r, cfg, role)
				return
			}

			ctx := SetSessionInContext(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type probeOutcome int

const (
	probeOK probeOutcome = iota
	probeNoUser
	probeExpired
)

// probeSession resolves the request's session. Infra failures degrade to
// "no user" so protected pages stay closed rather than half-rendered.
func probeSession(r *http.Request, svc SessionResolver, cfg GuardConfig) (*domainauth.Session, probeOutcome) {
	cookie, err := r.Cookie(cfg.CookieName)
	if err != nil {
		return nil, probeNoUser
	}

	sess, err := svc.CurrentUser(r.Context(), cookie.Value)
	if err != nil {
		if apperrors.IsSessionExpired(err) {
			return nil, probeExpired
		}
		cfg.logger().Error("session probe failed", "error", err, "path", r.URL.Path)
		return nil, probeNoUser
	}
	if sess == nil {
		return nil, probeNoUser
	}
	return sess, probeOK
}

// redirectDenied sends the visitor to their role's landing dashboard with a
// single access-denied notice. Roles without a landing destination go back
// to sign-in.
func redirectDenied(w http.ResponseWriter, r *http.Request, cfg GuardConfig, role domainauth.Role) {
	target, ok := domainauth.Landing(role)
	if !ok {
		target = cfg.SignInPath
	}
	setNotice(w, r, cfg.CookieDomain, Notice{
		Code:    string(apperrors.ErrCodeUnauthorized),
		Message: "Anda tidak memiliki akses ke halaman tersebut.",
	})
	http.Redirect(w, r, target, http.StatusFound)
}

func roleIn(role domainauth.Role, roles []domainauth.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// RequireAuth returns a middleware for JSON API routes. It never redirects:
// unauthenticated requests get a 401 with an error code the SPA understands.
func RequireAuth(svc SessionResolver, cfg GuardConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, outcome := probeSession(r, svc, cfg)
			switch outcome {
			case probeExpired:
				clearCookie(w, r, cfg.CookieName, cfg.CookieDomain)
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: string(apperrors.ErrCodeSessionExpired),
					Err:     errors.New("session expired"),
				})
				return
			case probeNoUser:
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			case probeOK:
			}

			ctx := SetSessionInContext(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
