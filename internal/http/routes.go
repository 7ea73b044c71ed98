package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lapor-kampus/lapor-ui-api/config"
	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
	"github.com/lapor-kampus/lapor-ui-api/internal/upstream"
)

// SessionService combines the slices of the session service the router wires
// into handlers and middleware.
type SessionService interface {
	AuthServiceInterface
	SessionResolver
}

// RouterServices groups the services the router needs.
type RouterServices struct {
	Sessions SessionService
	Nav      NavigationBuilder
	Perms    PermissionResolver
	Upstream *upstream.Client

	Auth   config.AuthConfig
	HTTP   config.HTTPConfig
	Logger *slog.Logger
}

// proxyPrefix is where the SPA reaches the opaque upstream resource
// endpoints through the refresh-intercepting client.
const proxyPrefix = "/api/upstream"

// NewRouter builds the HTTP handler tree: auth endpoints, the session-gated
// JSON API, the guarded SPA page subtrees, and health checks, wrapped in
// logging and panic recovery.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	guardCfg := GuardConfig{
		CookieName:   services.Auth.CookieName,
		CookieDomain: services.HTTP.CookieDomain,
		SignInPath:   services.Auth.SignInPath,
		ExpiryGrace:  services.Auth.ExpiryGrace,
		Logger:       logger,
	}

	authHandlers := &AuthHandlers{
		Svc:          services.Sessions,
		CookieName:   services.Auth.CookieName,
		CookieDomain: services.HTTP.CookieDomain,
		SignInPath:   services.Auth.SignInPath,
		SessionTTL:   services.Auth.SessionTTL,
		ExpiryGrace:  services.Auth.ExpiryGrace,
		Logger:       logger,
	}
	navHandlers := &NavHandlers{Nav: services.Nav, Perms: services.Perms, Logger: logger}
	proxyHandlers := &ProxyHandlers{
		Client:       services.Upstream,
		Prefix:       proxyPrefix,
		CookieName:   services.Auth.CookieName,
		CookieDomain: services.HTTP.CookieDomain,
		Logger:       logger,
	}

	requireAuth := RequireAuth(services.Sessions, guardCfg)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", authHandlers.Login)
	mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/me", authHandlers.Me)

	mux.Handle("GET /api/navigation", requireAuth(http.HandlerFunc(navHandlers.Navigation)))
	mux.Handle("GET /api/permissions", requireAuth(http.HandlerFunc(navHandlers.Permissions)))
	mux.Handle(proxyPrefix+"/", requireAuth(http.HandlerFunc(proxyHandlers.Forward)))

	registerPageRoutes(mux, services.Sessions, guardCfg)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

// registerPageRoutes mounts the guarded SPA page subtrees. The role→path
// policy inside the guard decides who may land where; the admin subtree
// additionally pins its required role explicitly.
func registerPageRoutes(mux *http.ServeMux, sessions SessionResolver, cfg GuardConfig) {
	shell := http.HandlerFunc(appShellHandler)

	pages := []struct {
		prefix        string
		requiredRoles []domainauth.Role
	}{
		{prefix: "/dashboard"},
		{prefix: "/petugas"},
		{prefix: "/petugas-wbs"},
		{prefix: "/admin", requiredRoles: []domainauth.Role{domainauth.RoleAdmin}},
	}
	for _, page := range pages {
		pageCfg := cfg
		pageCfg.RequiredRoles = page.requiredRoles
		guarded := Guard(sessions, pageCfg)(shell)
		mux.Handle(page.prefix, guarded)
		mux.Handle(page.prefix+"/", guarded)
	}
}

// appShellHandler acknowledges an authorized page navigation. The SPA bundle
// itself is served by the static web tier; the gateway only decides whether
// the navigation may proceed.
func appShellHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, "<!doctype html><meta charset=\"utf-8\"><title>Lapor Kampus</title>\n"); err != nil {
		return
	}
}

// Server constructs the http.Server for the router with sane timeouts.
func Server(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
