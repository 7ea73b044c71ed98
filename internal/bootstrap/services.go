package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/lapor-kampus/lapor-ui-api/config"
	"github.com/lapor-kampus/lapor-ui-api/internal/adapters/memstore"
	redisadapter "github.com/lapor-kampus/lapor-ui-api/internal/adapters/redis"
	"github.com/lapor-kampus/lapor-ui-api/internal/observability/statsd"
	"github.com/lapor-kampus/lapor-ui-api/internal/ports"
	"github.com/lapor-kampus/lapor-ui-api/internal/service"
	"github.com/lapor-kampus/lapor-ui-api/internal/upstream"
)

// ServiceDeps groups external dependencies for service construction.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds the wired application services.
type ServiceContainer struct {
	Store    ports.SessionStore
	Upstream *upstream.Client
	Sessions *service.SessionService
	Perms    *service.PermissionService
	Nav      *service.NavigationService
	Metrics  *statsd.Client
}

// BuildServices wires the credential store, the refresh-intercepting
// upstream client, and the session/permission/navigation services.
func BuildServices(deps *ServiceDeps) (*ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  "lapor_ui_api",
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create statsd client: %w", err)
	}

	store, err := buildSessionStore(cfg, deps.RedisClient, logger)
	if err != nil {
		return nil, err
	}

	upstreamClient, err := upstream.NewClient(upstream.Options{
		BaseURL: cfg.Upstream.BaseURL,
		HTTP:    &http.Client{Timeout: cfg.Upstream.Timeout},
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}

	sessions := service.NewSessionService(service.SessionServiceOptions{
		Store:   store,
		API:     upstreamClient,
		Logger:  logger,
		Metrics: metrics,
	})
	perms := service.NewPermissionService(upstreamClient, logger)
	nav := service.NewNavigationService(perms, logger)

	return &ServiceContainer{
		Store:    store,
		Upstream: upstreamClient,
		Sessions: sessions,
		Perms:    perms,
		Nav:      nav,
		Metrics:  metrics,
	}, nil
}

// buildSessionStore selects the credential store backend from config.
//
//nolint:ireturn // the store port keeps redis/memory selection flexible.
func buildSessionStore(
	cfg *config.AppConfig,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
) (ports.SessionStore, error) {
	switch cfg.Auth.StoreMode {
	case config.StoreModeMemory:
		logger.Warn("using in-memory session store; sessions will not survive restarts")
		return memstore.New(), nil

	case config.StoreModeRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("session store mode %q requires a redis client", cfg.Auth.StoreMode)
		}
		return redisadapter.NewSessionStore(redisClient, cfg.Auth.SessionTTL), nil

	default:
		return nil, fmt.Errorf("unknown session store mode %q", cfg.Auth.StoreMode)
	}
}
