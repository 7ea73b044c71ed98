package service

import (
	"context"
	"log/slog"

	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
	"github.com/lapor-kampus/lapor-ui-api/internal/domain/nav"
)

// NavigationService produces the category-grouped menu the session may see.
type NavigationService struct {
	perms  *PermissionService
	logger *slog.Logger
}

// NewNavigationService constructs a new NavigationService.
func NewNavigationService(perms *PermissionService, logger *slog.Logger) *NavigationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NavigationService{perms: perms, logger: logger}
}

// Build resolves permissions for the session and filters the static catalog.
// When the permission fetch fails the catalog is filtered against a nil set,
// which yields the minimal safe menu (dashboard and account entries only) —
// never the full catalog.
func (s *NavigationService) Build(ctx context.Context, sess domainauth.Session) []nav.Group {
	perms, err := s.perms.Resolve(ctx, sess)
	if err != nil {
		s.logger.WarnContext(ctx, "permission resolve failed, serving minimal menu",
			"role", sess.Role(), "error", err)
		perms = nil
	}
	return nav.Authorize(sess.Role(), perms)
}
