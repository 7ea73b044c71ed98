package service

import (
	"context"
	"log/slog"

	"github.com/lapor-kampus/lapor-ui-api/internal/domain/acl"
	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
	apperrors "github.com/lapor-kampus/lapor-ui-api/internal/errors"
	"github.com/lapor-kampus/lapor-ui-api/internal/ports"
)

// PermissionService resolves the permission set for a session's role.
// It carries no cross-request cache: callers that need freshness resolve on
// every use, and a nil PermissionSet always answers "denied" (fail closed).
type PermissionService struct {
	acl    ports.ACLFetcher
	logger *slog.Logger
}

// NewPermissionService constructs a new PermissionService.
func NewPermissionService(fetcher ports.ACLFetcher, logger *slog.Logger) *PermissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionService{acl: fetcher, logger: logger}
}

// Resolve fetches the role's permission list from the upstream ACL endpoint.
// A failed fetch returns a nil set together with a PermissionUnavailable
// error; the nil set denies everything, so callers degrade safely.
func (s *PermissionService) Resolve(ctx context.Context, sess domainauth.Session) (acl.PermissionSet, error) {
	set, err := s.acl.FetchACL(ctx, sess)
	if err != nil {
		if apperrors.IsPermissionUnavailable(err) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodePermissionUnavailable, "resolve permissions")
	}
	return set, nil
}
