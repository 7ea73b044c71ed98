package ports

// Package ports defines interfaces (hexagonal ports) for session and
// permission behavior. Implementations live in internal/adapters and
// internal/upstream; orchestration in internal/service.

import (
	"context"
	"errors"

	domainacl "github.com/lapor-kampus/lapor-ui-api/internal/domain/acl"
	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
)

// ErrSessionNotFound is returned by SessionStore implementations when no
// record exists for the given ID. Absence is a valid logged-out state, not
// a failure.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists and retrieves browser sessions holding the credential
// pair and cached profile. Save writes the whole record atomically: both
// tokens and the profile land together or not at all.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// ACLFetcher retrieves the permission list for a role from the upstream
// ACL endpoint. Implementations must not cache across invocations; callers
// that need freshness fetch on every use.
type ACLFetcher interface {
	FetchACL(ctx context.Context, sess domainauth.Session) (domainacl.PermissionSet, error)
}
