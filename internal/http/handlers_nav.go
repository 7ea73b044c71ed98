package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/lapor-kampus/lapor-ui-api/internal/domain/acl"
	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
	"github.com/lapor-kampus/lapor-ui-api/internal/domain/nav"
	apperrors "github.com/lapor-kampus/lapor-ui-api/internal/errors"
)

// NavigationBuilder is the slice of the navigation service the handler uses.
type NavigationBuilder interface {
	Build(ctx context.Context, sess domainauth.Session) []nav.Group
}

// PermissionResolver is the slice of the permission service the handler uses.
type PermissionResolver interface {
	Resolve(ctx context.Context, sess domainauth.Session) (acl.PermissionSet, error)
}

// NavHandlers serves the authorized navigation menu and the raw permission
// mapping to the SPA. Both require an authenticated session (RequireAuth).
type NavHandlers struct {
	Nav    NavigationBuilder
	Perms  PermissionResolver
	Logger *slog.Logger
}

func (h *NavHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Navigation handles GET /api/navigation.
// The menu is already fail-closed: while permissions are unresolved only the
// dashboard and account entries appear.
func (h *NavHandlers) Navigation(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	groups := h.Nav.Build(r.Context(), *sess)
	WriteJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// Permissions handles GET /api/permissions.
// A failed ACL fetch degrades to an empty, unresolved mapping instead of an
// error page; the SPA treats unresolved as deny-everything.
func (h *NavHandlers) Permissions(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	set, err := h.Perms.Resolve(r.Context(), *sess)
	if err != nil {
		if !apperrors.IsPermissionUnavailable(err) {
			h.logger().ErrorContext(r.Context(), "permission resolve failed", "error", err)
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"resolved":    false,
			"permissions": map[string][]string{},
		})
		return
	}

	out := make(map[string][]string, len(set))
	for subject, actions := range set {
		list := make([]string, 0, len(actions))
		for action := range actions {
			list = append(list, string(action))
		}
		sort.Strings(list)
		out[subject] = list
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"resolved":    true,
		"permissions": out,
	})
}
