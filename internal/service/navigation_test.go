package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lapor-kampus/lapor-ui-api/internal/domain/acl"
	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
	"github.com/lapor-kampus/lapor-ui-api/internal/domain/nav"
	"github.com/lapor-kampus/lapor-ui-api/internal/testutil"
)

func navKeys(groups []nav.Group) []string {
	var keys []string
	for _, g := range groups {
		for _, item := range g.Items {
			keys = append(keys, item.Key)
		}
	}
	return keys
}

func TestNavigationService_Build_WithPermissions(t *testing.T) {
	fetcher := &fakeACLFetcher{set: acl.Build([]acl.Entry{
		{Subject: "UNIT", Actions: []string{"read", "create", "update", "delete"}},
	})}
	svc := NewNavigationService(NewPermissionService(fetcher, nil), nil)

	sess := testutil.NewSession().WithRole(domainauth.RoleAdmin).Build()
	groups := svc.Build(context.Background(), sess)

	keys := navKeys(groups)
	assert.Contains(t, keys, "dashboard")
	assert.Contains(t, keys, "unit")
	assert.Contains(t, keys, "akun-admin")
}

func TestNavigationService_Build_ACLFailureServesMinimalMenu(t *testing.T) {
	fetcher := &fakeACLFetcher{err: errors.New("acl down")}
	svc := NewNavigationService(NewPermissionService(fetcher, nil), nil)

	sess := testutil.NewSession().WithRole(domainauth.RoleAdmin).Build()
	groups := svc.Build(context.Background(), sess)

	// Never the full catalog: dashboard and account only.
	assert.Equal(t, []string{"dashboard", "akun-admin"}, navKeys(groups))
}

func TestNavigationService_Build_ReporterMenu(t *testing.T) {
	fetcher := &fakeACLFetcher{set: acl.Build(nil)}
	svc := NewNavigationService(NewPermissionService(fetcher, nil), nil)

	sess := testutil.NewSession().WithRole(domainauth.RoleMahasiswa).Build()
	groups := svc.Build(context.Background(), sess)

	require.NotEmpty(t, groups)
	assert.Equal(t, []string{"dashboard", "akun"}, navKeys(groups))
}
