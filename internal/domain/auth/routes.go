package auth

import "strings"

// landing is the single authoritative role -> landing-path table.
// Every "where does this role belong" decision (route guard, navigation
// dashboard entry, post-login redirect) consults this table; roles absent
// from it get no dashboard destination.
var landing = map[Role]string{
	RoleAdmin:              "/admin/dashboard",
	RolePetugas:            "/petugas/dashboard",
	RolePetugasSuper:       "/petugas/dashboard",
	RoleKepalaPetugasUnit:  "/petugas/dashboard",
	RolePetugasWBS:         "/petugas-wbs/dashboard",
	RoleKepalaWBS:          "/petugas-wbs/dashboard",
	RoleMahasiswa:          "/dashboard",
	RoleDosen:              "/dashboard",
	RoleTenagaKependidikan: "/dashboard",
}

// pathPrefixes maps each role to the path prefixes it may visit.
// A path outside every prefix for the role redirects to the landing path.
var pathPrefixes = map[Role][]string{
	RoleAdmin:              {"/admin"},
	RolePetugas:            {"/petugas"},
	RolePetugasSuper:       {"/petugas"},
	RoleKepalaPetugasUnit:  {"/petugas"},
	RolePetugasWBS:         {"/petugas-wbs"},
	RoleKepalaWBS:          {"/petugas-wbs"},
	RoleMahasiswa:          {"/dashboard"},
	RoleDosen:              {"/dashboard"},
	RoleTenagaKependidikan: {"/dashboard"},
}

// Landing returns the landing dashboard path for a role.
// ok is false for roles with no dashboard destination.
func Landing(r Role) (path string, ok bool) {
	path, ok = landing[r]
	return path, ok
}

// AllowsPath reports whether the role may visit the given path.
// Unknown roles are allowed nowhere (fail closed).
func AllowsPath(r Role, path string) bool {
	for _, prefix := range pathPrefixes[r] {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
