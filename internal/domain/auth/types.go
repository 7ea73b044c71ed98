package auth

// Package auth contains domain-level types for sessions, credentials, and roles.
// It is pure and free of framework/adapter concerns.

// Role represents an application role as reported by the upstream backend.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin              Role = "ADMIN"
	RolePetugas            Role = "PETUGAS"
	RolePetugasSuper       Role = "PETUGAS_SUPER"
	RoleKepalaPetugasUnit  Role = "KEPALA_PETUGAS_UNIT"
	RolePetugasWBS         Role = "PETUGAS_WBS"
	RoleKepalaWBS          Role = "KEPALA_WBS"
	RoleMahasiswa          Role = "MAHASISWA"
	RoleDosen              Role = "DOSEN"
	RoleTenagaKependidikan Role = "TENAGA_KEPENDIDIKAN"
)

// Known reports whether r is one of the closed set of application roles.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RolePetugas, RolePetugasSuper, RoleKepalaPetugasUnit,
		RolePetugasWBS, RoleKepalaWBS, RoleMahasiswa, RoleDosen, RoleTenagaKependidikan:
		return true
	}
	return false
}

// IsReporter reports whether the role belongs to the complaint-filing side
// (students, lecturers, staff) rather than the officer/admin side.
func (r Role) IsReporter() bool {
	switch r {
	case RoleMahasiswa, RoleDosen, RoleTenagaKependidikan:
		return true
	}
	return false
}

// Profile is the cached user identity returned by the upstream backend.
// It is owned by the credential store and read-only everywhere else.
type Profile struct {
	ID             string `json:"id"`
	IdentityNumber string `json:"identity_number"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Role           Role   `json:"role"`
	RoleID         string `json:"role_id"`
}

// Credentials is the bearer/refresh token pair for a session.
// Invariant: both tokens present or the session is not refreshable;
// a lone access token is treated as not-authenticated for refresh purposes.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refreshable reports whether the pair can be rotated.
func (c Credentials) Refreshable() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// Session is the record the gateway persists per browser session.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID          string      `json:"id"`
	Credentials Credentials `json:"credentials"`
	Profile     Profile     `json:"profile"`
}

// Role returns the role of the session's profile.
func (s Session) Role() Role { return s.Profile.Role }
