package testutil

import (
	"github.com/google/uuid"

	"github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
)

// SessionBuilder provides a fluent interface for building auth.Session values for testing.
type SessionBuilder struct {
	sess auth.Session
}

// NewSession creates a new SessionBuilder with sensible defaults:
// a MAHASISWA profile with a fresh session ID and a refreshable token pair.
func NewSession() *SessionBuilder {
	return &SessionBuilder{
		sess: auth.Session{
			ID: uuid.NewString(),
			Credentials: auth.Credentials{
				AccessToken:  "access-" + uuid.NewString(),
				RefreshToken: "refresh-" + uuid.NewString(),
			},
			Profile: auth.Profile{
				ID:             uuid.NewString(),
				IdentityNumber: "2110511001",
				Name:           "Budi Santoso",
				Email:          "budi@example.ac.id",
				Role:           auth.RoleMahasiswa,
				RoleID:         "7",
			},
		},
	}
}

// WithID sets the session identifier.
func (b *SessionBuilder) WithID(id string) *SessionBuilder {
	b.sess.ID = id
	return b
}

// WithRole sets the profile role.
func (b *SessionBuilder) WithRole(role auth.Role) *SessionBuilder {
	b.sess.Profile.Role = role
	return b
}

// WithTokens sets the credential pair.
func (b *SessionBuilder) WithTokens(access, refresh string) *SessionBuilder {
	b.sess.Credentials = auth.Credentials{AccessToken: access, RefreshToken: refresh}
	return b
}

// WithoutRefreshToken clears the refresh token, making the session non-refreshable.
func (b *SessionBuilder) WithoutRefreshToken() *SessionBuilder {
	b.sess.Credentials.RefreshToken = ""
	return b
}

// WithName sets the profile display name.
func (b *SessionBuilder) WithName(name string) *SessionBuilder {
	b.sess.Profile.Name = name
	return b
}

// Build returns the constructed session.
func (b *SessionBuilder) Build() auth.Session {
	return b.sess
}
