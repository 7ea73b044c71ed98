package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
	apperrors "github.com/lapor-kampus/lapor-ui-api/internal/errors"
)

// AuthServiceInterface defines the session operations the auth handlers use.
type AuthServiceInterface interface {
	SignIn(ctx context.Context, identityNumber, password string) (domainauth.Session, error)
	CurrentUser(ctx context.Context, sessionID string) (*domainauth.Session, error)
	SignOut(ctx context.Context, sessionID string)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieName   string
	CookieDomain string
	SignInPath   string
	SessionTTL   time.Duration
	ExpiryGrace  time.Duration
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginPayload struct {
	NoIdentitas string `json:"no_identitas"`
	Password    string `json:"password"`
}

type userView struct {
	ID             string          `json:"id"`
	IdentityNumber string          `json:"no_identitas"`
	Name           string          `json:"name"`
	Email          string          `json:"email,omitempty"`
	Role           domainauth.Role `json:"role"`
}

func viewOf(p domainauth.Profile) userView {
	return userView{
		ID:             p.ID,
		IdentityNumber: p.IdentityNumber,
		Name:           p.Name,
		Email:          p.Email,
		Role:           p.Role,
	}
}

// Login handles the credential exchange endpoint.
// POST /auth/login {"no_identitas","password"}.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	sess, err := h.Svc.SignIn(r.Context(), payload.NoIdentitas, payload.Password)
	if err != nil {
		switch {
		case apperrors.IsInvalidCredentials(err):
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: string(apperrors.ErrCodeInvalidCredentials),
				Err:     err,
			})
		case apperrors.IsValidation(err):
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: string(apperrors.ErrCodeValidation),
				Err:     err,
			})
		default:
			h.logger().ErrorContext(r.Context(), "sign-in failed", "error", err)
			WriteError(w, ErrorParams{
				Code:    http.StatusBadGateway,
				ErrCode: string(apperrors.ErrCodeUpstream),
				Err:     errors.New("sign-in is temporarily unavailable"),
			})
		}
		return
	}

	setSessionCookie(w, r, h.CookieName, h.CookieDomain, sess.ID, int(h.SessionTTL.Seconds()))

	redirect, _ := domainauth.Landing(sess.Role())
	WriteJSON(w, http.StatusOK, map[string]any{
		"user":     viewOf(sess.Profile),
		"redirect": redirect,
	})
}

// Logout handles the sign-out endpoint. POST /auth/logout.
// It always succeeds: the store purge is unconditional and no upstream call
// is required.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.CookieName); err == nil {
		h.Svc.SignOut(r.Context(), cookie.Value)
	}
	clearCookie(w, r, h.CookieName, h.CookieDomain)

	WriteJSON(w, http.StatusOK, map[string]any{"redirect": h.SignInPath})
}

// Me handles the who-am-I endpoint. GET /auth/me.
// "No user" is a valid answer, not an error; an expired session purges the
// store and tells the SPA to show a notice, wait out the grace delay, and
// then navigate to sign-in.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.CookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}

	sess, err := h.Svc.CurrentUser(r.Context(), cookie.Value)
	if err != nil {
		if apperrors.IsSessionExpired(err) {
			clearCookie(w, r, h.CookieName, h.CookieDomain)
			WriteJSON(w, http.StatusUnauthorized, map[string]any{
				"error": string(apperrors.ErrCodeSessionExpired),
				"notice": Notice{
					Code:    string(apperrors.ErrCodeSessionExpired),
					Message: "Sesi Anda telah berakhir, silakan masuk kembali.",
					GraceMS: h.ExpiryGrace.Milliseconds(),
				},
				"redirect": h.SignInPath,
			})
			return
		}
		h.logger().ErrorContext(r.Context(), "current user lookup failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: string(apperrors.ErrCodeInternal),
			Err:     errors.New("session lookup failed"),
		})
		return
	}
	if sess == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": viewOf(sess.Profile)})
}
