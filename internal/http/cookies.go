package httpx

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

// NoticeCookieName carries the one-time user-visible notice the SPA renders
// as a toast after a redirect. The SPA deletes the cookie after reading it,
// so each redirect produces exactly one notice.
const NoticeCookieName = "lapor_notice"

// Notice is the transient notification payload for session-expiry and
// access-denial redirects.
type Notice struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// GraceMS tells the SPA how long to keep the notice visible before
	// navigating away.
	GraceMS int64 `json:"grace_ms,omitempty"`
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// setSessionCookie writes the session ID cookie.
func setSessionCookie(w http.ResponseWriter, r *http.Request, name, domain, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// clearCookie expires a cookie immediately.
func clearCookie(w http.ResponseWriter, r *http.Request, name, domain string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// setNotice writes the one-time notice cookie. Unlike the session cookie it
// is readable by the SPA, which consumes and deletes it.
func setNotice(w http.ResponseWriter, r *http.Request, domain string, n Notice) {
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     NoticeCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		Domain:   domain,
		HttpOnly: false,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   30,
	})
}
