package httpx

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/lapor-kampus/lapor-ui-api/internal/errors"
	"github.com/lapor-kampus/lapor-ui-api/internal/upstream"
)

// maxProxyBody bounds buffered request bodies; resource payloads (complaint
// forms, small attachments) stay well under this.
const maxProxyBody = 10 << 20

// hopHeaders are stripped in both directions per RFC 9110.
var hopHeaders = []string{
	"Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
	"Te", "Trailer", "Transfer-Encoding", "Upgrade",
}

// ProxyHandlers forwards opaque resource calls (/pelaporan, /units,
// /kategori, /users, /notification, ...) to the upstream backend through the
// refresh-intercepting client. Non-401 upstream responses pass through
// byte-for-byte; a dead session yields a 401 the SPA converts into a
// sign-in redirect.
type ProxyHandlers struct {
	Client       *upstream.Client
	Prefix       string
	CookieName   string
	CookieDomain string
	Logger       *slog.Logger
}

func (h *ProxyHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Forward handles every method under the proxy prefix.
func (h *ProxyHandlers) Forward(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	path := strings.TrimPrefix(r.URL.Path, h.Prefix)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBody+1))
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: string(apperrors.ErrCodeValidation),
			Err:     errors.New("unreadable request body"),
		})
		return
	}
	if len(body) > maxProxyBody {
		WriteError(w, ErrorParams{
			Code:    http.StatusRequestEntityTooLarge,
			ErrCode: string(apperrors.ErrCodeValidation),
			Err:     errors.New("request body too large"),
		})
		return
	}

	header := r.Header.Clone()
	for _, k := range hopHeaders {
		header.Del(k)
	}
	// The client attaches its own bearer token.
	header.Del("Authorization")
	header.Del("Cookie")

	resp, err := h.Client.Do(r.Context(), sess.ID, upstream.Request{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.Query(),
		Header: header,
		Body:   body,
	})
	if err != nil {
		if apperrors.IsSessionExpired(err) {
			clearCookie(w, r, h.CookieName, h.CookieDomain)
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: string(apperrors.ErrCodeSessionExpired),
				Err:     errors.New("session expired"),
			})
			return
		}
		h.logger().ErrorContext(r.Context(), "upstream call failed",
			"method", r.Method, "path", path, "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusBadGateway,
			ErrCode: string(apperrors.ErrCodeUpstream),
			Err:     errors.New("upstream request failed"),
		})
		return
	}
	defer func() { _ = resp.Body.Close() }()

	out := w.Header()
	for k, vs := range resp.Header {
		if isHopHeader(k) {
			continue
		}
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, copyErr := io.Copy(w, resp.Body); copyErr != nil {
		// The client went away mid-stream; nothing left to do.
		return
	}
}

func isHopHeader(name string) bool {
	for _, h := range hopHeaders {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}
