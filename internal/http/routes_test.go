package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lapor-kampus/lapor-ui-api/config"
	"github.com/lapor-kampus/lapor-ui-api/internal/adapters/memstore"
	"github.com/lapor-kampus/lapor-ui-api/internal/service"
	"github.com/lapor-kampus/lapor-ui-api/internal/upstream"
)

// fakeComplaintBackend imitates the upstream REST backend: login, token
// refresh, the role ACL, and one resource endpoint that rejects stale tokens.
type fakeComplaintBackend struct {
	validToken   atomic.Value // string
	refreshCalls atomic.Int64
}

func newFakeComplaintBackend() *fakeComplaintBackend {
	b := &fakeComplaintBackend{}
	b.validToken.Store("access-1")
	return b
}

func (b *fakeComplaintBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "rahasia" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"NIM atau password salah"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"content": {
				"token": "access-1",
				"refresh_token": "refresh-1",
				"user": {
					"id": "u-1", "no_identitas": "2110511001", "name": "Budi Santoso",
					"user_level": {"id": "7", "name": "MAHASISWA"}
				}
			}
		}`)
	})
	mux.HandleFunc("POST /refresh-token", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		b.validToken.Store("access-2")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"token":"access-2","refresh_token":"refresh-2"}`)
	})
	mux.HandleFunc("GET /acl/7", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"content":{"userLevelId":"7","permissions":[]}}`)
	})
	mux.HandleFunc("GET /pelaporan", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+b.validToken.Load().(string) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"content":[{"id":1,"judul":"AC rusak"}]}`)
	})
	return mux
}

func gatewaySetup(t *testing.T) (http.Handler, *fakeComplaintBackend, *memstore.Store) {
	t.Helper()

	backend := newFakeComplaintBackend()
	backendSrv := httptest.NewServer(backend.handler())
	t.Cleanup(backendSrv.Close)

	store := memstore.New()
	client, err := upstream.NewClient(upstream.Options{
		BaseURL: backendSrv.URL,
		HTTP:    backendSrv.Client(),
		Store:   store,
	})
	require.NoError(t, err)

	sessions := service.NewSessionService(service.SessionServiceOptions{Store: store, API: client})
	perms := service.NewPermissionService(client, nil)
	nav := service.NewNavigationService(perms, nil)

	router := NewRouter(RouterServices{
		Sessions: sessions,
		Nav:      nav,
		Perms:    perms,
		Upstream: client,
		Auth: config.AuthConfig{
			StoreMode:   config.StoreModeMemory,
			CookieName:  "lapor_session",
			SessionTTL:  time.Hour,
			SignInPath:  "/",
			ExpiryGrace: 2 * time.Second,
		},
		HTTP:   config.HTTPConfig{},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return router, backend, store
}

func login(t *testing.T, router http.Handler) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"no_identitas":"2110511001","password":"rahasia"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "lapor_session" {
			return c
		}
	}
	t.Fatal("login response carries no session cookie")
	return nil
}

func TestRouter_LoginThenResourceCall(t *testing.T) {
	router, backend, _ := gatewaySetup(t)
	cookie := login(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/upstream/pelaporan", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"content":[{"id":1,"judul":"AC rusak"}]}`, rec.Body.String())
	assert.Zero(t, backend.refreshCalls.Load())
}

func TestRouter_StaleTokenRefreshedTransparently(t *testing.T) {
	router, backend, _ := gatewaySetup(t)
	cookie := login(t, router)

	// Invalidate the issued token server-side; the next resource call gets a
	// 401 the gateway must resolve with one refresh.
	backend.validToken.Store("access-2")

	req := httptest.NewRequest(http.MethodGet, "/api/upstream/pelaporan", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), backend.refreshCalls.Load())
}

func TestRouter_LoginRejected(t *testing.T) {
	router, _, store := gatewaySetup(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"no_identitas":"2110511001","password":"salah"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, store.Len())
}

func TestRouter_NavigationRequiresSession(t *testing.T) {
	router, _, _ := gatewaySetup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/navigation", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_NavigationForSignedInReporter(t *testing.T) {
	router, _, _ := gatewaySetup(t)
	cookie := login(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/navigation", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Groups []struct {
			Category string `json:"category"`
			Items    []struct {
				Href string `json:"href"`
			} `json:"items"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Groups)
	assert.Equal(t, "Dashboard", body.Groups[0].Category)
	assert.Equal(t, "/dashboard", body.Groups[0].Items[0].Href)
}

func TestRouter_PageGuardRedirectsWrongArea(t *testing.T) {
	router, _, _ := gatewaySetup(t)
	cookie := login(t, router) // MAHASISWA

	req := httptest.NewRequest(http.MethodGet, "/petugas/dashboard", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRouter_PageGuardAdmitsOwnArea(t *testing.T) {
	router, _, _ := gatewaySetup(t)
	cookie := login(t, router)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AdminSubtreeClosedToReporters(t *testing.T) {
	router, _, _ := gatewaySetup(t)
	cookie := login(t, router)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRouter_MeAndLogoutRoundTrip(t *testing.T) {
	router, _, store := gatewaySetup(t)
	cookie := login(t, router)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Budi Santoso")

	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, store.Len())

	// The purged session no longer resolves.
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())
}

func TestRouter_Healthz(t *testing.T) {
	router, _, _ := gatewaySetup(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
