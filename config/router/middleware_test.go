package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS_AllowsListedOriginOnly(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://trustlink.example, https://admin.trustlink.example")
	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodOptions, "/api/waitlist", nil)
	req.Header.Set("Origin", "https://admin.trustlink.example")
	w := serve(rs, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.trustlink.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "x-admin-key")
	assert.Equal(t, "POST, OPTIONS, GET, PATCH", w.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(rs, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_UnsetDeniesCrossOrigin(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGIN", "")
	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("Origin", "https://trustlink.example")
	w := serve(rs, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	t.Setenv("HSTS_ENABLED", "true")
	t.Setenv("HSTS_MAX_AGE", "600")
	t.Setenv("HSTS_INCLUDE_SUBDOMAINS", "false")
	rs := newTestRouterService(t)
	mountTestController(rs)

	w := serve(rs, httptest.NewRequest(http.MethodGet, "/ip", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w = serve(rs, req)
	assert.Equal(t, "max-age=600", w.Header().Get("Strict-Transport-Security"))
}

func TestLoadMiddlewareConfig_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "MAX_REQUEST_BODY_BYTES", "CORS_ALLOWED_ORIGIN", "HSTS_ENABLED", "HSTS_MAX_AGE", "HSTS_INCLUDE_SUBDOMAINS"} {
		t.Setenv(key, "")
	}

	cfg := loadMiddlewareConfig(0)

	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.HSTS.Enabled)
	assert.Equal(t, "max-age=31536000; includeSubDomains", cfg.HSTS.headerValue())

	t.Setenv("APP_ENV", "Production")
	assert.True(t, loadMiddlewareConfig(0).HSTS.Enabled)
}

func TestParseTrustedProxies(t *testing.T) {
	assert.Nil(t, parseTrustedProxies(nil))
	assert.Equal(t, []string{"0.0.0.0/0", "::/0"}, parseTrustedProxies([]string{"10.0.0.1", "*"}))
	assert.Equal(t, []string{"10.0.0.0/8"}, parseTrustedProxies([]string{"10.0.0.0/8"}))
}
