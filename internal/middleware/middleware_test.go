package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/osaka-airlines/internal/config"
	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/metrics"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/utils"
)

const secret = "test-secret"

func token(t *testing.T, userID uint64, role model.Role) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, userID, role, 15, time.Now())
	require.NoError(t, err)
	return at.Token
}

func whoami(c echo.Context) error {
	id, _ := UserID(c)
	return c.JSON(http.StatusOK, echo.Map{"user_id": id, "role": Role(c)})
}

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret))

	rec := serve(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/me", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := utils.NewAccessToken("other-secret", 3, model.RoleClient, 15, time.Now())
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/me", "Bearer "+other.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodGet, "/me", "Bearer "+token(t, 3, model.RoleClient))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":3,"role":"client"}`, rec.Body.String())
}

func TestOptionalJWT(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, OptionalJWT(secret))

	rec := serve(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":0,"role":""}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/me", "Bearer garbage")
	assert.JSONEq(t, `{"user_id":0,"role":""}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/me", "Bearer "+token(t, 9, model.RoleAdmin))
	assert.JSONEq(t, `{"user_id":9,"role":"admin"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/boards", whoami, JWTAuth(secret), RequireRole(model.RoleBoard, model.RoleAdmin))

	cases := []struct {
		role model.Role
		want int
	}{
		{model.RoleBoard, http.StatusOK},
		{model.RoleAdmin, http.StatusOK},
		{model.RoleFlight, http.StatusForbidden},
		{model.RoleClient, http.StatusForbidden},
	}
	for _, tc := range cases {
		rec := serve(e, http.MethodGet, "/boards", "Bearer "+token(t, 1, tc.role))
		assert.Equal(t, tc.want, rec.Code, tc.role)
	}
}

func TestRequestLoggerRecordsLatency(t *testing.T) {
	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "test")
	e := echo.New()
	e.Use(echomw.RequestID(), RequestLogger(logger.Nop(), m))
	e.GET("/flights/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot) })

	rec := serve(e, http.MethodGet, "/flights/7", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = serve(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestRecover(t *testing.T) {
	e := echo.New()
	e.Use(Recover(logger.Nop()))
	e.GET("/panic", func(c echo.Context) error { panic("kaboom") })

	rec := serve(e, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestCacheEntryRoundTrip(t *testing.T) {
	h := http.Header{}
	h.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	bs, err := encodeEntry(http.StatusOK, h, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, header, body, ok := decodeEntry(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, header.Get(echo.HeaderContentType))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodeEntry(bs[:6])
	assert.False(t, ok)
	_, _, _, ok = decodeEntry([]byte{0, 0, 0, 200, 0, 0, 0, 99, '{'})
	assert.False(t, ok)
}

func TestCacheKeyStrategies(t *testing.T) {
	e := echo.New()
	key := func(strategy, target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/flights/search")
		return cacheKey(config.CacheConfig{Prefix: "cache", KeyStrategy: strategy}, c)
	}

	assert.NotEqual(t, key("route_query", "/v1/flights/search?from=osaka"), key("route_query", "/v1/flights/search?from=tokyo"))
	assert.Equal(t, key("route", "/v1/flights/search?from=osaka"), key("route", "/v1/flights/search?from=tokyo"))
	assert.Contains(t, key("", "/x"), "cache:")
}

func TestDisabledCacheAndLimiterPassThrough(t *testing.T) {
	e := echo.New()
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
		ResponseCache(config.CacheConfig{Enabled: true}, nil, logger.Nop()),
		RateLimit(config.RateLimitConfig{Enabled: true}, nil, logger.Nop()))

	rec := serve(e, http.MethodGet, "/ok", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/tickets")

	cfg := config.RateLimitConfig{Prefix: "rl"}
	assert.Equal(t, "rl:ip:10.0.0.7:user:anon:route:POST /v1/tickets", rateKey(cfg, c))

	c.Set(ctxUserID, uint64(42))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:42", rateKey(cfg, c))
}
