package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombooking/config"
	"roombooking/infras/jwt"
	jwtMocks "roombooking/infras/jwt/mocks"
	otelMocks "roombooking/infras/otel/mocks"
	authMocks "roombooking/internal/domains/auth/service/mocks"
	"roombooking/permissions"
	"roombooking/shared"
	"roombooking/shared/cache"
	"roombooking/shared/constant"
	"roombooking/transport/http/middleware"
)

var table = &permissions.PermissionData{
	Endpoints: []permissions.Permission{
		{Path: "/api/auth/login", Method: http.MethodPost, Skip: true},
		{Path: "/api/users/{id}", Method: http.MethodDelete, Permissions: []string{constant.RoleAdmin}},
	},
}

type authDeps struct {
	jwt  *jwtMocks.MockJWT
	auth *authMocks.MockAuth
	cfg  *config.Config
	mux  *chi.Mux
}

// setupAuth mounts Auth and RBAC on a router whose handlers echo the caller id.
func setupAuth(t *testing.T) authDeps {
	t.Helper()

	ctrl := gomock.NewController(t)

	d := authDeps{
		jwt:  jwtMocks.NewMockJWT(ctrl),
		auth: authMocks.NewMockAuth(ctrl),
		cfg:  &config.Config{},
		mux:  chi.NewRouter(),
	}
	d.cfg.App.APIKey = "internal-key"

	mw := middleware.NewAuthRoleMiddleware(d.jwt, d.auth, otelMocks.NewOtel(), table, d.cfg)

	echo := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", shared.GetUserRole(r.Context()))
		w.WriteHeader(http.StatusOK)
	}

	d.mux.Use(mw.APIKey, mw.Auth, mw.RBAC)
	d.mux.Post("/api/auth/login", echo)
	d.mux.Get("/api/users/{id}", echo)
	d.mux.Delete("/api/users/{id}", echo)

	return d
}

func claims(role string) *jwt.Claims {
	return &jwt.Claims{
		UserID:  7,
		Email:   "ana@example.com",
		Role:    role,
		TokenID: "tok-1",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func serve(mux http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	return rec
}

func TestAuth(t *testing.T) {
	bearer := map[string]string{constant.RequestHeaderAuthorization: "Bearer token"}

	t.Run("skipped route needs no token", func(t *testing.T) {
		d := setupAuth(t)

		rec := serve(d.mux, http.MethodPost, "/api/auth/login", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		d := setupAuth(t)

		rec := serve(d.mux, http.MethodGet, "/api/users/1", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Missing authorization header")
	})

	t.Run("malformed header", func(t *testing.T) {
		d := setupAuth(t)

		rec := serve(d.mux, http.MethodGet, "/api/users/1", map[string]string{constant.RequestHeaderAuthorization: "Token x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		d := setupAuth(t)
		d.jwt.EXPECT().ValidateToken("token", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)

		rec := serve(d.mux, http.MethodGet, "/api/users/1", bearer)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Token has expired")
	})

	t.Run("revoked token", func(t *testing.T) {
		d := setupAuth(t)
		d.jwt.EXPECT().ValidateToken("token", jwt.AccessToken).Return(claims(constant.RoleUser), nil)
		d.auth.EXPECT().IsRevoked(gomock.Any(), "tok-1").Return(true, nil)

		rec := serve(d.mux, http.MethodGet, "/api/users/1", bearer)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "revoked")
	})

	t.Run("revocation store down", func(t *testing.T) {
		d := setupAuth(t)
		d.jwt.EXPECT().ValidateToken("token", jwt.AccessToken).Return(claims(constant.RoleUser), nil)
		d.auth.EXPECT().IsRevoked(gomock.Any(), "tok-1").Return(false, errors.New("redis down"))

		rec := serve(d.mux, http.MethodGet, "/api/users/1", bearer)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("valid token reaches handler", func(t *testing.T) {
		d := setupAuth(t)
		d.jwt.EXPECT().ValidateToken("token", jwt.AccessToken).Return(claims(constant.RoleUser), nil)
		d.auth.EXPECT().IsRevoked(gomock.Any(), "tok-1").Return(false, nil)

		rec := serve(d.mux, http.MethodGet, "/api/users/1", bearer)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, constant.RoleUser, rec.Header().Get("X-User"))
	})
}

func TestRBAC(t *testing.T) {
	bearer := map[string]string{constant.RequestHeaderAuthorization: "Bearer token"}

	t.Run("user refused on admin route", func(t *testing.T) {
		d := setupAuth(t)
		d.jwt.EXPECT().ValidateToken("token", jwt.AccessToken).Return(claims(constant.RoleUser), nil)
		d.auth.EXPECT().IsRevoked(gomock.Any(), "tok-1").Return(false, nil)

		rec := serve(d.mux, http.MethodDelete, "/api/users/1", bearer)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin allowed", func(t *testing.T) {
		d := setupAuth(t)
		d.jwt.EXPECT().ValidateToken("token", jwt.AccessToken).Return(claims(constant.RoleAdmin), nil)
		d.auth.EXPECT().IsRevoked(gomock.Any(), "tok-1").Return(false, nil)

		rec := serve(d.mux, http.MethodDelete, "/api/users/1", bearer)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAPIKey(t *testing.T) {
	t.Run("valid key bypasses token checks", func(t *testing.T) {
		d := setupAuth(t)

		rec := serve(d.mux, http.MethodDelete, "/api/users/1", map[string]string{constant.RequestHeaderAPIKey: "internal-key"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, constant.RoleAdmin, rec.Header().Get("X-User"))
	})

	t.Run("wrong key", func(t *testing.T) {
		d := setupAuth(t)

		rec := serve(d.mux, http.MethodDelete, "/api/users/1", map[string]string{constant.RequestHeaderAPIKey: "nope"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	otel := otelMocks.NewOtel()
	app := middleware.NewAppMiddleware(otel, cfg, cache.NewRedisCache(client, otel))

	handler := app.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	headers := map[string]string{constant.RequestHeaderUserAgent: "test", constant.RequestHeaderRealIP: "10.0.0.1"}

	rec := serve(handler, http.MethodGet, "/", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(constant.RequestHeaderRateLimitRemaining))

	rec = serve(handler, http.MethodGet, "/", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get(constant.RequestHeaderRateLimitRemaining))

	rec = serve(handler, http.MethodGet, "/", headers)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	other := map[string]string{constant.RequestHeaderUserAgent: "test", constant.RequestHeaderRealIP: "10.0.0.2"}
	rec = serve(handler, http.MethodGet, "/", other)
	assert.Equal(t, http.StatusOK, rec.Code)

	server.FastForward(61 * time.Second)

	rec = serve(handler, http.MethodGet, "/", headers)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTracing(t *testing.T) {
	otel := otelMocks.NewOtel()
	app := middleware.NewAppMiddleware(otel, &config.Config{}, nil)

	mux := chi.NewRouter()
	mux.Use(app.Tracing)
	mux.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := serve(mux, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
