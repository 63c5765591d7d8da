package middleware_test

import (
	"courtside/config"
	"courtside/infras/jwt"
	jwtMocks "courtside/infras/jwt/mocks"
	"courtside/infras/otel/mocks"
	"courtside/permissions"
	"courtside/shared"
	"courtside/shared/constant"
	"courtside/transport/http/middleware"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const internalKey = "internal-key"

func newAuthRouter(t *testing.T, validator jwt.JWT) (*chi.Mux, *shared.Caller) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.APIKey = internalKey

	mw := middleware.NewAuthRoleMiddleware(validator, mocks.NewOtel(), permissions.Get(), cfg)

	seen := &shared.Caller{}
	ok := func(w http.ResponseWriter, r *http.Request) {
		*seen, _ = shared.CallerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}

	router := chi.NewRouter()
	router.Use(mw.APIKey, mw.Auth, mw.RBAC)
	router.Post("/v1/bookings", ok)
	router.Patch("/v1/bookings/{id}/confirm", ok)
	router.Patch("/v1/bookings/{id}/cancel", ok)

	return router, seen
}

func claims(userID, role string) *jwt.Claims {
	return &jwt.Claims{UserID: userID, Email: "someone@example.com", Role: role, TokenID: "tid"}
}

func TestAuthRole(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		headers    map[string]string
		setup      func(m *jwtMocks.MockJWT)
		wantStatus int
		wantCaller shared.Caller
	}{
		{
			name:       "anonymous create booking",
			method:     http.MethodPost,
			path:       "/v1/bookings",
			wantStatus: http.StatusNoContent,
		},
		{
			name:    "optional token is still read on public endpoints",
			method:  http.MethodPost,
			path:    "/v1/bookings",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer customer-token"},
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("customer-token", jwt.AccessToken).Return(claims("21", constant.RoleUser), nil)
			},
			wantStatus: http.StatusNoContent,
			wantCaller: shared.Caller{UserID: 21, Role: constant.RoleUser},
		},
		{
			name:       "protected endpoint without token",
			method:     http.MethodPatch,
			path:       "/v1/bookings/3/confirm",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			method:     http.MethodPatch,
			path:       "/v1/bookings/3/confirm",
			headers:    map[string]string{constant.RequestHeaderAuthorization: "Token abc"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "expired token",
			method:  http.MethodPatch,
			path:    "/v1/bookings/3/confirm",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer old"},
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("old", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "empty claims",
			method:  http.MethodPatch,
			path:    "/v1/bookings/3/confirm",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer blank"},
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("blank", jwt.AccessToken).Return(claims("", ""), nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "customer cannot confirm",
			method:  http.MethodPatch,
			path:    "/v1/bookings/3/confirm",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer customer-token"},
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("customer-token", jwt.AccessToken).Return(claims("21", constant.RoleUser), nil)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:    "owner confirms",
			method:  http.MethodPatch,
			path:    "/v1/bookings/3/confirm",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer owner-token"},
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("owner-token", jwt.AccessToken).Return(claims("5", constant.RoleOwner), nil)
			},
			wantStatus: http.StatusNoContent,
			wantCaller: shared.Caller{UserID: 5, Role: constant.RoleOwner},
		},
		{
			name:    "customer cancels",
			method:  http.MethodPatch,
			path:    "/v1/bookings/3/cancel",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer customer-token"},
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("customer-token", jwt.AccessToken).Return(claims("21", constant.RoleUser), nil)
			},
			wantStatus: http.StatusNoContent,
			wantCaller: shared.Caller{UserID: 21, Role: constant.RoleUser},
		},
		{
			name:       "internal key bypasses token checks",
			method:     http.MethodPatch,
			path:       "/v1/bookings/3/confirm",
			headers:    map[string]string{constant.RequestHeaderAPIKey: internalKey},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "wrong internal key",
			method:     http.MethodPatch,
			path:       "/v1/bookings/3/confirm",
			headers:    map[string]string{constant.RequestHeaderAPIKey: "guess"},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := jwtMocks.NewMockJWT(gomock.NewController(t))
			if tt.setup != nil {
				tt.setup(validator)
			}

			router, seen := newAuthRouter(t, validator)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCaller, *seen)
		})
	}
}
