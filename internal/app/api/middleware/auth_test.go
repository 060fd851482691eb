package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadfile/compliance/pkg/config"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminAuthMiddleware(cfg))
	r.GET("/secret", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestAdminAuthMiddleware(t *testing.T) {
	cfg := &config.Config{Admin: config.AdminConfig{JWTSecret: "test-secret"}}
	r := protectedRouter(cfg)

	adminClaims := jwt.MapClaims{"sub": "u1", "admin": true, "exp": time.Now().Add(time.Hour).Unix()}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", adminClaims), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, "test-secret", jwt.MapClaims{"admin": true, "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized},
		{"not admin", "Bearer " + signToken(t, "test-secret", jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}), http.StatusForbidden},
		{"valid admin", "Bearer " + signToken(t, "test-secret", adminClaims), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secret", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
