package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, sub, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub, "role": role})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireRole(roles...), func(c *gin.Context) {
		id := CurrentUserID(c)
		if id == nil {
			c.String(http.StatusOK, "none")
			return
		}
		c.String(http.StatusOK, id.String())
	})
	return r
}

func TestRequireRole(t *testing.T) {
	SetJWTSecret("test-secret")
	t.Cleanup(func() { SetJWTSecret("default_super_secret_key") })

	userID := uuid.New()
	r := newRouter("admin", "manager")

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad format", "Token abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + signToken(t, "other", userID.String(), "admin"), http.StatusUnauthorized},
		{"role not allowed", "Bearer " + signToken(t, "test-secret", userID.String(), "staff"), http.StatusForbidden},
		{"allowed", "Bearer " + signToken(t, "test-secret", userID.String(), "manager"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}

func TestParseTokenRejectsMissingRole(t *testing.T) {
	SetJWTSecret("test-secret")
	t.Cleanup(func() { SetJWTSecret("default_super_secret_key") })

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseToken(s)
	assert.Error(t, err)
}
