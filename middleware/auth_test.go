package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publicpulse/config"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: testSecret}
	r := gin.New()
	r.GET("/protected", AuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return r
}

func request(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"user_id": "admin-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	w := request(protectedRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin-1")
}

func TestAuthMiddlewareRejections(t *testing.T) {
	r := protectedRouter()

	testCases := []struct {
		name   string
		header string
	}{
		{name: "Missing header", header: ""},
		{name: "Not bearer", header: "Basic abc"},
		{name: "Garbage token", header: "Bearer not.a.jwt"},
		{
			name: "Expired token",
			header: "Bearer " + signToken(t, jwt.MapClaims{
				"user_id": "admin-1",
				"exp":     time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name: "Refresh token",
			header: "Bearer " + signToken(t, jwt.MapClaims{
				"user_id": "admin-1",
				"type":    "refresh",
				"exp":     time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "No user id claim",
			header: "Bearer " + signToken(t, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
	}

	for _, testCase := range testCases {
		w := request(r, testCase.header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, testCase.name)
	}
}
