package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testTokens() TokenService {
	return TokenService{Secret: []byte("test-secret"), Issuer: "mediascout-test", Duration: time.Hour}
}

func TestSignParseRoundtrip(t *testing.T) {
	ts := testTokens()

	token, exp, err := ts.Sign("admin")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "mediascout-test", claims.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := testTokens().Sign("admin")
	require.NoError(t, err)

	other := TokenService{Secret: []byte("different"), Issuer: "mediascout-test", Duration: time.Hour}
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func newAuthRouter(ts TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	protected := router.Group("/admin")
	protected.Use(AuthMiddleware(ts))
	protected.GET("/ping", func(c *gin.Context) {
		claims := MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	})
	return router
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	router := newAuthRouter(testTokens())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareRejectsGarbageToken(t *testing.T) {
	router := newAuthRouter(testTokens())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	ts := testTokens()
	router := newAuthRouter(ts)

	token, _, err := ts.Sign("admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(Credentials{Username: "admin", PasswordHash: string(hash)}, testTokens())
	h.RegisterRoutes(router.Group("/auth"))

	cases := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"username":"admin","password":"hunter22"}`, http.StatusOK},
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
		{"wrong user", `{"username":"root","password":"hunter22"}`, http.StatusUnauthorized},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(c.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)
			assert.Equal(t, c.want, w.Code)
		})
	}
}

func TestLoginDisabledWithoutHash(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(Credentials{Username: "admin"}, testTokens())
	h.RegisterRoutes(router.Group("/auth"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
