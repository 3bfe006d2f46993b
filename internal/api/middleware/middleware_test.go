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
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ownerRouter(gateway bool) *gin.Engine {
	mode := AuthModeNone
	if gateway {
		mode = AuthModeGateway
	}
	return authRouter(mode, "")
}

func authRouter(mode, secret string) *gin.Engine {
	router := gin.New()
	router.Use(RequestTracking(), CORS(), Auth(mode, secret))
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, Owner(c))
	})
	return router
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		gateway    bool
		userID     string
		wantStatus int
		wantOwner  string
	}{
		{"no auth is anonymous", false, "", http.StatusOK, "anonymous"},
		{"no auth ignores gateway headers", false, "u-1", http.StatusOK, "anonymous"},
		{"gateway trusts the header", true, "u-1", http.StatusOK, "u-1"},
		{"gateway needs the header", true, "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.userID != "" {
				req.Header.Set("X-User-ID", tt.userID)
			}
			w := httptest.NewRecorder()
			ownerRouter(tt.gateway).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if tt.wantOwner != "" {
				assert.Equal(t, tt.wantOwner, w.Body.String())
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/whoami", nil)
	req.Header.Set("Origin", "https://studio.example")
	w := httptest.NewRecorder()
	ownerRouter(false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://studio.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverWithSentry(t *testing.T) {
	router := gin.New()
	router.Use(RecoverWithSentry(), RequestTracking())
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTAuth(t *testing.T) {
	valid := Claims{
		UserID: "u-42",
		Email:  "editor@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	subjectOnly := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u-7"}}

	tests := []struct {
		name       string
		secret     string
		header     func(t *testing.T) string
		wantStatus int
		wantOwner  string
	}{
		{
			name:       "valid token sets the owner",
			secret:     testSecret,
			header:     func(t *testing.T) string { return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), valid) },
			wantStatus: http.StatusOK,
			wantOwner:  "u-42",
		},
		{
			name:       "subject is the fallback owner",
			secret:     testSecret,
			header:     func(t *testing.T) string { return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), subjectOnly) },
			wantStatus: http.StatusOK,
			wantOwner:  "u-7",
		},
		{
			name:       "missing header",
			secret:     testSecret,
			header:     func(*testing.T) string { return "" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			secret:     testSecret,
			header:     func(*testing.T) string { return "Basic dXNlcjpwYXNz" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			secret:     testSecret,
			header:     func(t *testing.T) string { return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), valid) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired",
			secret:     testSecret,
			header:     func(t *testing.T) string { return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unsigned tokens are refused",
			secret:     testSecret,
			header:     func(t *testing.T) string { return "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "token without a user",
			secret:     testSecret,
			header:     func(t *testing.T) string { return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{}) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no secret configured",
			secret:     "",
			header:     func(t *testing.T) string { return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), valid) },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if h := tt.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			w := httptest.NewRecorder()
			authRouter(AuthModeJWT, tt.secret).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantOwner != "" {
				assert.Equal(t, tt.wantOwner, w.Body.String())
			}
		})
	}
}

func TestAuth_UnknownModeIsOpen(t *testing.T) {
	w := httptest.NewRecorder()
	authRouter("ldap", "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}
