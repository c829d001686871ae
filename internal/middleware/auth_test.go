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

	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

var testUser = models.SessionUser{ID: "test-user-id", Email: "test@example.com", Role: models.UserRoleUser}

func init() {
	SetJWTSecret("test-secret")
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(testUser, 1*time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.UserID)
	assert.Equal(t, testUser.Email, claims.Email)
	assert.Equal(t, models.UserRoleUser, claims.Role)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := GenerateToken(testUser, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	SetJWTSecret("other-secret")
	foreign, err := GenerateToken(testUser, time.Hour)
	SetJWTSecret("test-secret")
	require.NoError(t, err)
	_, err = ParseToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{
			name:           "Missing credentials",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid header format",
			header:         "InvalidToken",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Garbage bearer token",
			header:         "Bearer not.a.jwt",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			c.Request = req

			SessionAuth("session")(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestSessionAuthWithValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token, err := GenerateToken(testUser, 1*time.Hour)
	require.NoError(t, err)

	for _, viaCookie := range []bool{true, false} {
		router := gin.New()
		router.Use(SessionAuth("session"))
		router.GET("/test", func(c *gin.Context) {
			userID, exists := GetUserID(c)
			assert.True(t, exists)
			assert.Equal(t, testUser.ID, userID)

			user, ok := GetSessionUser(c)
			assert.True(t, ok)
			assert.Equal(t, testUser, user)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/test", nil)
		if viaCookie {
			req.AddCookie(&http.Cookie{Name: "session", Value: token})
		} else {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "cookie=%v", viaCookie)
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	admin := models.SessionUser{ID: "admin-id", Email: "admin@example.com", Role: models.UserRoleAdmin}

	tests := []struct {
		name   string
		user   models.SessionUser
		status int
	}{
		{"admin", admin, http.StatusOK},
		{"regular user", testUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.user, time.Hour)
			require.NoError(t, err)

			router := gin.New()
			router.GET("/admin", SessionAuth("session"), RequireAdmin(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}
