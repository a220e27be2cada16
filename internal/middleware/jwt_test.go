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

	"github.com/prepdeck/study-planner-api/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims models.JWTClaims, secret string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedRouter(validator *TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWT(validator))
	r.GET("/me", func(c *gin.Context) {
		value, _ := c.Get(ContextUserKey)
		claims := value.(*models.JWTClaims)
		c.String(http.StatusOK, claims.StudentID)
	})
	return r
}

func TestTokenValidatorRoundTrip(t *testing.T) {
	validator := NewTokenValidator(testSecret)
	signed := signToken(t, models.JWTClaims{
		StudentID: "student-1",
		Email:     "ines@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	claims, err := validator.Validate(signed)

	require.NoError(t, err)
	assert.Equal(t, "student-1", claims.StudentID)
	assert.Equal(t, "ines@example.com", claims.Email)
}

func TestTokenValidatorRejectsWrongSecret(t *testing.T) {
	validator := NewTokenValidator(testSecret)
	signed := signToken(t, models.JWTClaims{StudentID: "student-1"}, "other-secret")

	_, err := validator.Validate(signed)

	assert.Error(t, err)
}

func TestTokenValidatorRejectsExpiredToken(t *testing.T) {
	validator := NewTokenValidator(testSecret)
	signed := signToken(t, models.JWTClaims{
		StudentID: "student-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}, testSecret)

	_, err := validator.Validate(signed)

	assert.Error(t, err)
}

func TestJWTMiddlewarePassesClaimsThrough(t *testing.T) {
	validator := NewTokenValidator(testSecret)
	router := protectedRouter(validator)
	signed := signToken(t, models.JWTClaims{
		StudentID: "student-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student-1", w.Body.String())
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	router := protectedRouter(NewTokenValidator(testSecret))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareMalformedHeader(t *testing.T) {
	router := protectedRouter(NewTokenValidator(testSecret))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareBadToken(t *testing.T) {
	router := protectedRouter(NewTokenValidator(testSecret))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
