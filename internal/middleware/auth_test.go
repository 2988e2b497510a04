package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/identity"
	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthRouter(verifier *mocks.VerifierMock, users *mocks.UserRepositoryMock) *gin.Engine {
	router := gin.New()
	router.GET("/protected", AuthMiddleware(verifier, users), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt("userID")})
	})
	return router
}

func TestAuthMiddlewareResolvesUser(t *testing.T) {
	verifier := &mocks.VerifierMock{}
	users := &mocks.UserRepositoryMock{}
	verifier.On("Verify", mock.Anything, "good-token").Return("user@example.com", nil)
	users.On("GetBySubject", mock.Anything, "user@example.com").
		Return(models.User{UserSummary: models.UserSummary{ID: 42, Email: "user@example.com"}}, nil)

	router := setupAuthRouter(verifier, users)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "42")
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	verifier := &mocks.VerifierMock{}
	users := &mocks.UserRepositoryMock{}

	router := setupAuthRouter(verifier, users)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	verifier := &mocks.VerifierMock{}
	users := &mocks.UserRepositoryMock{}

	router := setupAuthRouter(verifier, users)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	verifier := &mocks.VerifierMock{}
	users := &mocks.UserRepositoryMock{}
	verifier.On("Verify", mock.Anything, "bad-token").Return("", identity.ErrInvalidCredential)

	router := setupAuthRouter(verifier, users)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertNotCalled(t, "GetBySubject", mock.Anything, mock.Anything)
}

func TestAuthMiddlewareUnknownUser(t *testing.T) {
	verifier := &mocks.VerifierMock{}
	users := &mocks.UserRepositoryMock{}
	verifier.On("Verify", mock.Anything, "good-token").Return("ghost@example.com", nil)
	users.On("GetBySubject", mock.Anything, "ghost@example.com").
		Return(models.User{}, repositories.ErrUserNotFound)

	router := setupAuthRouter(verifier, users)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
