package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/ledger/internal/infrastructure/auth"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{Enabled: true, Secret: "test-secret-key-for-ledger-tests", Issuer: "erp-identity"})
}

func jwtRouter(svc *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddleware(DefaultJWTConfig(svc, zap.NewNop())))
	router.GET("/api/v1/sales", func(c *gin.Context) {
		claims := GetJWTClaims(c)
		c.JSON(http.StatusOK, gin.H{"tenant": c.GetString(JWTTenantIDKey), "user": claims.Username})
	})
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService()
	router := jwtRouter(svc)
	tenantID := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		token, err := svc.GenerateAccessToken(tenantID, uuid.New(), "cashier", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), tenantID.String())
		assert.Contains(t, w.Body.String(), "cashier")
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		errInfo := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeTokenInvalid, errInfo.Code)
		assert.NotEmpty(t, errInfo.RequestID)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.GenerateAccessToken(tenantID, uuid.New(), "cashier", -time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenExpired, decodeError(t, w).Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := auth.NewJWTService(config.JWTConfig{Enabled: true, Secret: "another-secret", Issuer: "erp-identity"})
		token, err := other.GenerateAccessToken(tenantID, uuid.New(), "cashier", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, decodeError(t, w).Code)
	})

	t.Run("skip path", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetJWTClaims_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
}
