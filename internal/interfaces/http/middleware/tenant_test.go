package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tenantRouter(t *testing.T, cfg TenantMiddlewareConfig, pre ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(pre...)
	router.Use(TenantMiddleware(cfg))
	router.GET("/api/v1/sales", func(c *gin.Context) {
		id, ok := GetTenantID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		assert.Equal(t, id.String(), logger.TenantID(c.Request.Context()))
		c.String(http.StatusOK, id.String())
	})
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestTenantMiddleware_Header(t *testing.T) {
	router := tenantRouter(t, DefaultTenantConfig())
	tenantID := uuid.New()

	t.Run("valid header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(TenantHeaderKey, tenantID.String())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tenantID.String(), w.Body.String())
	})

	t.Run("missing tenant", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTenantMissing, decodeError(t, w).Code)
	})

	t.Run("malformed tenant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(TenantHeaderKey, "acme")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("nil uuid is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set(TenantHeaderKey, uuid.Nil.String())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("health skips tenant", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestTenantMiddleware_JWTWins(t *testing.T) {
	svc := newTestJWTService()
	tokenTenant := uuid.New()
	token, err := svc.GenerateAccessToken(tokenTenant, uuid.New(), "clerk", time.Hour)
	require.NoError(t, err)

	cfg := DefaultTenantConfig()
	cfg.HeaderEnabled = false
	router := tenantRouter(t, cfg, JWTAuthMiddleware(DefaultJWTConfig(svc, zap.NewNop())))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	req.Header.Set(TenantHeaderKey, uuid.New().String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tokenTenant.String(), w.Body.String())
}

func TestGetTenantID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetTenantID(c)
	assert.False(t, ok)
}
