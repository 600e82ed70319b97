package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("blocks requests exceeding limit", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)
		defer limiter.Stop()

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("client"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client"))
		assert.True(t, limiter.Allow("other"), "limits are per key")
	})

	t.Run("resets after window", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)
		defer limiter.Stop()
		now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return now }

		assert.True(t, limiter.Allow("client"))
		assert.False(t, limiter.Allow("client"))

		now = now.Add(time.Minute)
		assert.True(t, limiter.Allow("client"))
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)
		limiter.Stop()
		limiter.Stop()
	})
}

func TestRateLimit_PerTenant(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	defer limiter.Stop()

	router := gin.New()
	router.Use(RequestID(), TenantMiddleware(DefaultTenantConfig()), RateLimit(limiter))
	router.GET("/api/v1/stock/low", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(tenant string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stock/low", nil)
		req.Header.Set(TenantHeaderKey, tenant)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	tenantA, tenantB := uuid.NewString(), uuid.NewString()

	first := send(tenantA)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	limited := send(tenantA)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Contains(t, limited.Body.String(), "ERR_RATE_LIMITED")

	assert.Equal(t, http.StatusOK, send(tenantB).Code)
}
