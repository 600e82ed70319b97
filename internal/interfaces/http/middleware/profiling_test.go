package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilingLabels(t *testing.T) {
	tenantID := uuid.New()
	var route, tenant, method string

	r := gin.New()
	r.Use(TenantMiddleware(DefaultTenantConfig()), ProfilingLabels(DefaultProfilingConfig()))
	r.GET("/api/v1/sales/:id", func(c *gin.Context) {
		ctx := c.Request.Context()
		route, _ = pprof.Label(ctx, "route")
		tenant, _ = pprof.Label(ctx, "tenant_id")
		method, _ = pprof.Label(ctx, "method")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/"+uuid.NewString(), nil)
	req.Header.Set(TenantHeaderKey, tenantID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/v1/sales/:id", route)
	assert.Equal(t, tenantID.String(), tenant)
	assert.Equal(t, http.MethodGet, method)
}

func TestProfilingLabels_SkipsHealth(t *testing.T) {
	labelled := true

	r := gin.New()
	r.Use(ProfilingLabels(DefaultProfilingConfig()))
	r.GET("/health", func(c *gin.Context) {
		_, labelled = pprof.Label(c.Request.Context(), "route")
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.False(t, labelled)
}

func TestProfilingLabels_Disabled(t *testing.T) {
	labelled := true

	r := gin.New()
	r.Use(ProfilingLabels(ProfilingConfig{}))
	r.GET("/api/v1/stock/low", func(c *gin.Context) {
		_, labelled = pprof.Label(c.Request.Context(), "route")
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/stock/low", nil))
	assert.False(t, labelled)
}
