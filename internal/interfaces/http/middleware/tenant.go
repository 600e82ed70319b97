package middleware

import (
	"net/http"

	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Tenant context keys and headers
const (
	TenantIDKey          = logger.GinTenantIDKey
	TenantHeaderKey      = "X-Tenant-ID"
	IdempotencyKeyHeader = "Idempotency-Key"
)

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// HeaderEnabled accepts X-Tenant-ID when no JWT tenant is present.
	// Disable it when authentication is on so callers cannot pick a tenant.
	HeaderEnabled bool
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require tenant context
	SkipPathPrefixes []string
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		HeaderEnabled:    true,
		SkipPaths:        []string{"/health", "/api/v1/health"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

// TenantMiddleware resolves the tenant from JWT claims, then the X-Tenant-ID header
func TenantMiddleware(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipPath(c.Request.URL.Path, cfg.SkipPaths, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}

		tenantID := c.GetString(JWTTenantIDKey)
		if tenantID == "" && cfg.HeaderEnabled {
			tenantID = c.GetHeader(TenantHeaderKey)
		}

		if tenantID == "" {
			respondTenantError(c, "Tenant identification required")
			return
		}
		parsed, err := uuid.Parse(tenantID)
		if err != nil || parsed == uuid.Nil {
			respondTenantError(c, "Invalid tenant ID format")
			return
		}

		logger.SetGinTenant(c, parsed.String())
		c.Next()
	}
}

func respondTenantError(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeTenantMissing, message, GetRequestID(c)))
}

// GetTenantID returns the tenant resolved by TenantMiddleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(TenantIDKey))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
