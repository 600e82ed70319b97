package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DatabaseChecker is the part of the database the health check needs
type DatabaseChecker interface {
	Ping() error
	Stats() (persistence.ConnectionStats, error)
}

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	db        DatabaseChecker
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db DatabaseChecker, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
// @name HandlerHealthResponse
type HealthResponse struct {
	Status    string         `json:"status" example:"healthy"`
	Database  string         `json:"database" example:"connected"`
	Version   string         `json:"version" example:"1.0.0"`
	GoVersion string         `json:"go_version" example:"go1.25.5"`
	Uptime    string         `json:"uptime" example:"1h30m45s"`
	Pool      *PoolStatsData `json:"pool,omitempty"`
}

// PoolStatsData reports the database connection pool
type PoolStatsData struct {
	MaxOpen int `json:"max_open"`
	Open    int `json:"open"`
	InUse   int `json:"in_use"`
	Idle    int `json:"idle"`
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Description  Reports service health; 503 when the database is unreachable
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} APIResponse[HealthResponse]
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Database:  "connected",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	if err := h.db.Ping(); err != nil {
		logger.GetGinLogger(c).Warn("health check: database ping failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	if stats, err := h.db.Stats(); err == nil {
		resp.Pool = &PoolStatsData{
			MaxOpen: stats.MaxOpenConnections,
			Open:    stats.OpenConnections,
			InUse:   stats.InUse,
			Idle:    stats.Idle,
		}
	}

	h.Success(c, resp)
}
