package telemetry

import (
	"context"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBInstrumentationConfig controls SQL tracing and pool metrics
type DBInstrumentationConfig struct {
	Tracing bool
	// IncludeQueryVariables puts bound values into span statements; keep it off outside development
	IncludeQueryVariables bool
	DBName                string
	TracerProvider        trace.TracerProvider
	Meter                 metric.Meter
}

// InstrumentDB registers the otelgorm plugin and connection pool gauges on db
func InstrumentDB(db *gorm.DB, cfg DBInstrumentationConfig, logger *zap.Logger) (metric.Registration, error) {
	if cfg.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
		if !cfg.IncludeQueryVariables {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if cfg.TracerProvider != nil {
			opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return nil, fmt.Errorf("failed to register otelgorm: %w", err)
		}
		logger.Info("Database tracing enabled", zap.String("db_name", cfg.DBName))
	}

	if cfg.Meter == nil {
		return nil, nil
	}
	return registerPoolGauges(db, cfg.Meter)
}

func registerPoolGauges(db *gorm.DB, meter metric.Meter) (metric.Registration, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	open, err := meter.Int64ObservableGauge("db.pool.open_connections", metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	inUse, err := meter.Int64ObservableGauge("db.pool.in_use", metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	idle, err := meter.Int64ObservableGauge("db.pool.idle", metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("db.pool.wait_count",
		metric.WithDescription("Connections waited for because the pool was exhausted"))
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(open, int64(s.OpenConnections))
		o.ObserveInt64(inUse, int64(s.InUse))
		o.ObserveInt64(idle, int64(s.Idle))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, open, inUse, idle, waits)
}
