package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appaccounting "github.com/erp/ledger/internal/application/accounting"
	apppurchase "github.com/erp/ledger/internal/application/purchase"
	appsales "github.com/erp/ledger/internal/application/sales"
	appstock "github.com/erp/ledger/internal/application/stock"
	"github.com/erp/ledger/internal/infrastructure/auth"
	"github.com/erp/ledger/internal/infrastructure/cache"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/event"
	"github.com/erp/ledger/internal/infrastructure/export"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/migration"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/storage"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/erp/ledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	_ "github.com/erp/ledger/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Commerce Ledger API
//	@version		1.0
//	@description	Point-of-sale checkout, purchases, stock movements and double-entry accounting

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry comes first so the final logger can tee into the OTLP log pipeline
	providers, err := telemetry.Setup(context.Background(), cfg.Telemetry, version, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log, err := logger.New(logCfg, providers.ZapCore(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	profiler, err := telemetry.NewProfiler(cfg.Profiling, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	log.Info("Starting ledger server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	checkSchema(cfg, log)

	meter := providers.Meter("github.com/erp/ledger")
	poolGauges, err := telemetry.InstrumentDB(db.DB, telemetry.DBInstrumentationConfig{
		Tracing:               cfg.Telemetry.DBTraceEnabled,
		IncludeQueryVariables: cfg.App.Env == "development",
		DBName:                cfg.Database.Name,
		Meter:                 meter,
	}, log)
	if err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}

	// Initialize repositories
	scope := persistence.NewGormTransactionScope(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	voucherRepo := persistence.NewGormVoucherRepository(db.DB)
	ledgerReader := persistence.NewGormLedgerReader(db.DB)

	// Initialize application services
	stockLedger := appstock.NewLedger()
	postingEngine := appaccounting.NewEngine(appaccounting.NewConfigRoleResolver(cfg.Ledger.AccountRoles, nil))

	saleProcessor := appsales.NewProcessor(scope, saleRepo, paymentRepo, stockLedger, postingEngine, log,
		appsales.ProcessorConfig{MaxRetries: cfg.Ledger.MaxRetries})
	purchaseProcessor := apppurchase.NewProcessor(scope, purchaseRepo, paymentRepo, stockLedger, postingEngine, log,
		apppurchase.ProcessorConfig{UpdatePurchasePrice: cfg.Ledger.UpdatePurchasePrice})
	stockService := appstock.NewStockService(scope, productRepo, movementRepo, stockLedger)
	accountingService := appaccounting.NewAccountingService(scope, accountRepo, voucherRepo, ledgerReader)
	accountingService.SetTrialBalanceWriter(export.NewXLSXWriter())

	if cfg.Export.S3Enabled {
		archiver, err := storage.NewS3ReportArchiver(context.Background(), cfg.Export, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize report archiver", zap.Error(err))
		}
		if err := archiver.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to prepare report bucket", zap.Error(err), zap.String("bucket", archiver.Bucket()))
		}
		accountingService.SetReportArchiver(archiver)
		log.Info("Report archiving enabled", zap.String("bucket", archiver.Bucket()))
	}

	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		saleProcessor.SetCheckoutGuard(cache.NewRedisCheckoutGuard(redisClient, cfg.Redis.LockTTL, log))
		log.Info("Checkout guard enabled", zap.String("redis", cfg.Redis.Addr()))
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter, productRepo, log)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}
	lowStockHandler := appstock.NewLowStockAlertHandler(log)
	eventBus.Subscribe(ledgerMetrics)
	eventBus.Subscribe(lowStockHandler)

	log.Info("Event handlers registered",
		zap.Strings("ledger_metrics_events", ledgerMetrics.EventTypes()),
		zap.Strings("low_stock_alert_events", lowStockHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	saleProcessor.SetEventPublisher(eventBus)
	purchaseProcessor.SetEventPublisher(eventBus)
	stockService.SetEventPublisher(eventBus)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Apply middleware stack in order:
	// 1. Recovery and access log
	// 2. RequestID, then tracing so spans carry it
	// 3. Security headers, CORS and body limit
	// 4. JWT (if enabled), then tenant resolution
	// 5. Span enrichment, profiling labels and rate limiting, which all need the tenant
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-Archive-Location"}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	tenantConfig := middleware.DefaultTenantConfig()
	if cfg.JWT.Enabled {
		engine.Use(middleware.JWTAuthMiddleware(middleware.DefaultJWTConfig(auth.NewJWTService(cfg.JWT), log)))
		tenantConfig.HeaderEnabled = false
		log.Info("JWT authentication enabled")
	}
	engine.Use(middleware.TenantMiddleware(tenantConfig))
	engine.Use(middleware.SpanEnricher())

	profilingConfig := middleware.DefaultProfilingConfig()
	profilingConfig.Enabled = profiler.Enabled()
	engine.Use(middleware.ProfilingLabels(profilingConfig))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	systemHandler := handler.NewSystemHandler(db, version)
	engine.GET("/health", systemHandler.Health)

	// Swagger documentation endpoint
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	for _, group := range router.LedgerGroups(router.LedgerHandlers{
		Sales:      handler.NewSaleHandler(saleProcessor),
		Purchases:  handler.NewPurchaseHandler(purchaseProcessor),
		Stock:      handler.NewStockHandler(stockService),
		Accounting: handler.NewAccountingHandler(accountingService),
	}) {
		r.Register(group)
	}
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if poolGauges != nil {
		if err := poolGauges.Unregister(); err != nil {
			log.Warn("Failed to unregister pool gauges", zap.Error(err))
		}
	}
	if err := ledgerMetrics.Close(); err != nil {
		log.Warn("Failed to close ledger metrics", zap.Error(err))
	}
	if err := providers.Shutdown(ctx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// checkSchema warns when the database lags the embedded migrations.
// Migrations are applied with cmd/migrate, never by the server.
func checkSchema(cfg *config.Config, log *zap.Logger) {
	sqlDB, err := sql.Open("postgres", cfg.Database.MigrationURL())
	if err != nil {
		log.Warn("Could not open schema check connection", zap.Error(err))
		return
	}

	m, err := migration.New(sqlDB, log)
	if err != nil {
		_ = sqlDB.Close()
		log.Warn("Could not check schema version", zap.Error(err))
		return
	}
	defer func() {
		_ = m.Close()
	}()

	status, err := m.Status()
	switch {
	case err != nil:
		log.Warn("Could not check schema version", zap.Error(err))
	case status.Dirty:
		log.Error("Database schema is dirty; fix it with 'migrate force'", zap.Uint("version", status.Version))
	case status.Pending():
		log.Warn("Database schema is behind; run 'migrate up'",
			zap.Uint("version", status.Version),
			zap.Uint("latest", status.Latest),
		)
	default:
		log.Info("Database schema is current", zap.Uint("version", status.Version))
	}
}
