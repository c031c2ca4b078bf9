package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appclient "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/client"
	appcloset "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/closet"
	appoutfit "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/outfit"
	appshopping "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/shopping"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/auth"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/cache"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/imaging"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/logger"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/migration"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/persistence"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/scheduler"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/storage"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/telemetry"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/interfaces/http/handler"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/interfaces/http/middleware"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/ZThygesen/inspired-virtual-closet-sub001/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Edie Styles Closet API
//	@version		1.0
//	@description	Virtual closet service for a personal stylist and their clients.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// ObjectStore is what the services and the sweeper need from storage
type ObjectStore interface {
	appcloset.ObjectStorageService
	scheduler.ObjectStore
}

func main() {
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

	ctx := context.Background()

	// The OTLP log bridge needs a logger to report its own setup, so the
	// final logger is built after it.
	telemetry.ServiceVersion = version
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log, err := logger.New(logCfg, logProvider.ZapCore(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting closet API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	closetMetrics, err := telemetry.NewClosetMetrics(meter)
	if err != nil {
		log.Warn("Closet metrics unavailable", zap.Error(err))
		closetMetrics = nil
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithTraceContextFields(),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected")

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	migrator, err := migration.New(sqlDB, migration.Embedded(), log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Up(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, "postgresql", log); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}
	if _, err := telemetry.RegisterDBPoolMetrics(meter, sqlDB); err != nil {
		log.Warn("Database pool metrics unavailable", zap.Error(err))
	}

	clientRepo := persistence.NewGormClientRepository(db.DB)
	profileRepo := persistence.NewGormStyleProfileRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	tagRepo := persistence.NewGormTagRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	outfitRepo := persistence.NewGormOutfitRepository(db.DB)
	shoppingRepo := persistence.NewGormShoppingItemRepository(db.DB)

	if err := categoryRepo.EnsureDefaults(ctx); err != nil {
		log.Fatal("Failed to seed default category", zap.Error(err))
	}
	if err := tagRepo.EnsureDefaults(ctx); err != nil {
		log.Fatal("Failed to seed default tag group", zap.Error(err))
	}

	objects, err := openObjectStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	blacklist, closeBlacklist, err := openBlacklist(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize token blacklist", zap.Error(err))
	}

	idempotencyKeys, err := cache.NewIdempotencyStore(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appclient.NewAuthService(clientRepo, jwtService, blacklist, log)
	clientService := appclient.NewClientService(clientRepo, itemRepo, outfitRepo, objects, log)
	profileService := appclient.NewProfileService(profileRepo, clientRepo, log)
	categoryService := appcloset.NewCategoryService(categoryRepo, log)
	tagService := appcloset.NewTagService(tagRepo, log)

	itemService := appcloset.NewItemService(itemRepo, categoryRepo, tagRepo, clientRepo, objects,
		imaging.NewProcessor(cfg.Imaging.ThumbnailSize, cfg.Imaging.ThumbnailQuality), log)
	itemService.SetConfig(appcloset.ItemServiceConfig{
		MaxUploadSize:      cfg.Imaging.MaxUploadSize,
		RemoveBgCreditCost: cfg.Imaging.RemoveBgCreditCost,
		URLExpiry:          cfg.Storage.PresignExpiration,
	})
	itemService.SetMetrics(closetMetrics)
	if cfg.Imaging.RemoveBgEnabled {
		remover, err := imaging.NewBackgroundRemover(
			cfg.Imaging.RemoveBgEndpoint,
			cfg.Imaging.RemoveBgAPIKey,
			cfg.Imaging.RemoveBgTimeout,
			cfg.Imaging.RemoveBgRatePerMin,
			log.Named("removebg"),
		)
		if err != nil {
			log.Fatal("Failed to configure background removal", zap.Error(err))
		}
		itemService.SetBackgroundRemover(remover)
		log.Info("Background removal enabled",
			zap.Int("credit_cost", cfg.Imaging.RemoveBgCreditCost),
			zap.Int("rate_per_min", cfg.Imaging.RemoveBgRatePerMin))
	}

	outfitService := appoutfit.NewOutfitService(outfitRepo, itemRepo, objects, log)
	outfitService.SetConfig(appoutfit.OutfitServiceConfig{
		MaxPreviewSize: cfg.Imaging.MaxOutfitPreviewSize,
		URLExpiry:      cfg.Storage.PresignExpiration,
	})
	outfitService.SetMetrics(closetMetrics)
	shoppingService := appshopping.NewShoppingService(shoppingRepo, log)

	// Orphan sweeper
	var sweeper *scheduler.OrphanSweeper
	if cfg.Scheduler.Enabled {
		sweeper, err = scheduler.NewOrphanSweeper(objects, cfg.Scheduler, closetMetrics, log, itemRepo, outfitRepo)
		if err != nil {
			log.Fatal("Failed to configure storage sweeper", zap.Error(err))
		}
		if err := sweeper.Start(); err != nil {
			log.Fatal("Failed to start storage sweeper", zap.Error(err))
		}
		log.Info("Storage sweeper started",
			zap.String("schedule", cfg.Scheduler.SweepSchedule),
			zap.Duration("min_age", cfg.Scheduler.SweepMinAge))
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: request id first so every later log line and span has it,
	// tracing before logging so request logs carry the trace id.
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.HTTPMetrics(meter))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDKey, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		CookieName:     cookieName(cfg.Cookie),
		SkipPaths:      router.PublicPaths("/api/v1"),
		Logger:         log,
	})

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}, jwtMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(jwtMiddleware, middleware.TracingAttributeInjector())
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		r.Use(middleware.RateLimitByKey(limiter, middleware.ClientOrIPKey))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow))
	}
	r.Use(middleware.Profiling(middleware.ProfilingConfig{Enabled: profiler.IsEnabled()}))

	opts := router.Options{
		Idempotency: middleware.Idempotency(idempotencyKeys, cfg.HTTP.IdempotencyTTL, log),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		opts.AuthLimit = middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow))
	}
	r.Register(router.ClosetAPI(router.Handlers{
		Auth:       handler.NewAuthHandler(authService, cfg.Cookie),
		Clients:    handler.NewClientHandler(clientService, profileService),
		Categories: handler.NewCategoryHandler(categoryService),
		Tags:       handler.NewTagHandler(tagService),
		Items:      handler.NewItemHandler(itemService),
		Outfits:    handler.NewOutfitHandler(outfitService),
		Shopping:   handler.NewShoppingHandler(shoppingService),
	}, opts)...)
	r.Setup()
	log.Debug("Routes registered", zap.Int("count", len(r.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if sweeper != nil {
		if err := sweeper.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping storage sweeper", zap.Error(err))
		}
	}
	if err := migrator.Close(); err != nil {
		log.Warn("Error closing migrator", zap.Error(err))
	}
	closeBlacklist()
	if err := idempotencyKeys.Close(); err != nil {
		log.Error("Error closing idempotency store", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracing", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	_ = logProvider.Shutdown(shutdownCtx)
}

// openObjectStore connects to S3. Without credentials outside production
// images live in process memory and vanish on restart.
func openObjectStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (ObjectStore, error) {
	if !cfg.App.IsProduction() && cfg.Storage.AccessKey == "" && cfg.Storage.Endpoint == "" {
		log.Warn("No object storage configured, keeping images in memory")
		return storage.NewMemoryObjectStorage(), nil
	}

	s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration))
	if err != nil {
		return nil, err
	}
	if cfg.Storage.CreateBucket {
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, err
		}
	}
	log.Info("Object storage ready", zap.String("bucket", s3.GetBucket()))
	return s3, nil
}

// openBlacklist returns the Redis blacklist when enabled, else an in-memory one
func openBlacklist(ctx context.Context, cfg *config.Config, log *zap.Logger) (auth.TokenBlacklist, func(), error) {
	if !cfg.Redis.Enabled {
		log.Info("Redis disabled, token blacklist is in memory")
		return auth.NewInMemoryTokenBlacklist(), func() {}, nil
	}
	bl, err := auth.NewRedisTokenBlacklist(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Token blacklist connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	return bl, func() {
		if err := bl.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}, nil
}

func cookieName(c config.CookieConfig) string {
	if !c.Enabled {
		return ""
	}
	return c.AccessTokenName
}
