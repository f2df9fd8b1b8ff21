package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	aiapp "github.com/shopforge/backend/internal/application/ai"
	analyticsapp "github.com/shopforge/backend/internal/application/analytics"
	cartapp "github.com/shopforge/backend/internal/application/cart"
	catalogapp "github.com/shopforge/backend/internal/application/catalog"
	identityapp "github.com/shopforge/backend/internal/application/identity"
	inventoryapp "github.com/shopforge/backend/internal/application/inventory"
	"github.com/shopforge/backend/internal/application/notification"
	orderapp "github.com/shopforge/backend/internal/application/order"
	predictorapp "github.com/shopforge/backend/internal/application/predictor"
	reviewapp "github.com/shopforge/backend/internal/application/review"
	storeapp "github.com/shopforge/backend/internal/application/store"
	"github.com/shopforge/backend/internal/domain/ai"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/auth"
	"github.com/shopforge/backend/internal/infrastructure/cache"
	"github.com/shopforge/backend/internal/infrastructure/config"
	"github.com/shopforge/backend/internal/infrastructure/event"
	"github.com/shopforge/backend/internal/infrastructure/llm"
	"github.com/shopforge/backend/internal/infrastructure/logger"
	"github.com/shopforge/backend/internal/infrastructure/mail"
	"github.com/shopforge/backend/internal/infrastructure/migration"
	"github.com/shopforge/backend/internal/infrastructure/persistence"
	"github.com/shopforge/backend/internal/infrastructure/predictor"
	"github.com/shopforge/backend/internal/infrastructure/queue"
	"github.com/shopforge/backend/internal/infrastructure/scheduler"
	"github.com/shopforge/backend/internal/infrastructure/storage"
	"github.com/shopforge/backend/internal/infrastructure/telemetry"
	"github.com/shopforge/backend/internal/interfaces/http/handler"
	"github.com/shopforge/backend/internal/interfaces/http/middleware"
	"github.com/shopforge/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Telemetry: traces, metrics and the zap log bridge
	tp, err := telemetry.NewTracerProvider(rootCtx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tp.Shutdown)

	mp, err := telemetry.NewMeterProvider(rootCtx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", mp.Shutdown)

	lp, err := telemetry.NewLoggerProvider(rootCtx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer shutdown(log, "logger provider", lp.Shutdown)
	log = logger.Tee(log, telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, lp, logger.ParseLevel(cfg.Log.Level)))

	log.Info("Starting ShopForge backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	bizMetrics, err := telemetry.NewBusinessMetrics(mp.Meter("shopforge"), log)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	promMetrics := telemetry.NewPrometheusMetrics(cfg.Telemetry.MetricsPrefix)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.MigrationsAuto {
		if err := migrateUp(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled,
		DBName:          cfg.Database.DBName,
		IncludeVars:     !cfg.App.IsProduction(),
		SlowQueryThresh: cfg.Database.SlowQueryThresh,
	}, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(rootCtx, db.DB, mp, cfg.Database.SlowQueryThresh, log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	} else {
		defer dbMetrics.Stop()
	}

	// Redis is optional. Without it the blacklist, queue and cooldown run
	// in process and are not shared between instances.
	var rdb redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = client.Close()
		}()
		rdb = client
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	confirmRepo := persistence.NewGormConfirmationRepository(db.DB)
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	storeRoleRepo := persistence.NewGormStoreRoleRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	variantRepo := persistence.NewGormVariantRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	analyticsRepo := persistence.NewGormAnalyticsRepository(db.DB)
	predictorStatRepo := persistence.NewGormPredictorStatRepository(db.DB)
	aiLogRepo := persistence.NewGormAiLogRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus. Handlers run off the request path.
	eventBus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch())

	// Token blacklist
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if rdb != nil {
		blacklist = auth.NewRedisTokenBlacklist(rdb)
	}

	// Object storage for product images
	images, err := newImageStorage(rootCtx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Analytics queue. asynq needs Redis; without it jobs run in-process.
	queueCfg := queue.Config{
		Name:        cfg.Queue.Name,
		Workers:     cfg.Queue.Workers,
		MaxAttempts: cfg.Queue.MaxAttempts,
		BaseDelay:   cfg.Queue.BaseDelay,
		MaxDelay:    cfg.Queue.MaxDelay,
		JobTimeout:  cfg.Queue.JobTimeout,
	}
	jobQueue := queue.NewInProcess(queueCfg, log, queue.WithRecorder(bizMetrics))
	if cfg.Queue.Backend == "redis" && rdb != nil {
		jobQueue = queue.NewRedis(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, queueCfg, log, queue.WithRecorder(bizMetrics))
	}
	jobQueue.Register(analyticsapp.JobTypeRecord, analyticsapp.NewRecordHandler(analyticsRepo, log).Handle)
	promMetrics.RegisterQueueGauges(cfg.Telemetry.MetricsPrefix, func() (int64, int64, int64, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s, err := jobQueue.Stats(ctx)
		return s.Ready, s.Delayed, s.Dead, err
	})

	// LLM providers. Without any, AI endpoints answer AI_UNAVAILABLE.
	var generator ai.TextGenerator
	if llmRouter, err := llm.NewRouterFromConfig(cfg.LLM, log); err != nil {
		log.Warn("No LLM provider configured", zap.Error(err))
	} else {
		generator = llmRouter
		log.Info("LLM provider configured", zap.String("primary", llmRouter.Name()))
	}

	// Demand predictor
	predictorClient := predictor.New(cfg.Predictor, log)
	featureCache := cache.NewTTLCache[uuid.UUID, ai.Features](cfg.Predictor.CacheTTL, cfg.Predictor.CacheMaxEntries)

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, confirmRepo, jwtService, blacklist, eventBus, log)
	userService := identityapp.NewUserService(userRepo, jwtService, blacklist, log)
	storeService := storeapp.NewStoreService(
		storeRepo, storeRoleRepo, userRepo,
		persistence.NewCounterSource(productRepo, orderRepo),
		eventBus, log,
	)
	analyticsService := analyticsapp.NewAnalyticsService(jobQueue, analyticsRepo, productRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, variantRepo, images, eventBus, log).
		WithPresignExpiry(cfg.Storage.PresignExpiry)
	variantService := catalogapp.NewVariantService(productRepo, variantRepo, inventoryRepo, log)
	productImporter := catalogapp.NewProductImporter(productService, variantService, productRepo, categoryRepo, variantRepo, log)
	inventoryService := inventoryapp.NewInventoryService(inventoryRepo, eventBus, log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, variantRepo, inventoryRepo, analyticsService, log)
	orderService := orderapp.NewOrderService(orderRepo, productRepo, variantRepo, txScope, storeService, eventBus, log).
		WithRecorder(analyticsService).
		WithMetrics(bizMetrics)
	reviewService := reviewapp.NewReviewService(reviewRepo, productRepo, orderRepo, storeService, eventBus, log)
	aiService := aiapp.NewAIService(generator, aiLogRepo, productRepo, reviewRepo, log).
		WithMetrics(bizMetrics).
		WithLimits(cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	predictorService := predictorapp.NewPredictorService(
		productRepo, predictorStatRepo, storeRepo,
		predictorapp.NewFeatureBuilder(analyticsRepo, variantRepo, inventoryRepo, featureCache),
		predictorClient, log,
	).WithMetrics(bizMetrics)

	// Notifications
	sender, err := mail.NewSender(cfg.Mail, log)
	if err != nil {
		log.Fatal("Failed to initialize mail sender", zap.Error(err))
	}
	renderer, err := mail.NewRenderer()
	if err != nil {
		log.Fatal("Failed to parse mail templates", zap.Error(err))
	}
	notifier := notification.NewNotifier(sender, renderer, userRepo, storeRepo, storeRoleRepo, cfg.App.PublicURL, log)
	cooldown := cache.NewCooldown(rdb, cfg.Notification.LowStockCooldown, log)

	// Register event handlers
	for _, h := range []shared.EventHandler{
		notification.NewAccountMailHandler(notifier, log),
		notification.NewOrderMailHandler(notifier, orderRepo, log),
		notification.NewStockAlertHandler(notifier, cooldown, productRepo, variantRepo, bizMetrics, log),
		notification.NewStoreCounterHandler(storeService, log),
		catalogapp.NewProductDeletedHandler(images, log),
	} {
		eventBus.Subscribe(h, h.EventTypes()...)
	}

	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	if err := jobQueue.Start(); err != nil {
		log.Fatal("Failed to start job queue", zap.Error(err))
	}
	log.Info("Event bus and job queue started")

	// Scheduler
	sched := scheduler.New(scheduler.Config{
		Enabled:    cfg.Scheduler.Enabled,
		JobTimeout: cfg.Scheduler.JobTimeout,
	}, log)
	if cfg.Scheduler.Enabled {
		for _, task := range scheduledTasks(cfg.Scheduler, predictorService, storeService, jobQueue, log) {
			if err := sched.Register(task); err != nil {
				log.Fatal("Failed to register scheduled task", zap.String("task", task.Name), zap.Error(err))
			}
		}
		if err := sched.Start(rootCtx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// Register custom validators
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Global middleware, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(mp))
	if cfg.Telemetry.PrometheusEnabled {
		engine.Use(promMetrics.Middleware())
	}
	engine.Use(middleware.Secure())
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health and metrics stay outside the rate limiter
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version).
		AddCheck("database", func(ctx context.Context) error {
			return db.DB.WithContext(ctx).Exec("SELECT 1").Error
		})
	if rdb != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	if cfg.Predictor.Enabled {
		systemHandler.AddCheck("predictor", predictorService.Health)
	}
	engine.GET("/health", systemHandler.Live)
	engine.GET("/health/ready", systemHandler.Ready)
	if cfg.Telemetry.PrometheusEnabled {
		engine.GET("/metrics", gin.WrapH(promMetrics.Handler()))
	}

	var apiMiddleware []gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, 10*time.Minute)
		limiter.StartPruning(rootCtx, time.Minute)
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(limiter, promMetrics))
	}

	guards := router.NewGuards(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Metrics:        promMetrics,
		Logger:         log,
	}, storeService, log)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"), router.WithMiddleware(apiMiddleware...))
	router.Mount(r, router.Handlers{
		System:    systemHandler,
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Store:     handler.NewStoreHandler(storeService),
		Category:  handler.NewCategoryHandler(categoryService),
		Product:   handler.NewProductHandler(productService),
		Import:    handler.NewProductImportHandler(productImporter),
		Variant:   handler.NewVariantHandler(variantService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Cart:      handler.NewCartHandler(cartService),
		Order:     handler.NewOrderHandler(orderService),
		Review:    handler.NewReviewHandler(reviewService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		AI:        handler.NewAIHandler(aiService),
		Predictor: handler.NewPredictorHandler(predictorService, cfg.Scheduler.JobTimeout),
	}, guards).Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
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
	if err := sched.Stop(ctx); err != nil {
		log.Error("Scheduler did not stop cleanly", zap.Error(err))
	}
	if err := jobQueue.Stop(ctx); err != nil {
		log.Error("Job queue did not stop cleanly", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Event bus did not stop cleanly", zap.Error(err))
	}
	stop()

	log.Info("Server exited gracefully")
}

func migrateUp(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, "", log)
	if err != nil {
		return err
	}
	return m.Up()
}

// newImageStorage returns S3 storage when configured, otherwise an
// in-memory store that only suits local development.
func newImageStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (catalogapp.ImageStorage, error) {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled, product images are kept in memory")
		return storage.NewMemoryObjectStorage("http://localhost:" + cfg.App.Port + "/images"), nil
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiry),
	)
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s3, nil
}

func scheduledTasks(
	cfg config.SchedulerConfig,
	predictions *predictorapp.PredictorService,
	stores *storeapp.StoreService,
	jobQueue *queue.Queue,
	log *zap.Logger,
) []scheduler.Task {
	return []scheduler.Task{
		{
			Name: "predictor-refresh",
			Spec: cfg.PredictorCron,
			Run:  predictions.RefreshAll,
		},
		{
			Name: "store-counters",
			Spec: cfg.CountersCron,
			Run: func(ctx context.Context) error {
				n, err := stores.RecomputeAllCounters(ctx)
				if err != nil {
					return err
				}
				log.Info("Store counters recomputed", zap.Int("stores", n))
				return nil
			},
		},
		{
			Name: "dead-letter-report",
			Spec: cfg.DeadLetterCron,
			Run: func(ctx context.Context) error {
				stats, err := jobQueue.Stats(ctx)
				if err != nil {
					return err
				}
				if stats.Dead == 0 {
					return nil
				}
				jobs, err := jobQueue.DeadLetters(ctx, 20)
				if err != nil {
					return err
				}
				for _, job := range jobs {
					log.Warn("Dead-lettered job",
						zap.String("job_id", job.ID),
						zap.String("type", job.Type),
						zap.Int("attempts", job.Attempts),
						zap.String("last_error", job.LastError))
				}
				log.Warn("Analytics queue has dead-lettered jobs", zap.Int64("dead", stats.Dead))
				return nil
			},
		},
	}
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Failed to shut down "+name, zap.Error(err))
	}
}
