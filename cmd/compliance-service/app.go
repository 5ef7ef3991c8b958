package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	_ "github.com/lib/pq" // PostgreSQL driver

	"compass/internal/broker"
	"compass/internal/config"
	"compass/internal/constants"
	"compass/internal/countries"
	"compass/internal/logger"
	"compass/internal/rules"
	"compass/internal/submissions"
	"compass/pkg/bootstrap"
	"compass/pkg/health"
	"compass/pkg/metrics"
	"compass/pkg/middleware"
	"compass/pkg/migrations"
	"compass/pkg/ratelimit"
	"compass/pkg/tracing"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type App struct {
	config         *config.Config
	logger         logger.Logger
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redisClient    *redis.Client
	mongoClient    *mongo.Client
	producer       broker.Producer
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config:      cfg,
		logger:      log,
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	a.initServer()

	tp, err := tracing.Init(a.config.Tracing, "compliance-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	// Redis and MongoDB are optional; the service degrades to uncached
	// lookups and no import reports without them.
	if a.config.Database.Redis.Host != "" {
		redisClient, err := a.dbConnector.InitRedis(ctx)
		if err != nil {
			a.logger.WarnwCtx(ctx, "Redis connection failed, lookup caching disabled", "error", err)
		} else {
			a.redisClient = redisClient
		}
	}

	if a.config.Database.MongoDB.URI != "" {
		initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		mongoClient, err := a.dbConnector.InitMongoDB(initCtx)
		if err != nil {
			a.logger.WarnwCtx(ctx, "MongoDB connection failed, import reports disabled", "error", err)
		} else {
			a.mongoClient = mongoClient
		}
	}

	return nil
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware("compliance-service"))
		router.Use(tracing.TraceLogMiddleware())
	}

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.ActorMiddleware())

	if a.config.API.RateLimit.Enabled {
		rateLimitConfig := ratelimit.DefaultConfig()
		if a.config.API.RateLimit.RPS > 0 {
			rateLimitConfig.RPS = a.config.API.RateLimit.RPS
		}
		if a.config.API.RateLimit.Burst > 0 {
			rateLimitConfig.Burst = a.config.API.RateLimit.Burst
		}
		if a.config.API.RateLimit.CleanupInterval > 0 {
			rateLimitConfig.CleanupInterval = time.Duration(a.config.API.RateLimit.CleanupInterval) * time.Second
		}
		if a.config.API.RateLimit.MaxAge > 0 {
			rateLimitConfig.MaxAge = time.Duration(a.config.API.RateLimit.MaxAge) * time.Second
		}
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.logger.InfowCtx(context.Background(), "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	rulesRepo := rules.NewRepository(a.db)
	countriesRepo := countries.NewRepository(a.db)
	submissionsRepo := submissions.NewRepository(a.db)
	auditLogger := rules.NewAuditLogger(a.db)

	var eventProducer *rules.RuleEventProducer
	if a.config.Broker.Type == "kafka" && a.config.Broker.Kafka.RuleEventTopic != "" {
		producer, err := broker.NewProducer(a.config.Broker, a.logger)
		if err != nil {
			a.logger.WarnwCtx(context.Background(), "Failed to create rule event producer, rule events will be disabled", "error", err)
		} else {
			a.producer = producer
			eventProducer = rules.NewRuleEventProducer(producer, a.config.Broker.Kafka.RuleEventTopic)
			a.logger.InfowCtx(context.Background(), "Rule event producer initialized")
		}
	}

	var lookupCache *rules.LookupCache
	if a.redisClient != nil {
		lookupCache = rules.NewLookupCache(a.redisClient, a.config.CircuitBreaker, a.config.Compliance.CacheTTLSeconds)
	}

	rulesOpts := []rules.ServiceOption{
		rules.WithAuditLogger(auditLogger),
	}
	if lookupCache != nil {
		rulesOpts = append(rulesOpts, rules.WithLookupCache(lookupCache))
	}
	if eventProducer != nil {
		rulesOpts = append(rulesOpts, rules.WithRuleEvents(eventProducer))
	}
	if a.mongoClient != nil {
		dbName := a.config.Database.MongoDB.Database
		if dbName == "" {
			dbName = constants.DefaultMongoDBName
		}
		mongoDB := a.mongoClient.Database(dbName)

		initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := migrations.EnsureMongoCollection(initCtx, mongoDB); err != nil {
			a.logger.WarnwCtx(initCtx, "Failed to ensure import report indexes", "error", err)
		}
		cancel()

		rulesOpts = append(rulesOpts, rules.WithImportReports(rules.NewReportRepository(mongoDB)))
	}
	rulesSvc := rules.NewService(rulesRepo, a.logger, rulesOpts...)

	countriesOpts := []countries.ServiceOption{
		countries.WithAuditLogger(auditLogger),
		countries.WithFallbackDesignations(a.config.Compliance.FallbackEnabled),
	}
	if eventProducer != nil {
		countriesOpts = append(countriesOpts, countries.WithRuleEvents(eventProducer))
	}
	if lookupCache != nil {
		countriesOpts = append(countriesOpts, countries.WithLookupCache(lookupCache))
	}
	countriesSvc := countries.NewService(countriesRepo, rulesRepo, a.logger, countriesOpts...)

	submissionsOpts := []submissions.ServiceOption{
		submissions.WithAuditLogger(auditLogger),
	}
	if eventProducer != nil {
		submissionsOpts = append(submissionsOpts, submissions.WithRuleEvents(eventProducer))
	}
	if lookupCache != nil {
		submissionsOpts = append(submissionsOpts, submissions.WithLookupCache(lookupCache))
	}
	submissionsSvc := submissions.NewService(submissionsRepo, a.logger, submissionsOpts...)

	rules.NewHandler(rulesSvc, a.logger).RegisterRoutes(router)
	countries.NewHandler(countriesSvc, a.logger).RegisterRoutes(router)
	submissions.NewHandler(submissionsSvc, a.logger).RegisterRoutes(router)

	metrics.RegisterComplianceMetrics()
	metrics.RegisterCircuitBreakerMetrics()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}
	if a.mongoClient != nil {
		healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) initServer() {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeoutSeconds * time.Second,
		WriteTimeout: a.config.Server.WriteTimeoutSeconds * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(gctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Shutdown(gctx)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer shutdown error: %w", err))
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	dbErrs := a.dbConnector.ShutdownDatabases(shutdownCtx, a.redisClient, a.db, a.mongoClient)
	errs = append(errs, dbErrs...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
