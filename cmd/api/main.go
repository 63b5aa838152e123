// Package main - точка входа HTTP API Progress Hub.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: PostgreSQL, Redis, event bus
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/learnhub/progress-hub/config"

	// Application layer
	"github.com/learnhub/progress-hub/internal/application/command"
	"github.com/learnhub/progress-hub/internal/application/eventhandler"
	"github.com/learnhub/progress-hub/internal/application/query"
	"github.com/learnhub/progress-hub/internal/application/validation"

	// Infrastructure layer
	"github.com/learnhub/progress-hub/internal/domain/shared"
	"github.com/learnhub/progress-hub/internal/infrastructure/messaging"
	"github.com/learnhub/progress-hub/internal/infrastructure/persistence/postgres"
	"github.com/learnhub/progress-hub/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/learnhub/progress-hub/internal/interface/http"

	"github.com/learnhub/progress-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────

	// .env is optional, environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Progress Hub API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.MigrateOnStart {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		status, err := migrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", logger.Err(err))
		} else {
			applied := 0
			for _, m := range status {
				if m.IsApplied {
					applied++
				}
			}
			log.Info("migrations completed",
				logger.Int("applied", applied),
				logger.Int("total", len(status)),
			)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var summaryCache *redis.SummaryCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			// Summaries fall back to PostgreSQL on every read.
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			summaryCache = redis.NewSummaryCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	userRepo := postgres.NewUserRepository(dbConn)
	courseRepo := postgres.NewCourseRepository(dbConn)
	lessonRepo := postgres.NewLessonRepository(dbConn)
	enrollmentStore := postgres.NewEnrollmentStore(dbConn)
	progressStore := postgres.NewProgressStore(dbConn)

	validator := validation.NewService(userRepo, courseRepo, lessonRepo, enrollmentStore)
	prereqs := validation.NewPrerequisiteChecker(lessonRepo, progressStore)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. РЕГИСТРАЦИЯ EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	var invalidator eventhandler.SummaryInvalidator
	if summaryCache != nil {
		invalidator = summaryCache
	}
	onProgressChanged := eventhandler.NewOnProgressChangedHandler(
		invalidator, log, eventhandler.DefaultProgressChangedConfig())
	eventBus.Subscribe(shared.EventProgressCreated, onProgressChanged.Handle)
	eventBus.Subscribe(shared.EventProgressChanged, onProgressChanged.Handle)

	onUserEnrolled := eventhandler.NewOnUserEnrolledHandler(log, eventhandler.DefaultUserEnrolledConfig())
	eventBus.Subscribe(shared.EventUserEnrolled, onUserEnrolled.Handle)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	createProgressCmd := command.NewCreateProgressHandler(
		validator, prereqs, progressStore, progressStore, eventBus, log)
	resetProgressCmd := command.NewResetProgressHandler(
		validator, progressStore, progressStore, eventBus, log)
	enrollUserCmd := command.NewEnrollUserHandler(
		validator, enrollmentStore, enrollmentStore, eventBus, log)

	// A nil cache is fine: the handler computes summaries from PostgreSQL.
	var queryCache query.SummaryCache
	if summaryCache != nil {
		queryCache = summaryCache
	}
	getSummaryQuery := query.NewGetProgressSummaryHandler(validator, progressStore, queryCache, log)
	getProgressQuery := query.NewGetProgressHandler(progressStore)
	listUserProgressQuery := query.NewListUserProgressHandler(validator, progressStore)
	getHistoryQuery := query.NewGetProgressHistoryHandler(progressStore)
	listCoursesQuery := query.NewListCoursesHandler(courseRepo)
	getUserCoursesQuery := query.NewGetUserCoursesHandler(validator, enrollmentStore)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.EnableMetrics = cfg.Observability.MetricsEnabled
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	httpDeps := httpserver.Dependencies{
		CreateProgressHandler:     createProgressCmd,
		ResetProgressHandler:      resetProgressCmd,
		EnrollUserHandler:         enrollUserCmd,
		GetProgressHandler:        getProgressQuery,
		ListUserProgressHandler:   listUserProgressQuery,
		GetProgressHistoryHandler: getHistoryQuery,
		GetProgressSummaryHandler: getSummaryQuery,
		GetUserCoursesHandler:     getUserCoursesQuery,
		ListCoursesHandler:        listCoursesQuery,
		Logger:                    log,
		DatabaseHealth:            dbConn,
		EventBusMetrics:           eventBusMetricsSource{metrics: eventBus.Metrics()},
	}
	if redisCache != nil {
		httpDeps.CacheHealth = redisCache
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 11. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := httpServer.StartAsync()
	log.Info("Progress Hub API is running", logger.String("address", httpServer.Address()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("http server error", logger.Err(err))
		return err
	}

	log.Info("starting graceful shutdown...",
		logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	// Event bus и база данных закроются через defer.

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADAPTERS
// These adapt infrastructure implementations to interface-layer contracts.
// ══════════════════════════════════════════════════════════════════════════════

// eventBusMetricsSource adapts messaging.EventBusMetrics to httpserver.MetricsSource.
type eventBusMetricsSource struct {
	metrics *messaging.EventBusMetrics
}

func (s eventBusMetricsSource) Snapshot() interface{} {
	return s.metrics.Snapshot()
}
