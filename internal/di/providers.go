package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/meiduo/storefront-backend/internal/app"
	"github.com/meiduo/storefront-backend/internal/config"
	"github.com/meiduo/storefront-backend/internal/database"
	"github.com/meiduo/storefront-backend/internal/health"
	"github.com/meiduo/storefront-backend/internal/http/router"
	"github.com/meiduo/storefront-backend/internal/observability"
	"github.com/meiduo/storefront-backend/internal/repository"
	"github.com/meiduo/storefront-backend/internal/security"
	"github.com/meiduo/storefront-backend/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideVerifyRedis,
	provideHistoryRedis,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewSKURepository,
)

var SecuritySet = wire.NewSet(
	provideJWTManager,
	security.NewPasswordHasher,
)

var ServiceSet = wire.NewSet(
	provideTokenService,
	provideVerificationCodeStore,
	provideBrowsingHistoryStore,
	service.NewRegistrationService,
	service.NewEmailService,
	service.NewBrowsingHistoryService,
	service.NewDevMailer,
	wire.Bind(new(service.Mailer), new(*service.DevMailer)),
	provideMailQueue,
	wire.Bind(new(service.RegistrationServiceInterface), new(*service.RegistrationService)),
	wire.Bind(new(service.EmailServiceInterface), new(*service.EmailService)),
	wire.Bind(new(service.BrowsingHistoryServiceInterface), new(*service.BrowsingHistoryService)),
)

var HTTPSet = wire.NewSet(
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

type MigrationRunner struct {
	db *gorm.DB
}

func NewMigrationRunner(db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

func (m *MigrationRunner) Run() error {
	if err := database.Migrate(m.db); err != nil {
		return err
	}
	if err := database.Seed(m.db); err != nil {
		return err
	}
	fmt.Println("migration complete")
	return nil
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if err := database.Seed(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideVerifyRedis(cfg *config.Config) app.VerifyRedis {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisVerifyDB,
	})
}

func provideHistoryRedis(cfg *config.Config) app.HistoryRedis {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisHistoryDB,
	})
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret)
}

func provideTokenService(cfg *config.Config, jwtMgr *security.JWTManager) *service.TokenService {
	return service.NewTokenService(jwtMgr, cfg.SessionTokenTTL)
}

func provideVerificationCodeStore(client app.VerifyRedis) service.VerificationCodeStore {
	return service.NewRedisVerificationCodeStore(client, "sms")
}

func provideBrowsingHistoryStore(client app.HistoryRedis) service.BrowsingHistoryStore {
	return service.NewRedisBrowsingHistoryStore(client, "history")
}

func provideMailQueue(cfg *config.Config, mailer service.Mailer, logger *slog.Logger) *service.MailQueue {
	return service.NewMailQueue(mailer, logger, cfg.MailQueueSize)
}

func provideRouterDependencies(readiness *health.ProbeRunner, cfg *config.Config) router.Dependencies {
	return router.Dependencies{
		Readiness:      readiness,
		EnableOTelHTTP: cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, verify app.VerifyRedis, history app.HistoryRedis) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 3)
	if c := health.NewDBChecker(db); c != nil {
		checkers = append(checkers, c)
	}
	if c := health.NewRedisChecker("redis_verify", verify); c != nil {
		checkers = append(checkers, c)
	}
	if c := health.NewRedisChecker("redis_history", history); c != nil {
		checkers = append(checkers, c)
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}
