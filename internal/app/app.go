package app

import (
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/meiduo/storefront-backend/internal/config"
	"github.com/meiduo/storefront-backend/internal/health"
	"github.com/meiduo/storefront-backend/internal/observability"
	"github.com/meiduo/storefront-backend/internal/service"
)

// App aggregates everything the process owns so main can start and stop it
// in one place.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
	RedisVerify   redis.UniversalClient
	RedisHistory  redis.UniversalClient
	MailQueue     *service.MailQueue
	Readiness     *health.ProbeRunner

	Registration    service.RegistrationServiceInterface
	Email           service.EmailServiceInterface
	BrowsingHistory service.BrowsingHistoryServiceInterface
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisVerify VerifyRedis,
	redisHistory HistoryRedis,
	mailQueue *service.MailQueue,
	readiness *health.ProbeRunner,
	registration service.RegistrationServiceInterface,
	email service.EmailServiceInterface,
	browsingHistory service.BrowsingHistoryServiceInterface,
) *App {
	return &App{
		Config:          cfg,
		Logger:          logger,
		Server:          server,
		Observability:   runtime,
		DB:              db,
		RedisVerify:     redisVerify,
		RedisHistory:    redisHistory,
		MailQueue:       mailQueue,
		Readiness:       readiness,
		Registration:    registration,
		Email:           email,
		BrowsingHistory: browsingHistory,
	}
}

// VerifyRedis and HistoryRedis are distinct types so dependency injection can
// tell the two redis backends apart.
type VerifyRedis redis.UniversalClient

type HistoryRedis redis.UniversalClient
