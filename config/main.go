package config

import (
	"context"
	"time"

	"github.com/akeren/trustlink-waitlist/config/router"
	"github.com/akeren/trustlink-waitlist/internal/log"
	"github.com/akeren/trustlink-waitlist/internal/models"
	"github.com/akeren/trustlink-waitlist/pkg/constants"
	"gorm.io/gorm"
)

type ApplicationConfig struct {
	DB              *gorm.DB
	RouterService   *router.RouterService
	Logger          *log.Logger
	Config          *AppConfig
	TracingShutdown func(context.Context) error
}

type AppConfig struct {
	// AdminKey is the shared secret expected in the x-admin-key header. Empty
	// means every admin request is rejected.
	AdminKey          string
	RequestTimeout    time.Duration
	StoreQueryTimeout time.Duration
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		AdminKey:          sanitizeEnv(GetValueFromEnvironmentVariable("ADMIN_KEY", "")),
		RequestTimeout:    GetPositiveDurationFromEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		StoreQueryTimeout: GetPositiveDurationFromEnv("STORE_QUERY_TIMEOUT", constants.DefaultStoreQueryTimeout),
	}
}

// Cleanup releases resources in reverse order of acquisition: the router,
// then the tracer (flushing pending spans), then the database pool.
func (ac *ApplicationConfig) Cleanup() {
	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	shutdownTracing(ac.Logger, ac.TracingShutdown)

	if ac.DB != nil {
		CloseDatabase(ac.DB, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

func shutdownTracing(logger *log.Logger, shutdown func(context.Context) error) {
	if shutdown == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown tracer provider", "error", err)
	}
}

// LoadApplicationConfiguration reads the environment, connects to the store
// and builds the router. With autoMigrate the waitlist table and its aggregate
// views are created, which is refused outside development-like environments.
func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		if err := checkAutoMigrate(logger); err != nil {
			return nil, err
		}
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	db, err := NewDatabase(logger, NewDBConfigFromEnv())
	if err != nil {
		shutdownTracing(logger, tracingShutdown)
		return nil, err
	}

	if autoMigrate {
		if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
			CloseDatabase(db, logger)
			shutdownTracing(logger, tracingShutdown)
			return nil, err
		}
	}

	appConfig := NewAppConfig()
	if appConfig.AdminKey == "" {
		logger.Warn("ADMIN_KEY is not set; all admin endpoints will respond 401")
	}

	routerService := router.CreateRouterService(logger, &router.RouterConfig{
		RequestTimeout: appConfig.RequestTimeout,
	})

	logger.Info("Application configuration loaded successfully",
		"request_timeout", appConfig.RequestTimeout,
		"store_query_timeout", appConfig.StoreQueryTimeout,
	)

	return &ApplicationConfig{
		DB:              db,
		RouterService:   routerService,
		Logger:          logger,
		Config:          appConfig,
		TracingShutdown: tracingShutdown,
	}, nil
}

func checkAutoMigrate(logger *log.Logger) error {
	appEnv := GetAppEnv()
	if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
		return err
	}
	if appEnv == "" {
		logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
	}
	return nil
}
