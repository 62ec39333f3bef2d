// Package container wires the application together with Uber FX.
package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deliveria/api/internal/application/billing"
	"github.com/deliveria/api/internal/application/catalog"
	"github.com/deliveria/api/internal/application/order"
	"github.com/deliveria/api/internal/application/recommendation"
	"github.com/deliveria/api/internal/application/user"
	"github.com/deliveria/api/internal/domain/meal"
	"github.com/deliveria/api/internal/infrastructure/ai/groq"
	"github.com/deliveria/api/internal/infrastructure/config"
	"github.com/deliveria/api/internal/infrastructure/http/admin"
	"github.com/deliveria/api/internal/infrastructure/http/handlers"
	"github.com/deliveria/api/internal/infrastructure/http/server"
	"github.com/deliveria/api/internal/infrastructure/monitoring"
	gormrepo "github.com/deliveria/api/internal/infrastructure/persistence/gorm"
	"github.com/deliveria/api/internal/infrastructure/persistence/memory"
	"github.com/deliveria/api/internal/infrastructure/persistence/migrations"
	"github.com/deliveria/api/internal/infrastructure/persistence/postgres"
	rediscache "github.com/deliveria/api/internal/infrastructure/persistence/redis"
	"github.com/deliveria/api/internal/infrastructure/persistence/sqlite"
	"github.com/deliveria/api/internal/ports/inbound"
	"github.com/deliveria/api/internal/ports/outbound"
	"github.com/deliveria/api/pkg/healthcheck"
	"github.com/deliveria/api/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cacheKeyPrefix       = "deliveria:"
	memoryCacheSweep     = time.Minute
	seedTimeout          = 30 * time.Second
	tracingSetupDeadline = 10 * time.Second
)

// ConfigPath is the optional config file location; empty searches the
// default locations.
type ConfigPath string

// New returns the full application graph for the given config file.
func New(path string) fx.Option {
	return fx.Options(
		fx.Supply(ConfigPath(path)),
		Module,
	)
}

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	ObservabilityModule,
	DatabaseModule,
	CacheModule,
	RepositoryModule,
	GatewayModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration and its reload feed.
var ConfigModule = fx.Provide(provideConfig)

// LoggerModule provides logging
var LoggerModule = fx.Provide(provideLogger)

// ObservabilityModule provides metrics, tracing and health checks.
var ObservabilityModule = fx.Provide(
	monitoring.NewMetricsCollector,
	provideTracing,
	provideHealthCheck,
)

// DatabaseModule provides the gorm handle for the configured driver.
var DatabaseModule = fx.Provide(provideDatabase)

// CacheModule provides caching
var CacheModule = fx.Provide(provideCache)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormrepo.NewMealRepository,
	gormrepo.NewUserRepository,
	gormrepo.NewOrderRepository,
)

// GatewayModule provides the generative text gateway, or nil when disabled.
var GatewayModule = fx.Provide(provideGateway)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	meal.DefaultKnowledge,
	provideAdvisor,
	func(meals outbound.MealRepository, cache outbound.CacheRepository, cfg *config.Config, log *zap.Logger) inbound.CatalogService {
		return catalog.NewService(meals, cache, cfg.Redis.CacheTTL, log)
	},
	fx.Annotate(user.NewService, fx.As(new(inbound.UserService))),
	fx.Annotate(order.NewService, fx.As(new(inbound.OrderService))),
	func(cfg *config.Config, log *zap.Logger) inbound.BillingService {
		return billing.NewService(cfg.Loyalty.CashbackRate, log)
	},
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	handlers.NewHandlers,
	server.NewServer,
	admin.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	// The global tracer provider must be installed before any span starts.
	func(*monitoring.TracingProvider) {},
	RegisterDBMetrics,
	SeedCatalog,
	RegisterLifecycleHooks,
)

// Reloads fans out configuration file changes to subscribers.
type Reloads struct {
	mu     sync.Mutex
	logger *zap.Logger
	subs   []func(*config.Config)
}

// Subscribe registers fn for every valid configuration change.
func (r *Reloads) Subscribe(fn func(*config.Config)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
}

func (r *Reloads) changed(cfg *config.Config) {
	r.mu.Lock()
	subs := append([]func(*config.Config){}, r.subs...)
	log := r.logger
	r.mu.Unlock()

	if log != nil {
		log.Info("Configuration reloaded", zap.String("file", cfg.ConfigFile))
	}
	for _, fn := range subs {
		fn(cfg)
	}
}

func (r *Reloads) failed(err error) {
	r.mu.Lock()
	log := r.logger
	r.mu.Unlock()

	if log != nil {
		log.Warn("Ignoring invalid configuration change", zap.Error(err))
	}
}

func (r *Reloads) setLogger(log *zap.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = log
}

func provideConfig(path ConfigPath) (*config.Config, *Reloads, error) {
	reloads := &Reloads{}
	cfg, err := config.Watch(string(path), reloads.changed, reloads.failed)
	if err != nil {
		return nil, nil, err
	}
	return cfg, reloads, nil
}

// provideLogger builds the root logger. Only the level follows config
// reloads; everything else needs a restart.
func provideLogger(cfg *config.Config, reloads *Reloads) (*zap.Logger, zap.AtomicLevel, error) {
	log, level, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.App.Debug,
	})
	if err != nil {
		return nil, level, fmt.Errorf("failed to build logger: %w", err)
	}
	log = log.With(
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)

	reloads.setLogger(log)
	reloads.Subscribe(func(next *config.Config) {
		want := logger.ParseLevel(next.Logging.Level)
		if level.Level() != want {
			level.SetLevel(want)
			log.Info("Log level changed", zap.Stringer("level", want))
		}
	})
	return log, level, nil
}

func provideTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), tracingSetupDeadline)
	defer cancel()

	tp, err := monitoring.NewTracingProvider(ctx, monitoring.TracingConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
		SamplingRate:   cfg.Monitoring.SamplingRate,
		Enabled:        cfg.Monitoring.TracingEnabled,
	}, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(tp.Shutdown))
	return tp, nil
}

func provideHealthCheck(cfg *config.Config, log *zap.Logger, db *gorm.DB, cache outbound.CacheRepository) (*healthcheck.HealthCheck, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	hc := healthcheck.New(cfg.App.Version, log)
	hc.Register("database", healthcheck.NewDatabaseChecker(sqlDB))
	hc.Register("cache", healthcheck.NewPingChecker("cache", cache))
	hc.Register("generation", healthcheck.NewCustomChecker("generation",
		func(ctx context.Context) (healthcheck.Status, string, interface{}) {
			// A disabled gateway only means deterministic answers.
			meta := map[string]interface{}{"enabled": cfg.AI.Enabled}
			if cfg.AI.Enabled {
				meta["model"] = cfg.AI.Model
			}
			return healthcheck.StatusHealthy, "", meta
		}))
	return hc, nil
}

func provideDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dbCfg := cfg.Database

	if dbCfg.Driver == "postgres" {
		if dbCfg.AutoMigrate {
			if err := migrate(dbCfg.DSN, log); err != nil {
				return nil, err
			}
		}

		cm, err := postgres.NewConnectionManager(dbCfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		lc.Append(fx.StopHook(cm.Close))
		return cm.GetDB(), nil
	}

	db, err := sqlite.SetupDatabase(dbCfg.DSN, gormrepo.NewLogger(log, dbCfg.LogLevel, dbCfg.SlowQueryThreshold))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	lc.Append(fx.StopHook(sqlDB.Close))

	log.Info("Connected to SQLite database",
		zap.String("path", dbCfg.DSN),
		zap.Bool("in_memory", dbCfg.DSN == "" || dbCfg.DSN == ":memory:"),
	)
	return db, nil
}

func migrate(dsn string, log *zap.Logger) error {
	m, err := migrations.New(dsn, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

// provideCache connects to Redis when enabled. An unreachable Redis degrades
// to the in-process cache instead of failing startup.
func provideCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) outbound.CacheRepository {
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout+time.Second)
		defer cancel()

		cache, err := rediscache.NewCacheRepository(ctx, rediscache.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    cacheKeyPrefix,
		}, log)
		if err == nil {
			lc.Append(fx.StopHook(cache.Close))
			return cache
		}
		log.Warn("Redis unavailable, using in-memory cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	cache := memory.NewCacheRepository(memoryCacheSweep)
	lc.Append(fx.StopHook(cache.Close))
	return cache
}

// provideGateway returns an untyped nil when generation is disabled so the
// advisor sees a nil interface and bypasses the gateway.
func provideGateway(cfg *config.Config, log *zap.Logger) (outbound.TextGenerator, error) {
	if !cfg.AI.Enabled {
		log.Info("Generative gateway disabled by configuration")
		return nil, nil
	}

	client, err := groq.NewClient(groq.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create groq client: %w", err)
	}
	return client, nil
}

func provideAdvisor(gateway outbound.TextGenerator, knowledge *meal.Knowledge, metrics *monitoring.MetricsCollector, log *zap.Logger) inbound.Advisor {
	return recommendation.NewService(gateway, knowledge, log, recommendation.WithObserver(metrics))
}

// RegisterDBMetrics exports connection pool statistics.
func RegisterDBMetrics(cfg *config.Config, db *gorm.DB, metrics *monitoring.MetricsCollector) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	metrics.RegisterDB(sqlDB, cfg.Database.Driver)
	return nil
}

// SeedCatalog fills an empty meal catalog on startup when seeding is enabled.
func SeedCatalog(lc fx.Lifecycle, cfg *config.Config, meals outbound.MealRepository, knowledge *meal.Knowledge, log *zap.Logger) {
	if !cfg.Database.Seed {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, seedTimeout)
			defer cancel()
			return gormrepo.SeedCatalog(ctx, meals, knowledge, log)
		},
	})
}

// RegisterLifecycleHooks starts and stops the listeners with the app.
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	api *server.Server,
	adminServer *admin.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Deliveria API",
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
				zap.Bool("generation_enabled", cfg.AI.Enabled),
			)

			if err := api.Start(); err != nil {
				return err
			}
			if !cfg.Admin.Enabled {
				return nil
			}
			if err := adminServer.Start(); err != nil {
				_ = api.Stop(ctx)
				return err
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Deliveria API")

			var firstErr error
			if cfg.Admin.Enabled {
				if err := adminServer.Stop(ctx); err != nil {
					log.Error("Failed to shutdown admin server", zap.Error(err))
					firstErr = err
				}
			}
			if err := api.Stop(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
				if firstErr == nil {
					firstErr = err
				}
			}

			_ = log.Sync()
			return firstErr
		},
	})
}
