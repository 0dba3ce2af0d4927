package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/production-portal-backend/internal/clients/redis"
	"github.com/yungbote/production-portal-backend/internal/data/aggregates"
	"github.com/yungbote/production-portal-backend/internal/data/db"
	catalogrepo "github.com/yungbote/production-portal-backend/internal/data/repos/catalog"
	productionrepo "github.com/yungbote/production-portal-backend/internal/data/repos/production"
	userrepo "github.com/yungbote/production-portal-backend/internal/data/repos/user"
	apphttp "github.com/yungbote/production-portal-backend/internal/http"
	httpH "github.com/yungbote/production-portal-backend/internal/http/handlers"
	httpMW "github.com/yungbote/production-portal-backend/internal/http/middleware"
	"github.com/yungbote/production-portal-backend/internal/observability"
	"github.com/yungbote/production-portal-backend/internal/platform/gcp"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
	"github.com/yungbote/production-portal-backend/internal/services"
)

type Repos struct {
	Users    userrepo.UserRepo
	Catalogs catalogrepo.CatalogRepo
	Requests productionrepo.ProductionRequestRepo
	Details  productionrepo.DetailRepo
	History  productionrepo.HistoryRepo
}

type Clients struct {
	Redis  goredis.UniversalClient
	Events redisclient.EventBus
	Blobs  gcp.BlobStore
}

type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Catalog     services.CatalogService
	Production  services.ProductionService
	Attachments services.AttachmentService
}

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Metrics  *observability.Metrics
	Repos    Repos
	Clients  Clients
	Services Services
	Server   *apphttp.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	logMode := strings.TrimSpace(os.Getenv("LOG_MODE"))
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.OtelEnvironment,
		Version:     cfg.OtelVersion,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     cfg.OtelHeaders,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})
	metrics := observability.Init(cfg.MetricsEnabled)

	dbService, err := db.Open(db.Config{
		Driver:           cfg.DBDriver,
		PostgresHost:     cfg.PostgresHost,
		PostgresPort:     cfg.PostgresPort,
		PostgresUser:     cfg.PostgresUser,
		PostgresPassword: cfg.PostgresPassword,
		PostgresName:     cfg.PostgresName,
		PostgresSSLMode:  cfg.PostgresSSLMode,
		SQLitePath:       cfg.SQLitePath,
		MaxOpenConns:     cfg.PostgresMaxConns,
	}, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := dbService.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if cfg.SeedCatalogs {
		if err := db.SeedCatalogs(theDB, log); err != nil {
			_ = dbService.Close()
			log.Sync()
			return nil, fmt.Errorf("seed catalogs: %w", err)
		}
	}

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, metrics, reposet, clients)
	server := apphttp.NewServer(wireRouter(theDB, log, cfg, metrics, serviceset))

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           dbService,
		Metrics:      metrics,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if cfg.RedisAddr != "" {
		rdb, err := redisclient.NewClient(ctx, log, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		bus, err := redisclient.NewEventBus(log, rdb, cfg.EventsChannel)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init event bus: %w", err)
		}
		out.Redis = rdb
		out.Events = bus
	}

	blobs, err := resolveBlobStore(ctx, log, cfg, metrics)
	if err != nil {
		if out.Redis != nil {
			_ = out.Redis.Close()
		}
		return Clients{}, fmt.Errorf("init blob store: %w", err)
	}
	out.Blobs = blobs
	return out, nil
}

func wireRepos(theDB *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Users:    userrepo.NewUserRepo(theDB, log),
		Catalogs: catalogrepo.NewCatalogRepo(theDB, log),
		Requests: productionrepo.NewProductionRequestRepo(theDB, log),
		Details:  productionrepo.NewDetailRepo(theDB, log),
		History:  productionrepo.NewHistoryRepo(theDB, log),
	}
}

func wireServices(theDB *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	base := aggregates.BaseDeps{
		DB:    theDB,
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics),
	}
	if clients.Redis != nil {
		base.Locker = redisclient.NewLocker(log, clients.Redis, cfg.RequestLockTTL)
	}
	agg := aggregates.NewProductionRequestAggregate(aggregates.ProductionRequestAggregateDeps{
		Base:     base,
		Requests: reposet.Requests,
		Details:  reposet.Details,
		History:  reposet.History,
		Catalogs: reposet.Catalogs,
		Users:    reposet.Users,
	})

	catalogDeps := services.CatalogServiceDeps{
		Log:     log,
		Repo:    reposet.Catalogs,
		Metrics: metrics,
		TTL:     cfg.CatalogTTL,
	}
	if clients.Redis != nil {
		catalogDeps.Shared = redisclient.NewCatalogCache(log, clients.Redis, cfg.CatalogTTL)
	}

	prodDeps := services.ProductionServiceDeps{
		Log:       log,
		Aggregate: agg,
		Requests:  reposet.Requests,
		History:   reposet.History,
		Users:     reposet.Users,
		Metrics:   metrics,
	}
	if clients.Events != nil {
		prodDeps.Events = clients.Events
	}
	production := services.NewProductionService(prodDeps)

	return Services{
		Auth:       services.NewAuthService(log, reposet.Users, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		User:       services.NewUserService(log, reposet.Users),
		Catalog:    services.NewCatalogService(catalogDeps),
		Production: production,
		Attachments: services.NewAttachmentService(services.AttachmentServiceDeps{
			Log:        log,
			Blobs:      clients.Blobs,
			Production: production,
			Metrics:    metrics,
		}),
	}
}

func wireRouter(theDB *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, serviceset Services) apphttp.RouterConfig {
	log.Info("Wiring handlers...")
	return apphttp.RouterConfig{
		Log:            log,
		ServiceName:    cfg.OtelServiceName,
		TracingEnabled: cfg.OtelEnabled,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		Metrics:        metrics,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, serviceset.Auth),
		HealthHandler:  httpH.NewHealthHandler(theDB),
		UserHandler:    httpH.NewUserHandler(serviceset.User),
		CatalogHandler: httpH.NewCatalogHandler(log, serviceset.Catalog),
		ProductionHandler: httpH.NewProductionHandler(httpH.ProductionHandlerDeps{
			Log:         log,
			Production:  serviceset.Production,
			Attachments: serviceset.Attachments,
		}),
	}
}

// Start launches the background collectors and the change-event mirror.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB.DB(), 15*time.Second)
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis, 15*time.Second)

	if a.Clients.Events != nil {
		go func() {
			err := a.Clients.Events.StartForwarder(ctx, func(ev redisclient.ChangeEvent) {
				a.Log.Debug("change event", "type", ev.Type, "id", ev.ID, "stage", ev.Stage, "version", ev.Version)
			})
			if err != nil && ctx.Err() == nil {
				a.Log.Warn("change event mirror stopped", "error", err)
			}
		}()
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + strings.TrimPrefix(a.Cfg.Port, ":")
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(addr)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("http shutdown", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Clients.Redis != nil {
		_ = a.Clients.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
