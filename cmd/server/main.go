package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/volunteer/api/handler"
	"github.com/fastygo/volunteer/internal/config"
	"github.com/fastygo/volunteer/internal/infrastructure/monitor"
	"github.com/fastygo/volunteer/internal/infrastructure/outbox"
	pgInfra "github.com/fastygo/volunteer/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/volunteer/internal/infrastructure/redis"
	"github.com/fastygo/volunteer/internal/middleware"
	"github.com/fastygo/volunteer/internal/router"
	"github.com/fastygo/volunteer/internal/services"
	"github.com/fastygo/volunteer/internal/services/lifecycle"
	"github.com/fastygo/volunteer/pkg/httpcontext"
	"github.com/fastygo/volunteer/pkg/logger"
	"github.com/fastygo/volunteer/repository"
	"github.com/fastygo/volunteer/repository/memory"
	"github.com/fastygo/volunteer/repository/postgres"
	redisRepo "github.com/fastygo/volunteer/repository/redis"
	registrationUC "github.com/fastygo/volunteer/usecase/registration"
	searchUC "github.com/fastygo/volunteer/usecase/search"
	taskUC "github.com/fastygo/volunteer/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	var (
		pool          *pgxpool.Pool
		taskRepo      repository.TaskRepository
		registrations repository.RegistrationRepository
		regOpts       []registrationUC.Option
	)

	if cfg.UsesPostgres() {
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}

		pool, err = pgInfra.NewPool(appCtx, cfg.Database, cfg.AppName, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})

		taskRepo = postgres.NewTaskRepository(pool)
		registrations = postgres.NewRegistrationRepository(pool)
		regOpts = append(regOpts, registrationUC.WithTransactor(postgres.NewTransactor(pool)))
	} else {
		zapLogger.Warn("using in-memory storage; data is lost on restart")
		taskRepo = memory.NewTaskStore()
		registrations = memory.NewRegistrationStore()
	}

	var redisClient *redislib.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			// keep an unverified client; the monitor reports when redis comes back
			zapLogger.Warn("redis unreachable at startup, notifications queue until it recovers", zap.Error(err))
			redisClient, err = redisInfra.Open(cfg.Redis)
			if err != nil {
				zapLogger.Fatal("invalid redis configuration", zap.Error(err))
			}
		}
		client := redisClient
		manager.RegisterCloser("redis", func() error {
			return redisInfra.Close(client, zapLogger)
		})
		taskRepo = redisRepo.NewCachedTaskRepository(taskRepo, redisClient, cfg.Storage.FeaturedCacheTTL, zapLogger)
	}

	var outboxStore *outbox.Store
	if cfg.Notify.Enabled {
		outboxStore, err = outbox.Open(cfg.Outbox.Path, cfg.Outbox.MaxSize)
		if err != nil {
			zapLogger.Fatal("failed to open notification outbox", zap.Error(err))
		}
		manager.RegisterCloser("outbox", outboxStore.Close)
	}

	mon := monitor.New(pool, redisClient, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	if cfg.Notify.Enabled {
		var publisher services.Publisher
		if redisClient != nil {
			publisher = services.NewRedisPublisher(redisClient, cfg.Notify.Channel)
		}
		dispatcher := services.NewNotificationDispatcher(
			publisher,
			outboxStore,
			mon,
			zapLogger,
			services.DispatcherConfig{
				Interval:   cfg.Outbox.DrainInterval,
				BatchSize:  cfg.Outbox.BatchSize,
				MaxRetries: cfg.Outbox.MaxRetry,
			},
		)
		dispatcher.Start()
		manager.RegisterStopper("notification_dispatcher", dispatcher.Stop)
		regOpts = append(regOpts, registrationUC.WithNotifier(dispatcher))
	}

	taskUseCase := taskUC.New(taskRepo, registrations, zapLogger)
	registrationUseCase := registrationUC.New(taskRepo, registrations, taskUseCase, zapLogger, regOpts...)
	searchUseCase := searchUC.New(taskRepo, zapLogger)

	closer := services.NewTaskCloser(taskUseCase, cfg.Scheduler.TaskCloseInterval, zapLogger)
	closer.Start()
	manager.RegisterStopper("task_closer", closer.Stop)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:         apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Registration: apiHandler.NewRegistrationHandler(registrationUseCase, taskUseCase, ctxAdapter, zapLogger),
		Search:       apiHandler.NewSearchHandler(searchUseCase, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers, middleware.TrustedIdentity(zapLogger))

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
