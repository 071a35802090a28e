package application

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"driver_training_service/internal/config"
	"driver_training_service/internal/domain/service"
	"driver_training_service/internal/infrastructure/persistence"
	"driver_training_service/internal/server"
	syncx "driver_training_service/internal/sync"
	"driver_training_service/internal/tasks"
	"driver_training_service/pkg/application/connectors"
	"driver_training_service/pkg/application/modules"
	"driver_training_service/pkg/contextx"
	"driver_training_service/pkg/middlewarex"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type App struct {
	cfg         config.Config
	slog        *connectors.Slog
	postgres    *connectors.Postgres
	redis       *connectors.Redis
	httpServer  modules.HTTPServer
	asynqServer modules.AsynqServer
}

func New(appVersion string) App {
	const appName = "driver_training_service"

	cfg := lo.Must(config.Load())

	return App{
		cfg: cfg,
		slog: &connectors.Slog{
			Name:    appName,
			Version: appVersion,
			Debug:   cfg.Debug,
		},
		postgres: &connectors.Postgres{
			DSN:             cfg.Postgres.DSN,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		},
		redis: &connectors.Redis{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},

		httpServer: modules.HTTPServer{
			ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		},
		asynqServer: modules.AsynqServer{},
	}
}

func (app App) shutdown(ctx context.Context) {
	app.postgres.Close(ctx)
}

func (app App) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)

	defer stop()

	ctx = contextx.WithLogger(ctx, app.slog.Logger(ctx))

	defer app.shutdown(ctx)

	logger(ctx).Info("config", slog.Any("config", app.cfg))

	client := app.postgres.Client(ctx)
	userRepo := persistence.NewUserRepository(client, app.cfg.Sync.QueryTimeout)
	videoRepo := persistence.NewVideoRepository(client, app.cfg.Sync.QueryTimeout)
	assignmentRepo := persistence.NewAssignmentRepository(client, app.cfg.Sync.QueryTimeout)

	bus := syncx.NewBus()
	governor := syncx.NewGovernor(app.cfg.Sync.MinRefreshInterval)
	reconciler := syncx.NewReconciler(ctx, bus, governor)
	defer reconciler.DetachAll()

	userService := service.NewUserService(userRepo, reconciler, governor)
	videoService := service.NewVideoService(videoRepo, reconciler, governor)
	assignmentService := service.NewAssignmentService(assignmentRepo, reconciler, governor)
	statsService := service.NewStatisticsService(assignmentService)

	listener := persistence.NewListener(
		app.cfg.Postgres.DSN,
		app.cfg.Sync.ListenerMinReconnect,
		app.cfg.Sync.ListenerMaxReconnect,
		bus,
	)

	asynqClient := asynq.NewClient(app.redis.ClientOpt())
	defer asynqClient.Close()

	sweeper := service.NewRenewalSweeper(assignmentRepo, asynqClient)

	g, ctx := errgroup.WithContext(ctx)

	app.httpServer.Run(ctx, g, app.newHTTPServer(ctx, userService, videoService, assignmentService, statsService))
	app.asynqServer.Run(ctx, g, app.newAsynqServer(), app.newAsynqMux(sweeper), app.newScheduler())

	g.Go(func() error {
		return listener.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}

func (app App) newHTTPServer(
	ctx context.Context,
	userService *service.UserService,
	videoService *service.VideoService,
	assignmentService *service.AssignmentService,
	statsService *service.StatisticsService,
) *http.Server {
	router := chi.NewRouter()

	router.Use(
		middleware.RealIP,
		middlewarex.Logger,
	)

	server.NewServer(
		userService,
		videoService,
		assignmentService,
		statsService,
	).RegisterRoutes(router)

	return &http.Server{
		//nolint:exhaustruct
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
		Addr:              app.cfg.HTTP.ListenAddress,
		WriteTimeout:      app.cfg.HTTP.WriteTimeout,
		ReadTimeout:       app.cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: app.cfg.HTTP.ReadTimeout,
		IdleTimeout:       app.cfg.HTTP.IdleTimeout,
		Handler:           router,
	}
}

func (app App) newAsynqServer() *asynq.Server {
	return asynq.NewServer(app.redis.ClientOpt(), asynq.Config{
		Concurrency: 1,
		Queues: map[string]int{
			"default":            1,
			tasks.QueueReminders: 1,
		},
	})
}

func (app App) newAsynqMux(sweeper *service.RenewalSweeper) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRenewalSweep, sweeper.HandleSweep)
	mux.HandleFunc(tasks.TypeRenewalRemind, sweeper.HandleRemind)
	return mux
}

func (app App) newScheduler() *asynq.Scheduler {
	scheduler := asynq.NewScheduler(app.redis.ClientOpt(), nil)
	lo.Must(scheduler.Register(app.cfg.Sync.SweepSchedule, tasks.NewRenewalSweep()))
	return scheduler
}
