package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/Elmamis69/ticket-master-api/internal/api/http"
	"github.com/Elmamis69/ticket-master-api/internal/api/http/handlers"
	"github.com/Elmamis69/ticket-master-api/internal/auth"
	"github.com/Elmamis69/ticket-master-api/internal/config"
	"github.com/Elmamis69/ticket-master-api/internal/events"
	"github.com/Elmamis69/ticket-master-api/internal/metrics"
	"github.com/Elmamis69/ticket-master-api/internal/observability"
	"github.com/Elmamis69/ticket-master-api/internal/persistence"
	"github.com/Elmamis69/ticket-master-api/internal/repository"
	"github.com/Elmamis69/ticket-master-api/internal/repository/memory"
	"github.com/Elmamis69/ticket-master-api/internal/service"
	"github.com/Elmamis69/ticket-master-api/internal/worker"
)

type repositories struct {
	users    repository.UserRepository
	tickets  repository.TicketRepository
	comments repository.CommentRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	influx := persistence.NewInflux(ctx, cfg.Influx, logger)
	defer influx.Close()

	repos := buildRepositories(pg)

	sink := buildSink(cfg.Metrics, influx, redis, logger)
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("failed to close metrics sink", zap.Error(err))
		}
	}()

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartMetricsWorker(service.NewMetricsService(dispatcher, sink, logger))

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: repos.users})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repos.tickets,
		UserRepo:   repos.users,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		TicketRepo:  repos.tickets,
		CommentRepo: repos.comments,
		Dispatcher:  dispatcher,
	})
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		TicketRepo: repos.tickets,
		UserRepo:   repos.users,
	})

	requestMetrics := observability.NewMetrics()

	app := httptransport.NewApp(cfg.App.Name, logger)
	httptransport.RegisterMiddlewares(app, logger, requestMetrics, cfg.App.RequestTimeout(), cfg.App.CORSOrigins)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Dependency{
			"postgres": pg,
			"redis":    redis,
			"influx":   influx,
		}, requestMetrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func buildRepositories(pg *persistence.Postgres) repositories {
	if !pg.Enabled() {
		store := memory.NewStore()
		return repositories{users: store.Users(), tickets: store.Tickets(), comments: store.Comments()}
	}
	pool := pg.PoolHandle()
	return repositories{
		users:    repository.NewUserRepository(pool),
		tickets:  repository.NewTicketRepository(pool),
		comments: repository.NewCommentRepository(pool),
	}
}

func buildSink(cfg config.MetricsConfig, influx *persistence.Influx, redis *persistence.Redis, logger *zap.Logger) metrics.Sink {
	switch cfg.Backend {
	case config.MetricsBackendInflux:
		if influx.Enabled() {
			return metrics.NewInfluxSink(influx.Client, influx.Org, influx.Bucket, logger)
		}
	case config.MetricsBackendRedis:
		if redis.Enabled() {
			return metrics.NewRedisStreamSink(redis.Client, cfg.StreamMaxLen, logger)
		}
	case config.MetricsBackendNone:
		return metrics.NopSink{}
	}
	logger.Warn("metrics backend not available; metrics disabled", zap.String("backend", string(cfg.Backend)))
	return metrics.NopSink{}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
