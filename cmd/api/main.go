package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/grievance-service/internal/api/http"
	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/outbound"
	"github.com/spec-kit/grievance-service/internal/persistence"
	"github.com/spec-kit/grievance-service/internal/queue"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/repository/memory"
	"github.com/spec-kit/grievance-service/internal/service"
	"github.com/spec-kit/grievance-service/internal/worker"
)

type repositories struct {
	migrants    repository.MigrantRepository
	agencies    repository.AgencyRepository
	departments repository.DepartmentRepository
	governments repository.GovernmentRepository
	complaints  repository.ComplaintRepository
	history     repository.ComplaintHistoryRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dependencies := map[string]handlers.Pinger{"postgres": nil, "redis": nil}

	var repos repositories
	if cfg.Postgres.DSN != "" {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		dependencies["postgres"] = pg

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		pool := pg.PoolHandle()
		repos = repositories{
			migrants:    repository.NewMigrantRepository(pool),
			agencies:    repository.NewAgencyRepository(pool),
			departments: repository.NewDepartmentRepository(pool),
			governments: repository.NewGovernmentRepository(pool),
			complaints:  repository.NewComplaintRepository(pool),
			history:     repository.NewComplaintHistoryRepository(pool),
		}
	} else {
		logger.Warn("POSTGRES_DSN not set; using in-memory store")
		store := memory.NewStore()
		repos = repositories{
			migrants:    store.Migrants(),
			agencies:    store.Agencies(),
			departments: store.Departments(),
			governments: store.Governments(),
			complaints:  store.Complaints(),
			history:     store.History(),
		}
	}

	var classificationQueue queue.ClassificationQueue
	if cfg.Redis.Addr != "" {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		dependencies["redis"] = redis
		classificationQueue = queue.NewRedisQueue(redis.Client, cfg.Redis.QueueKey)
	} else {
		logger.Warn("REDIS_ADDR not set; classification retries are kept in memory")
		classificationQueue = queue.NewMemoryQueue()
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), logger)

	credentials := service.NewCredentialService(*cfg, service.CredentialDependencies{
		MigrantRepo:    repos.migrants,
		AgencyRepo:     repos.agencies,
		DepartmentRepo: repos.departments,
		GovernmentRepo: repos.governments,
		Logger:         logger,
	})
	verification := service.NewVerificationService(service.VerificationDependencies{
		MigrantRepo:    repos.migrants,
		AgencyRepo:     repos.agencies,
		DocumentReader: outbound.NewDocumentReaderClient(cfg.DocumentReader, metrics),
		Geocoder:       outbound.NewGeocoderClient(cfg.Geocoder, metrics),
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
	})
	reviews := service.NewAgencyReviewService(service.AgencyReviewDependencies{
		AgencyRepo:    repos.agencies,
		ComplaintRepo: repos.complaints,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
	})
	complaints := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo:  repos.complaints,
		HistoryRepo:    repos.history,
		DepartmentRepo: repos.departments,
		Classifier:     outbound.NewClassifierClient(cfg.Classifier, metrics),
		Queue:          classificationQueue,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
		MaxTextLength:  cfg.App.MaxComplaintLength,
	})

	var workers sync.WaitGroup
	if cfg.Worker.Enabled {
		classificationWorker := worker.NewClassificationWorker(complaints, classificationQueue,
			cfg.Worker.RetryDelay(), cfg.Worker.PopTimeout(), metrics, logger)
		workers.Add(1)
		go func() {
			defer workers.Done()
			classificationWorker.Run(ctx)
		}()
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:     cfg.App.RequestTimeout(),
		CORSOrigins: cfg.App.CORSOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Auth:       handlers.NewAuthHandler(credentials, verification),
		Agency:     handlers.NewAgencyHandler(credentials, verification),
		Department: handlers.NewDepartmentHandler(credentials, complaints),
		Government: handlers.NewGovernmentHandler(credentials, reviews, complaints),
		Complaints: handlers.NewComplaintsHandler(complaints),
		Sessions:   auth.NewSessionMiddleware(credentials.TokenManager(), credentials),
		Metrics:    metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	workers.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
