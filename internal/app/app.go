package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mercatto/catalog-sync/config"
	kafkactrl "github.com/mercatto/catalog-sync/internal/controller/kafka"
	"github.com/mercatto/catalog-sync/internal/controller/restapi"
	"github.com/mercatto/catalog-sync/internal/controller/worker/reconcile"
	"github.com/mercatto/catalog-sync/internal/infrastructure/fetcher"
	infrakafka "github.com/mercatto/catalog-sync/internal/infrastructure/kafka"
	"github.com/mercatto/catalog-sync/internal/infrastructure/transcoder"
	"github.com/mercatto/catalog-sync/internal/repo/persistent"
	"github.com/mercatto/catalog-sync/internal/usecase/cleanup"
	"github.com/mercatto/catalog-sync/internal/usecase/clone"
	"github.com/mercatto/catalog-sync/internal/usecase/fork"
	"github.com/mercatto/catalog-sync/internal/usecase/internalize"
	"github.com/mercatto/catalog-sync/internal/usecase/syncjob"
	"github.com/mercatto/catalog-sync/pkg/httpserver"
	"github.com/mercatto/catalog-sync/pkg/kafka/consumer"
	"github.com/mercatto/catalog-sync/pkg/kafka/producer"
	"github.com/mercatto/catalog-sync/pkg/logger"
	"github.com/mercatto/catalog-sync/pkg/postgres"
	"github.com/mercatto/catalog-sync/pkg/s3client"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// s3
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}

	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	// migrations
	if err := postgres.Migrate(cfg.PG.URL, cfg.PG.MigrationsDir); err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.Migrate: %w", err))
	}

	productRepo := persistent.NewProductRepo(pg)
	imageRepo := persistent.NewProductImageRepo(pg)
	stagingRepo := persistent.NewStagingImageRepo(pg)
	jobRepo := persistent.NewSyncJobRepo(pg)
	recordRepo := persistent.NewCloneRecordRepo(pg)
	refRepo := persistent.NewStorageRefRepo(pg)
	storageRepo := persistent.NewStorageRepo(s3c, cfg.S3.Bucket, cfg.S3.PublicBaseURL)

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}
	publisher := infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.Topic)

	// Use-Case

	internalizeUseCase := internalize.New(
		productRepo,
		imageRepo,
		storageRepo,
		fetcher.New(cfg.Sync.FetchTimeout),
		transcoder.New(),
		cfg.Sync.ManagedHost,
		l,
	)

	syncUseCase := syncjob.New(
		jobRepo,
		productRepo,
		imageRepo,
		internalizeUseCase,
		publisher,
		cfg.Sync.ChunkSize,
		cfg.Sync.ProductWorkers,
		cfg.Sync.ImageWorkers,
		l,
	)

	forkUseCase := fork.New(imageRepo, storageRepo, l)

	cloneUseCase := clone.New(productRepo, imageRepo, recordRepo, pg, l)

	cleanupUseCase := cleanup.New(productRepo, imageRepo, stagingRepo, refRepo, storageRepo, l)

	// Kafka Consumer
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
	}

	// Kafka as Controller
	kafkaController := kafkactrl.New(
		syncUseCase,
		forkUseCase,
		infrakafka.NewEventConsumer(kafkaConsumer),
		l,
		cfg.KafkaController.CommitTimeout,
		cfg.KafkaController.ProcessTimeout,
		cfg.KafkaController.BatchTimeout,
		cfg.KafkaController.Workers,
	)

	// Reconcile Worker
	reconcileWorker := reconcile.New(
		cleanupUseCase,
		stagingRepo,
		l,
		cfg.Reconcile.Interval,
		cfg.Reconcile.StagingInterval,
		cfg.Reconcile.RunTimeout,
		cfg.Reconcile.StagingTTLDays,
		cfg.Reconcile.DryRun,
	)

	// HTTP Server
	httpServer := httpserver.New(l, httpserver.Port(cfg.HTTP.Port), httpserver.Prefork(cfg.HTTP.UsePreforkMode))
	restapi.NewRouter(httpServer.App, syncUseCase, cloneUseCase, cleanupUseCase, publisher, l)

	// Start Components
	err = reconcileWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - reconcileWorker.Start: %w", err))
	}
	err = kafkaController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	rwShutdownCtx, rwShutdownCancel := context.WithTimeout(ctx, cfg.Reconcile.ShutdownTimeout)
	defer rwShutdownCancel()
	err = reconcileWorker.Shutdown(rwShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - reconcileWorker.Shutdown: %w", err))
	}

	kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
	defer kcShutdownCancel()
	err = kafkaController.Shutdown(kcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
	}

	err = publisher.Close()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - publisher.Close: %w", err))
	}
}
