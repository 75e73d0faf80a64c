package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/port"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/infra/archive"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/infra/config"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/infra/email"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/infra/ffmpeg"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/infra/metrics"
	miniostorage "github.com/AnanyaAppan/video-clip-order-prediction/internal/infra/minio"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/infra/postgres"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/infra/rabbitmq"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/infra/tracing"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/transform"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/usecase"
	"github.com/AnanyaAppan/video-clip-order-prediction/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting vcop-sampling-service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	// Migrations
	err = postgres.RunMigrations(cfg.DatabaseURL, "migrations")
	if err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// MinIO
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:    cfg.MinIOEndpoint,
		AccessKey:   cfg.MinIOAccessKey,
		SecretKey:   cfg.MinIOSecretKey,
		UseSSL:      cfg.MinIOUseSSL,
		VideoBucket: cfg.MinIOVideoBucket,
		TupleBucket: cfg.MinIOTupleBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub, cfg.RabbitMQStatusQueue)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Infra adapters
	repo := postgres.NewSampleJobRepository(pool)
	source := ffmpeg.NewFrameSource(log)
	archiver := archive.NewWriter()
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)

	var frameTransform port.Transform
	if cfg.TransformCropW > 0 && cfg.TransformCropH > 0 {
		crop, err := transform.NewRandomCrop(cfg.TransformResizeW, cfg.TransformResizeH, cfg.TransformCropW, cfg.TransformCropH)
		fatalOnErr(err, "build frame transform")
		frameTransform = crop
	}

	// Use case
	uc := usecase.NewSampleTuplesUseCase(
		repo, storage, source, archiver,
		statusPub, dlqPub, notifier, frameTransform,
		log,
		usecase.SampleTuplesConfig{
			TempDir:    cfg.TempDir,
			MaxRetries: cfg.MaxRetries,
		},
	)

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQRequestQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("vcop-sampling-service started, consuming messages")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("vcop-sampling-service stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
