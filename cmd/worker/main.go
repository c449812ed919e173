package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/bootstrap"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/Domenick1991/tourbooking/internal/notify"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/worker"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Storage == config.StorageMemory {
		log.Fatalf("worker needs shared storage, %q runs the sweep inside the api", config.StorageMemory)
	}

	workerLog, err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Service:     "tourbooking-worker",
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.OpenStorage(ctx, cfg, workerLog)
	if err != nil {
		workerLog.Fatal("open storage", zap.Error(err))
	}
	defer storage.Close()

	opts := []booking.BookingServiceOption{
		booking.WithLogger(workerLog),
		booking.WithDefaultHoldMinutes(cfg.Booking.DefaultHoldMinutes),
		booking.WithExpiryBatchSize(cfg.Worker.BatchSize),
	}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, workerLog)
		defer producer.Close()
		opts = append(opts,
			booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)

		if cfg.Kafka.NotificationsTopic != "" {
			consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, workerLog)
			defer consumer.Close()

			notifier := notify.NewNotifier(workerLog)
			go func() {
				if err := consumer.Consume(ctx, kafka.BookingEventHandler(notifier.Handle)); err != nil {
					workerLog.Error("notification consumer stopped", zap.Error(err))
				}
			}()
		}
	}

	bookingService := booking.NewBookingService(storage.Seats, storage.Bookings, storage.Settings, opts...)

	expiry := worker.NewExpiryWorker(bookingService, workerLog, &worker.ExpiryWorkerConfig{
		ScanInterval: cfg.Worker.SweepInterval(),
		BatchSize:    cfg.Worker.BatchSize,
	})
	expiry.Run(ctx)

	stats := expiry.GetStats()
	workerLog.Info("expiry worker stopped",
		zap.Int64("expired", stats.TotalExpired),
		zap.Int64("released", stats.TotalReleased))
}
