package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/tourbooking/api"
	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/bootstrap"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/logger"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/service/layouts"
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

	appLog, err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Service:     "tourbooking-api",
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.OpenStorage(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("open storage", zap.Error(err))
	}
	defer storage.Close()

	opts := []booking.BookingServiceOption{
		booking.WithLogger(appLog),
		booking.WithDefaultHoldMinutes(cfg.Booking.DefaultHoldMinutes),
		booking.WithExpiryBatchSize(cfg.Worker.BatchSize),
	}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, appLog)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			appLog.Warn("kafka unreachable, events may be lost", zap.Error(err))
		}
		opts = append(opts,
			booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	bookingService := booking.NewBookingService(storage.Seats, storage.Bookings, storage.Settings, opts...)
	layoutService := layouts.NewLayoutService(storage.Layouts, appLog)

	if cfg.Worker.Embedded {
		expiry := worker.NewExpiryWorker(bookingService, appLog, &worker.ExpiryWorkerConfig{
			ScanInterval: cfg.Worker.SweepInterval(),
			BatchSize:    cfg.Worker.BatchSize,
		})
		go expiry.Run(ctx)
	}

	if err := bootstrap.Run(ctx, cfg, appLog,
		api.NewLayoutHandler(layoutService),
		api.NewBookingHandler(bookingService),
	); err != nil {
		appLog.Fatal("server error", zap.Error(err))
	}
}
