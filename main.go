package main

import (
	"context"
	"log"

	"travel-booking/cmd"
	"travel-booking/internal/cron"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/notify"
	"travel-booking/internal/payment"
	"travel-booking/internal/usecase"
	"travel-booking/internal/wire"
	"travel-booking/internal/worker"
	"travel-booking/pkg/database"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	repos := repository.NewRepository(db, logger)

	gateway := payment.NewStripeGateway(config.Stripe, logger)

	publisher := notify.NewPublisher(config.Kafka, logger)
	defer publisher.Close()

	enqueuer := worker.NewEnqueuer(config.Redis, logger)
	defer enqueuer.Close()

	service := usecase.NewService(repos, gateway, enqueuer, publisher, config, logger)

	// Abandonment worker: cancels pending_payment bookings once the
	// timeout elapses, releasing their seats.
	worker.StartExpiryWorker(config.Redis, service.Booking, logger)

	// Hourly rollover: past departures and their bookings to completed.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cron.StartDepartureCron(ctx, repos, logger)

	app := wire.Wiring(service, repos, config, logger)

	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
