package cron

import (
	"context"
	"time"

	"travel-booking/internal/data/repository"

	"go.uber.org/zap"
)

// StartDepartureCron rolls departures and their confirmed bookings over
// to completed once the departure date has passed. Reporting only; the
// seat invariant does not depend on it.
func StartDepartureCron(ctx context.Context, repo *repository.Repository, log *zap.Logger) {
	log = log.With(zap.String("cron", "departures"))

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Departure cron shutdown signal received")
			return
		case <-ticker.C:
			cutoff := time.Now().Truncate(24 * time.Hour)

			departures, err := repo.Departure.CompletePast(ctx, cutoff)
			if err != nil {
				log.Error("Failed to complete past departures", zap.Error(err))
				continue
			}

			bookings, err := repo.Booking.CompletePastDeparted(ctx, cutoff)
			if err != nil {
				log.Error("Failed to complete departed bookings", zap.Error(err))
				continue
			}

			if departures > 0 || bookings > 0 {
				log.Info("Departure rollover done",
					zap.Int64("departures_completed", departures),
					zap.Int64("bookings_completed", bookings),
				)
			}

			if err := repo.Session.CleanExpiredSessions(ctx); err != nil {
				log.Error("Failed to clean expired sessions", zap.Error(err))
			}
		}
	}
}
