package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travel-booking/internal/tasks"
	"travel-booking/pkg/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingExpirer is the slice of the booking service the expiry worker
// needs: cancel the booking if it is still awaiting payment.
type BookingExpirer interface {
	ExpireStaleBooking(ctx context.Context, bookingID string) error
}

// Enqueuer schedules background tasks. The booking service uses it to
// arm the abandonment timeout on every new booking.
type Enqueuer struct {
	client *asynq.Client
	log    *zap.Logger
}

func NewEnqueuer(cfg utils.RedisConfig, log *zap.Logger) *Enqueuer {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Enqueuer{
		client: client,
		log:    log.With(zap.String("worker", "enqueuer")),
	}
}

func (e *Enqueuer) EnqueueBookingExpire(ctx context.Context, bookingID string, after time.Duration) error {
	task, opts, err := tasks.NewBookingExpireTask(bookingID, after)
	if err != nil {
		return fmt.Errorf("build expire task for booking %s: %w", bookingID, err)
	}

	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		e.log.Error("Failed to enqueue expire task",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return fmt.Errorf("enqueue expire task for booking %s: %w", bookingID, err)
	}

	e.log.Info("Expire task enqueued",
		zap.String("booking_id", bookingID),
		zap.String("task_id", info.ID),
		zap.Duration("after", after),
	)

	return nil
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}

// StartExpiryWorker runs the asynq server that fires abandonment
// checks. Runs in the background; errors end the process because held
// seats would otherwise never be released.
func StartExpiryWorker(cfg utils.RedisConfig, svc BookingExpirer, log *zap.Logger) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingExpire, handleBookingExpire(svc, log))

	go func() {
		log.Info("Starting booking expiry worker")
		if err := srv.Run(mux); err != nil {
			log.Fatal("Expiry worker stopped", zap.Error(err))
		}
	}()
}

func handleBookingExpire(svc BookingExpirer, log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload tasks.BookingExpirePayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			log.Error("Invalid expire task payload", zap.Error(err))
			return err
		}

		if err := svc.ExpireStaleBooking(ctx, payload.BookingID); err != nil {
			log.Error("Failed to expire booking",
				zap.Error(err),
				zap.String("booking_id", payload.BookingID),
			)
			return err
		}

		return nil
	}
}
