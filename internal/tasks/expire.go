package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeBookingExpire = "booking:expire"

// BookingExpirePayload identifies the booking the expiry worker should
// check once the abandonment window has elapsed.
type BookingExpirePayload struct {
	BookingID string `json:"booking_id"`
}

// NewBookingExpireTask schedules the abandonment check for a freshly
// created booking. Seats held by a pending_payment booking are freed
// when the task fires and no payment has landed.
func NewBookingExpireTask(bookingID string, after time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(BookingExpirePayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}

	task := asynq.NewTask(TypeBookingExpire, b)
	opts := []asynq.Option{
		asynq.ProcessIn(after),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}
