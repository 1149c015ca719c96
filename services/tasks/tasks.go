package tasks

import (
	"encoding/json"
	"time"

	"gymstay/models"

	"github.com/hibiken/asynq"
)

const (
	TypeNotificationSend = "notification:send"
	TypeHoldExpire       = "hold:expire"
)

// HoldExpiryPayload names the booking whose hold should be checked.
type HoldExpiryPayload struct {
	BookingID string `json:"bookingId"`
}

// NewNotificationTask builds the queued task for one outbound email.
// Retries with backoff are handled by asynq.
func NewNotificationTask(payload models.NotificationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotificationSend, b)
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.Queue("notifications")}

	return task, opts, nil
}

// NewHoldExpiryTask schedules the expiry check for a hold at its expiry
// time. The handler re-reads booking state, so firing after a capture or
// release is harmless.
func NewHoldExpiryTask(bookingID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(HoldExpiryPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeHoldExpire, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt), asynq.MaxRetry(3)}

	return task, opts, nil
}
