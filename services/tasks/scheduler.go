package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Scheduler enqueues deferred work for the booking lifecycle.
type Scheduler interface {
	ScheduleHoldExpiry(ctx context.Context, bookingID string, at time.Time) error
}

// AsynqScheduler implements Scheduler over an asynq client.
type AsynqScheduler struct {
	client *asynq.Client
}

func NewAsynqScheduler(client *asynq.Client) *AsynqScheduler {
	return &AsynqScheduler{client: client}
}

// ScheduleHoldExpiry enqueues the expiry check to fire at the hold's
// expiry time.
func (s *AsynqScheduler) ScheduleHoldExpiry(ctx context.Context, bookingID string, at time.Time) error {
	task, opts, err := NewHoldExpiryTask(bookingID, at)
	if err != nil {
		return fmt.Errorf("failed to build hold expiry task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue hold expiry for booking %s: %w", bookingID, err)
	}
	return nil
}
