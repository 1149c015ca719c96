package notification

import (
	"context"
	"fmt"

	"gymstay/models"
	"gymstay/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqDispatcher is the production Service: it enqueues each payload on
// the notifications queue, where the worker renders and sends it. asynq
// retries failed sends with backoff, giving the at-least-once contract.
type AsynqDispatcher struct {
	client *asynq.Client
	logger *zap.Logger
}

func NewAsynqDispatcher(client *asynq.Client, logger *zap.Logger) *AsynqDispatcher {
	return &AsynqDispatcher{
		client: client,
		logger: logger,
	}
}

// Dispatch enqueues one notification.
func (d *AsynqDispatcher) Dispatch(ctx context.Context, payload models.NotificationPayload) error {
	task, opts, err := tasks.NewNotificationTask(payload)
	if err != nil {
		return fmt.Errorf("failed to build notification task: %w", err)
	}

	info, err := d.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification %s: %w", payload.Kind, err)
	}

	d.logger.Debug("notification enqueued",
		zap.String("kind", string(payload.Kind)),
		zap.String("bookingId", payload.BookingID),
		zap.String("taskId", info.ID))
	return nil
}
