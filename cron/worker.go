package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"gymstay/config"
	"gymstay/models"
	"gymstay/services/booking"
	"gymstay/services/notification"
	"gymstay/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitWorker runs the async worker in background. It owns two task types:
// outbound notification sends (at-least-once, retried by asynq) and the
// hold-expiry checks scheduled at hold creation.
func InitWorker(bookingSvc booking.BookingService, mailer notification.Mailer) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"notifications": 2,
				"default":       1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationSend, handleNotificationTask(mailer))
	mux.HandleFunc(tasks.TypeHoldExpire, handleHoldExpiryTask(bookingSvc))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[Worker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleNotificationTask(mailer notification.Mailer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.NotificationPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[NotificationHandler] Invalid payload: %v", err)
			return err
		}

		subject, body := notification.Render(p)
		if err := mailer.Send(ctx, p.Recipient, subject, body); err != nil {
			// Returning the error hands the task back to asynq for retry.
			log.Printf("[NotificationHandler] Failed to send %s for booking %s: %v", p.Kind, p.BookingID, err)
			return err
		}
		return nil
	}
}

func handleHoldExpiryTask(bookingSvc booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.HoldExpiryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[HoldExpiryHandler] Invalid payload: %v", err)
			return err
		}

		if err := bookingSvc.ReleaseExpired(ctx, p.BookingID); err != nil {
			log.Printf("[HoldExpiryHandler] Failed to release expired hold for booking %s: %v", p.BookingID, err)
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[Worker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
