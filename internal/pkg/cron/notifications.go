package cron

import (
	"context"
	"log/slog"
	"time"

	notificationService "github.com/clearway/collections-backend-go/internal/service/notification"
	"github.com/clearway/collections-backend-go/internal/service/schedule"
	subscriptionService "github.com/clearway/collections-backend-go/internal/service/subscription"
)

// drainBatchSize bounds one drain pass so a large backlog cannot hold the
// job past its interval.
const drainBatchSize = 50

// NotificationJobs contains the outbound notification cron jobs
type NotificationJobs struct {
	notifications notificationService.Service
	subscriptions subscriptionService.SubscriptionService
	calc          *schedule.Calculator
}

// NewNotificationJobs creates notification cron jobs
func NewNotificationJobs(
	notifications notificationService.Service,
	subscriptions subscriptionService.SubscriptionService,
	calc *schedule.Calculator,
) *NotificationJobs {
	return &NotificationJobs{
		notifications: notifications,
		subscriptions: subscriptions,
		calc:          calc,
	}
}

// RegisterJobs registers all notification-related cron jobs
func (j *NotificationJobs) RegisterJobs(scheduler *Scheduler) {
	// Drain the outbound queue every minute
	scheduler.AddJob(
		"drain_notification_queue",
		1*time.Minute,
		j.DrainQueue,
	)

	// Queue next-day collection reminders once a day
	scheduler.AddJob(
		"queue_collection_reminders",
		24*time.Hour,
		j.QueueReminders,
	)
}

// DrainQueue sends pending notifications
func (j *NotificationJobs) DrainQueue(ctx context.Context) error {
	return j.notifications.DrainPending(ctx, drainBatchSize)
}

// QueueReminders enqueues reminders for tomorrow's collections
func (j *NotificationJobs) QueueReminders(ctx context.Context) error {
	tomorrow := j.calc.Today().AddDate(0, 0, 1)
	queued, err := j.subscriptions.QueueCollectionReminders(ctx, tomorrow)
	if err != nil {
		return err
	}
	if queued > 0 {
		slog.Info("queued collection reminders", "date", tomorrow.Format("2006-01-02"), "count", queued)
	}
	return nil
}
