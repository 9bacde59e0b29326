package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/clearway/collections-backend-go/internal/domain/notification"
	"github.com/google/uuid"
)

// Sender delivers one notification to its recipient. The SMTP email
// service implements this; tests swap in a recorder.
type Sender interface {
	Send(ctx context.Context, recipient string, payload notification.Payload) error
}

// EnqueueOutcome reports the fate of a best-effort enqueue separately from
// the operation that produced it. A failed enqueue must never fail a
// collection confirmation or a checkout, but it must not vanish either:
// callers log it and responses can surface it to staff.
type EnqueueOutcome struct {
	Queued bool
	Err    error
}

// Service queues outbound notifications and drains the queue.
type Service interface {
	// Enqueue validates and stores a notification. It never returns an
	// error; the outcome carries any failure for independent reporting.
	Enqueue(ctx context.Context, recipient string, payload notification.Payload) EnqueueOutcome

	// DrainPending sends up to limit pending notifications, marking each
	// sent or failed. Called from the background scheduler.
	DrainPending(ctx context.Context, limit int) error
}

type serviceImpl struct {
	repo   notification.Repository
	sender Sender
}

func NewNotificationService(repo notification.Repository, sender Sender) Service {
	return &serviceImpl{repo: repo, sender: sender}
}

func (s *serviceImpl) Enqueue(ctx context.Context, recipient string, payload notification.Payload) EnqueueOutcome {
	if recipient == "" {
		return EnqueueOutcome{Err: fmt.Errorf("%w: empty recipient", notification.ErrInvalidPayload)}
	}
	if err := payload.Validate(); err != nil {
		return EnqueueOutcome{Err: fmt.Errorf("%w: %w", notification.ErrInvalidPayload, err)}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return EnqueueOutcome{Err: fmt.Errorf("encode payload: %w", err)}
	}

	item := notification.QueueItem{
		ID:        uuid.NewString(),
		Type:      payload.NotificationType(),
		Recipient: recipient,
		Payload:   raw,
		Status:    notification.StatusPending,
	}

	if err := s.repo.Insert(ctx, item); err != nil {
		slog.Error("notification enqueue failed", "type", item.Type, "error", err)
		return EnqueueOutcome{Err: err}
	}
	return EnqueueOutcome{Queued: true}
}

func (s *serviceImpl) DrainPending(ctx context.Context, limit int) error {
	items, err := s.repo.ListPending(ctx, limit)
	if err != nil {
		return fmt.Errorf("list pending notifications: %w", err)
	}

	for _, item := range items {
		payload, err := notification.DecodePayload(item.Type, item.Payload)
		if err != nil {
			// Undecodable rows are parked as failed so they stop clogging
			// the queue.
			if markErr := s.repo.MarkFailed(ctx, item.ID, err.Error()); markErr != nil {
				slog.Error("mark notification failed", "id", item.ID, "error", markErr)
			}
			continue
		}

		if err := s.sender.Send(ctx, item.Recipient, payload); err != nil {
			slog.Warn("notification send failed", "id", item.ID, "type", item.Type, "error", err)
			if markErr := s.repo.MarkFailed(ctx, item.ID, err.Error()); markErr != nil {
				slog.Error("mark notification failed", "id", item.ID, "error", markErr)
			}
			continue
		}

		if err := s.repo.MarkSent(ctx, item.ID); err != nil {
			slog.Error("mark notification sent", "id", item.ID, "error", err)
		}
	}

	return nil
}
