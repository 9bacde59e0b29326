package notification

import "context"

type Repository interface {
	Insert(ctx context.Context, item QueueItem) error
	GetByID(ctx context.Context, id string) (QueueItem, error)
	ListPending(ctx context.Context, limit int) ([]QueueItem, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, lastError string) error
}
