package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clearway/collections-backend-go/internal/domain/notification"
	"github.com/clearway/collections-backend-go/internal/pkg/database"
)

type notificationRepositoryImpl struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepositoryImpl{db: db}
}

const queueItemColumns = `id, type, recipient, payload, status, attempts, last_error, created_at, sent_at`

func scanQueueItem(row pgx.Row) (notification.QueueItem, error) {
	var item notification.QueueItem
	err := row.Scan(
		&item.ID,
		&item.Type,
		&item.Recipient,
		&item.Payload,
		&item.Status,
		&item.Attempts,
		&item.LastError,
		&item.CreatedAt,
		&item.SentAt,
	)
	return item, err
}

// Insert implements notification.Repository. The caller supplies the ID so
// it can report the queued item alongside the primary operation's result.
func (r *notificationRepositoryImpl) Insert(ctx context.Context, item notification.QueueItem) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notification_queue (id, type, recipient, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, NOW())
	`

	if _, err := q.Exec(ctx, query, item.ID, item.Type, item.Recipient, item.Payload, notification.StatusPending); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// GetByID implements notification.Repository.
func (r *notificationRepositoryImpl) GetByID(ctx context.Context, id string) (notification.QueueItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + queueItemColumns + ` FROM notification_queue WHERE id = $1`

	item, err := scanQueueItem(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notification.QueueItem{}, notification.ErrNotificationNotFound
		}
		return notification.QueueItem{}, fmt.Errorf("failed to get notification: %w", err)
	}

	return item, nil
}

// ListPending implements notification.Repository. Oldest first, so a
// backlog drains in the order it was produced.
func (r *notificationRepositoryImpl) ListPending(ctx context.Context, limit int) ([]notification.QueueItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + queueItemColumns + `
		FROM notification_queue
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, notification.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}
	defer rows.Close()

	var items []notification.QueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return items, nil
}

// MarkSent implements notification.Repository.
func (r *notificationRepositoryImpl) MarkSent(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notification_queue
		SET status = $2, attempts = attempts + 1, last_error = NULL, sent_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query, id, notification.StatusSent)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}

	return nil
}

// MarkFailed implements notification.Repository.
func (r *notificationRepositoryImpl) MarkFailed(ctx context.Context, id string, lastError string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notification_queue
		SET status = $2, attempts = attempts + 1, last_error = $3
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query, id, notification.StatusFailed, lastError)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}

	return nil
}
