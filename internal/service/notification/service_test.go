package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/clearway/collections-backend-go/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueueRepo struct {
	notification.Repository
	items     []notification.QueueItem
	insertErr error
	sent      []string
	failed    []string
}

func (f *fakeQueueRepo) Insert(ctx context.Context, item notification.QueueItem) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeQueueRepo) ListPending(ctx context.Context, limit int) ([]notification.QueueItem, error) {
	if len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

func (f *fakeQueueRepo) MarkSent(ctx context.Context, id string) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeQueueRepo) MarkFailed(ctx context.Context, id string, lastError string) error {
	f.failed = append(f.failed, id)
	return nil
}

type recordingSender struct {
	sent []notification.Payload
	err  error
}

func (r *recordingSender) Send(ctx context.Context, recipient string, payload notification.Payload) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, payload)
	return nil
}

func TestEnqueueStoresTypedPayload(t *testing.T) {
	repo := &fakeQueueRepo{}
	svc := NewNotificationService(repo, &recordingSender{})

	outcome := svc.Enqueue(context.Background(), "jo@example.com", notification.CollectionCompletedPayload{
		SubscriptionID: "s1",
		CustomerName:   "Jo",
		CollectionDate: "2024-01-05",
	})

	assert.True(t, outcome.Queued)
	assert.NoError(t, outcome.Err)
	require.Len(t, repo.items, 1)
	assert.Equal(t, notification.TypeCollectionCompleted, repo.items[0].Type)
	assert.Equal(t, notification.StatusPending, repo.items[0].Status)
	assert.NotEmpty(t, repo.items[0].ID)
}

func TestEnqueueRejectsInvalidPayload(t *testing.T) {
	repo := &fakeQueueRepo{}
	svc := NewNotificationService(repo, &recordingSender{})

	outcome := svc.Enqueue(context.Background(), "jo@example.com", notification.CollectionCompletedPayload{
		SubscriptionID: "",
		CollectionDate: "nope",
	})

	assert.False(t, outcome.Queued)
	assert.ErrorIs(t, outcome.Err, notification.ErrInvalidPayload)
	assert.Empty(t, repo.items)
}

func TestEnqueueInsertFailureIsReportedNotRaised(t *testing.T) {
	repo := &fakeQueueRepo{insertErr: errors.New("connection refused")}
	svc := NewNotificationService(repo, &recordingSender{})

	outcome := svc.Enqueue(context.Background(), "jo@example.com", notification.PaymentFailedPayload{
		SubscriptionID: "s1",
		CustomerName:   "Jo",
	})

	assert.False(t, outcome.Queued)
	assert.Error(t, outcome.Err)
}

func TestDrainPendingSendsAndMarks(t *testing.T) {
	repo := &fakeQueueRepo{}
	sender := &recordingSender{}
	svc := NewNotificationService(repo, sender)

	svc.Enqueue(context.Background(), "jo@example.com", notification.CollectionReminderPayload{
		SubscriptionID: "s1",
		CustomerName:   "Jo",
		CollectionDate: "2024-01-05",
	})

	err := svc.DrainPending(context.Background(), 10)
	require.NoError(t, err)

	assert.Len(t, sender.sent, 1)
	assert.Len(t, repo.sent, 1)
	assert.Empty(t, repo.failed)
}

func TestDrainPendingMarksFailedOnSendError(t *testing.T) {
	repo := &fakeQueueRepo{}
	sender := &recordingSender{err: errors.New("smtp unavailable")}
	svc := NewNotificationService(repo, sender)

	svc.Enqueue(context.Background(), "jo@example.com", notification.CollectionReminderPayload{
		SubscriptionID: "s1",
		CustomerName:   "Jo",
		CollectionDate: "2024-01-05",
	})

	err := svc.DrainPending(context.Background(), 10)
	require.NoError(t, err)

	assert.Len(t, repo.failed, 1)
	assert.Empty(t, repo.sent)
}
