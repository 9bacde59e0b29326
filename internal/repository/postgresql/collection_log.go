package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clearway/collections-backend-go/internal/domain/subscription"
	"github.com/clearway/collections-backend-go/internal/pkg/database"
)

type collectionLogRepositoryImpl struct {
	db *database.DB
}

func NewCollectionLogRepository(db *database.DB) subscription.CollectionLogRepository {
	return &collectionLogRepositoryImpl{db: db}
}

// Insert implements subscription.CollectionLogRepository. The unique index
// on (subscription_id, collection_date) makes a repeat insert a no-op, so
// two drivers confirming the same stop cannot double-log it.
func (r *collectionLogRepositoryImpl) Insert(ctx context.Context, rec subscription.CollectionRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO collection_logs (id, subscription_id, collection_date, run_id, collected_at)
		VALUES (uuidv7(), $1, $2, $3, NOW())
		ON CONFLICT (subscription_id, collection_date) DO NOTHING
	`

	if _, err := q.Exec(ctx, query, rec.SubscriptionID, rec.CollectionDate, rec.RunID); err != nil {
		return fmt.Errorf("failed to insert collection log: %w", err)
	}

	return nil
}

// Delete implements subscription.CollectionLogRepository.
func (r *collectionLogRepositoryImpl) Delete(ctx context.Context, subscriptionID string, date time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx,
		`DELETE FROM collection_logs WHERE subscription_id = $1 AND collection_date = $2`,
		subscriptionID, date,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete collection log: %w", err)
	}

	return commandTag.RowsAffected(), nil
}

// ListByDate implements subscription.CollectionLogRepository.
func (r *collectionLogRepositoryImpl) ListByDate(ctx context.Context, date time.Time) ([]subscription.CollectionRecord, error) {
	return r.list(ctx, `
		SELECT id, subscription_id, collection_date, run_id, collected_at
		FROM collection_logs
		WHERE collection_date = $1
		ORDER BY collected_at ASC`, date)
}

// ListBySubscription implements subscription.CollectionLogRepository.
func (r *collectionLogRepositoryImpl) ListBySubscription(ctx context.Context, subscriptionID string) ([]subscription.CollectionRecord, error) {
	return r.list(ctx, `
		SELECT id, subscription_id, collection_date, run_id, collected_at
		FROM collection_logs
		WHERE subscription_id = $1
		ORDER BY collection_date DESC`, subscriptionID)
}

func (r *collectionLogRepositoryImpl) list(ctx context.Context, query string, arg interface{}) ([]subscription.CollectionRecord, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection logs: %w", err)
	}
	defer rows.Close()

	var records []subscription.CollectionRecord
	for rows.Next() {
		rec, err := scanCollectionRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection log: %w", err)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

func scanCollectionRecord(row pgx.Row) (subscription.CollectionRecord, error) {
	var rec subscription.CollectionRecord
	err := row.Scan(
		&rec.ID,
		&rec.SubscriptionID,
		&rec.CollectionDate,
		&rec.RunID,
		&rec.CollectedAt,
	)
	return rec, err
}
