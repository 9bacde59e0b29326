package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clearway/collections-backend-go/internal/domain/subscription"
	"github.com/clearway/collections-backend-go/internal/pkg/database"
)

type subscriptionRepositoryImpl struct {
	db *database.DB
}

func NewSubscriptionRepository(db *database.DB) subscription.Repository {
	return &subscriptionRepositoryImpl{db: db}
}

const subscriptionColumns = `
	id, customer_name, customer_email, customer_phone, address, postcode,
	frequency, anchor_date, next_collection_date,
	route_day, route_area, route_slot, route_override,
	status, pause_from, pause_to,
	stripe_customer_id, stripe_subscription_id,
	created_at, updated_at`

func scanSubscription(row pgx.Row) (subscription.Subscription, error) {
	var s subscription.Subscription
	err := row.Scan(
		&s.ID,
		&s.CustomerName,
		&s.CustomerEmail,
		&s.CustomerPhone,
		&s.Address,
		&s.Postcode,
		&s.Frequency,
		&s.AnchorDate,
		&s.NextCollectionDate,
		&s.RouteDay,
		&s.RouteArea,
		&s.RouteSlot,
		&s.RouteOverride,
		&s.Status,
		&s.PauseFrom,
		&s.PauseTo,
		&s.StripeCustomerID,
		&s.StripeSubscriptionID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// Create implements subscription.Repository.
func (r *subscriptionRepositoryImpl) Create(ctx context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO subscriptions (
			id, customer_name, customer_email, customer_phone, address, postcode,
			frequency, anchor_date, next_collection_date,
			route_day, route_area, route_slot, route_override,
			status, pause_from, pause_to,
			stripe_customer_id, stripe_subscription_id,
			created_at, updated_at
		)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING ` + subscriptionColumns

	result, err := scanSubscription(q.QueryRow(ctx, query,
		sub.CustomerName, sub.CustomerEmail, sub.CustomerPhone, sub.Address, sub.Postcode,
		sub.Frequency, sub.AnchorDate, sub.NextCollectionDate,
		sub.RouteDay, sub.RouteArea, sub.RouteSlot, sub.RouteOverride,
		sub.Status, sub.PauseFrom, sub.PauseTo,
		sub.StripeCustomerID, sub.StripeSubscriptionID,
	))
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("failed to create subscription: %w", err)
	}

	return result, nil
}

// GetByID implements subscription.Repository.
func (r *subscriptionRepositoryImpl) GetByID(ctx context.Context, id string) (subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	result, err := scanSubscription(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subscription.Subscription{}, subscription.ErrSubscriptionNotFound
		}
		return subscription.Subscription{}, fmt.Errorf("failed to get subscription: %w", err)
	}

	return result, nil
}

// GetByStripeSubscriptionID implements subscription.Repository.
func (r *subscriptionRepositoryImpl) GetByStripeSubscriptionID(ctx context.Context, stripeID string) (subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE stripe_subscription_id = $1`

	result, err := scanSubscription(q.QueryRow(ctx, query, stripeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subscription.Subscription{}, subscription.ErrSubscriptionNotFound
		}
		return subscription.Subscription{}, fmt.Errorf("failed to get subscription by stripe id: %w", err)
	}

	return result, nil
}

// List implements subscription.Repository.
func (r *subscriptionRepositoryImpl) List(ctx context.Context, statuses []string) ([]subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions`
	args := []interface{}{}
	if len(statuses) > 0 {
		query += ` WHERE status = ANY($1)`
		args = append(args, statuses)
	}
	query += ` ORDER BY created_at DESC`

	return r.queryMany(ctx, q, query, args...)
}

// ListForRun implements subscription.Repository.
func (r *subscriptionRepositoryImpl) ListForRun(ctx context.Context, filter subscription.RunFilter) ([]subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE route_area = $1 AND route_day = $2 AND status = ANY($3)
		ORDER BY created_at ASC`

	return r.queryMany(ctx, q, query, filter.RouteArea, filter.RouteDay, filter.Statuses)
}

func (r *subscriptionRepositoryImpl) queryMany(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]subscription.Subscription, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []subscription.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return subs, nil
}

// Update implements subscription.Repository.
func (r *subscriptionRepositoryImpl) Update(ctx context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE subscriptions
		SET customer_name = $2, customer_email = $3, customer_phone = $4, address = $5, postcode = $6,
			frequency = $7, anchor_date = $8, next_collection_date = $9,
			route_day = $10, route_area = $11, route_slot = $12, route_override = $13,
			status = $14, pause_from = $15, pause_to = $16,
			stripe_customer_id = $17, stripe_subscription_id = $18,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + subscriptionColumns

	result, err := scanSubscription(q.QueryRow(ctx, query,
		sub.ID,
		sub.CustomerName, sub.CustomerEmail, sub.CustomerPhone, sub.Address, sub.Postcode,
		sub.Frequency, sub.AnchorDate, sub.NextCollectionDate,
		sub.RouteDay, sub.RouteArea, sub.RouteSlot, sub.RouteOverride,
		sub.Status, sub.PauseFrom, sub.PauseTo,
		sub.StripeCustomerID, sub.StripeSubscriptionID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subscription.Subscription{}, subscription.ErrSubscriptionNotFound
		}
		return subscription.Subscription{}, fmt.Errorf("failed to update subscription: %w", err)
	}

	return result, nil
}

// UpdateStatus implements subscription.Repository.
func (r *subscriptionRepositoryImpl) UpdateStatus(ctx context.Context, id string, status subscription.Status) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `UPDATE subscriptions SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}

	return nil
}

// UpdateNextCollectionDate implements subscription.Repository.
func (r *subscriptionRepositoryImpl) UpdateNextCollectionDate(ctx context.Context, id string, next *time.Time) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `UPDATE subscriptions SET next_collection_date = $2, updated_at = NOW() WHERE id = $1`, id, next)
	if err != nil {
		return fmt.Errorf("failed to update next collection date: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}

	return nil
}

// Delete implements subscription.Repository.
func (r *subscriptionRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}

	return nil
}
