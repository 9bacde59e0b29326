package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clearway/collections-backend-go/internal/domain/booking"
	"github.com/clearway/collections-backend-go/internal/pkg/database"
)

type bookingRepositoryImpl struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) booking.Repository {
	return &bookingRepositoryImpl{db: db}
}

const bookingColumns = `
	id, customer_name, customer_email, customer_phone, address, postcode,
	service_date, collection_date,
	route_day, route_area, route_slot,
	status, items, total, completed_at,
	stripe_checkout_session_id, stripe_payment_intent_id,
	created_at, updated_at`

func scanBooking(row pgx.Row) (booking.Booking, error) {
	var b booking.Booking
	err := row.Scan(
		&b.ID,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&b.Address,
		&b.Postcode,
		&b.ServiceDate,
		&b.CollectionDate,
		&b.RouteDay,
		&b.RouteArea,
		&b.RouteSlot,
		&b.Status,
		&b.Items,
		&b.Total,
		&b.CompletedAt,
		&b.StripeCheckoutSessionID,
		&b.StripePaymentIntentID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

// Create implements booking.Repository.
func (r *bookingRepositoryImpl) Create(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO bookings (
			id, customer_name, customer_email, customer_phone, address, postcode,
			service_date, collection_date,
			route_day, route_area, route_slot,
			status, items, total, completed_at,
			stripe_checkout_session_id, stripe_payment_intent_id,
			created_at, updated_at
		)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		RETURNING ` + bookingColumns

	result, err := scanBooking(q.QueryRow(ctx, query,
		b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.Address, b.Postcode,
		b.ServiceDate, b.CollectionDate,
		b.RouteDay, b.RouteArea, b.RouteSlot,
		b.Status, b.Items, b.Total, b.CompletedAt,
		b.StripeCheckoutSessionID, b.StripePaymentIntentID,
	))
	if err != nil {
		return booking.Booking{}, fmt.Errorf("failed to create booking: %w", err)
	}

	return result, nil
}

// GetByID implements booking.Repository.
func (r *bookingRepositoryImpl) GetByID(ctx context.Context, id string) (booking.Booking, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	result, err := scanBooking(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return booking.Booking{}, booking.ErrBookingNotFound
		}
		return booking.Booking{}, fmt.Errorf("failed to get booking: %w", err)
	}

	return result, nil
}

// GetByCheckoutSessionID implements booking.Repository.
func (r *bookingRepositoryImpl) GetByCheckoutSessionID(ctx context.Context, sessionID string) (booking.Booking, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE stripe_checkout_session_id = $1`

	result, err := scanBooking(q.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return booking.Booking{}, booking.ErrBookingNotFound
		}
		return booking.Booking{}, fmt.Errorf("failed to get booking by checkout session: %w", err)
	}

	return result, nil
}

// List implements booking.Repository.
func (r *bookingRepositoryImpl) List(ctx context.Context, statuses []string) ([]booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	args := []interface{}{}
	if len(statuses) > 0 {
		query += ` WHERE status = ANY($1)`
		args = append(args, statuses)
	}
	query += ` ORDER BY created_at DESC`

	return r.queryMany(ctx, query, args...)
}

// ListForRun implements booking.Repository.
func (r *bookingRepositoryImpl) ListForRun(ctx context.Context, filter booking.RunFilter) ([]booking.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE route_area = $1 AND route_day = $2
		ORDER BY created_at ASC`

	return r.queryMany(ctx, query, filter.RouteArea, filter.RouteDay)
}

func (r *bookingRepositoryImpl) queryMany(ctx context.Context, query string, args ...interface{}) ([]booking.Booking, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return bookings, nil
}

// Update implements booking.Repository.
func (r *bookingRepositoryImpl) Update(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE bookings
		SET customer_name = $2, customer_email = $3, customer_phone = $4, address = $5, postcode = $6,
			service_date = $7, collection_date = $8,
			route_day = $9, route_area = $10, route_slot = $11,
			status = $12, items = $13, total = $14, completed_at = $15,
			stripe_checkout_session_id = $16, stripe_payment_intent_id = $17,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingColumns

	result, err := scanBooking(q.QueryRow(ctx, query,
		b.ID,
		b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.Address, b.Postcode,
		b.ServiceDate, b.CollectionDate,
		b.RouteDay, b.RouteArea, b.RouteSlot,
		b.Status, b.Items, b.Total, b.CompletedAt,
		b.StripeCheckoutSessionID, b.StripePaymentIntentID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return booking.Booking{}, booking.ErrBookingNotFound
		}
		return booking.Booking{}, fmt.Errorf("failed to update booking: %w", err)
	}

	return result, nil
}

// UpdateStatus implements booking.Repository.
func (r *bookingRepositoryImpl) UpdateStatus(ctx context.Context, id string, status booking.Status) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return booking.ErrBookingNotFound
	}

	return nil
}

// SetCompleted implements booking.Repository.
func (r *bookingRepositoryImpl) SetCompleted(ctx context.Context, id string, completedAt *time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE bookings
		SET completed_at = $2,
			status = CASE WHEN $2::timestamptz IS NULL THEN 'confirmed' ELSE 'completed' END,
			updated_at = NOW()
		WHERE id = $1`

	commandTag, err := q.Exec(ctx, query, id, completedAt)
	if err != nil {
		return fmt.Errorf("failed to set booking completion: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return booking.ErrBookingNotFound
	}

	return nil
}

// Delete implements booking.Repository.
func (r *bookingRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return booking.ErrBookingNotFound
	}

	return nil
}
