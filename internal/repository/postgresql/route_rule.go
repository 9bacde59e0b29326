package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/clearway/collections-backend-go/internal/pkg/database"
)

type routeRuleRepositoryImpl struct {
	db *database.DB
}

func NewRouteRuleRepository(db *database.DB) routing.RouteRuleRepository {
	return &routeRuleRepositoryImpl{db: db}
}

const routeRuleColumns = `id, prefix, prefix_key, route_day, route_area, slot, active, created_at, updated_at`

func scanRouteRule(row pgx.Row) (routing.RouteRule, error) {
	var r routing.RouteRule
	err := row.Scan(
		&r.ID,
		&r.Prefix,
		&r.PrefixKey,
		&r.RouteDay,
		&r.RouteArea,
		&r.Slot,
		&r.Active,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

// Create implements routing.RouteRuleRepository.
func (r *routeRuleRepositoryImpl) Create(ctx context.Context, rule routing.RouteRule) (routing.RouteRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO route_rules (id, prefix, prefix_key, route_day, route_area, slot, active, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + routeRuleColumns

	result, err := scanRouteRule(q.QueryRow(ctx, query,
		rule.Prefix, rule.PrefixKey, rule.RouteDay, rule.RouteArea, rule.Slot, rule.Active,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return routing.RouteRule{}, routing.ErrRuleExists
		}
		return routing.RouteRule{}, fmt.Errorf("failed to create route rule: %w", err)
	}

	return result, nil
}

// GetByID implements routing.RouteRuleRepository.
func (r *routeRuleRepositoryImpl) GetByID(ctx context.Context, id string) (routing.RouteRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + routeRuleColumns + ` FROM route_rules WHERE id = $1`

	result, err := scanRouteRule(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return routing.RouteRule{}, routing.ErrRouteRuleNotFound
		}
		return routing.RouteRule{}, fmt.Errorf("failed to get route rule: %w", err)
	}

	return result, nil
}

// List implements routing.RouteRuleRepository.
func (r *routeRuleRepositoryImpl) List(ctx context.Context) ([]routing.RouteRule, error) {
	return r.list(ctx, `SELECT `+routeRuleColumns+` FROM route_rules ORDER BY prefix_key ASC`)
}

// ListActive implements routing.RouteRuleRepository.
func (r *routeRuleRepositoryImpl) ListActive(ctx context.Context) ([]routing.RouteRule, error) {
	return r.list(ctx, `SELECT `+routeRuleColumns+` FROM route_rules WHERE active ORDER BY prefix_key ASC`)
}

func (r *routeRuleRepositoryImpl) list(ctx context.Context, query string) ([]routing.RouteRule, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list route rules: %w", err)
	}
	defer rows.Close()

	var rules []routing.RouteRule
	for rows.Next() {
		rule, err := scanRouteRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan route rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return rules, nil
}

// Update implements routing.RouteRuleRepository.
func (r *routeRuleRepositoryImpl) Update(ctx context.Context, rule routing.RouteRule) (routing.RouteRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE route_rules
		SET prefix = $2, prefix_key = $3, route_day = $4, route_area = $5, slot = $6, active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + routeRuleColumns

	result, err := scanRouteRule(q.QueryRow(ctx, query,
		rule.ID, rule.Prefix, rule.PrefixKey, rule.RouteDay, rule.RouteArea, rule.Slot, rule.Active,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return routing.RouteRule{}, routing.ErrRouteRuleNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return routing.RouteRule{}, routing.ErrRuleExists
		}
		return routing.RouteRule{}, fmt.Errorf("failed to update route rule: %w", err)
	}

	return result, nil
}

// Delete implements routing.RouteRuleRepository.
func (r *routeRuleRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM route_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete route rule: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return routing.ErrRouteRuleNotFound
	}

	return nil
}
