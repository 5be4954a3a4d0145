package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// discount_value is read as text so decimal.Decimal keeps its exact scale.
const couponColumns = `code, discount_kind, discount_value::text, min_order_value, max_discount_amount,
	expires_at, usage_limit, usage_count, created_at, updated_at`

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var (
		c     model.Coupon
		value string
	)
	err := row.Scan(
		&c.Code,
		&c.Kind,
		&value,
		&c.MinOrderValue,
		&c.MaxDiscountAmount,
		&c.ExpiresAt,
		&c.UsageLimit,
		&c.UsageCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Value, err = decimal.NewFromString(value); err != nil {
		return nil, fmt.Errorf("invalid discount value %q: %w", value, err)
	}
	return &c, nil
}

// Lookup returns the coupon for a normalised code, or nil if none exists.
func (r *couponRepository) Lookup(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	c, err := scanCoupon(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}
	return c, nil
}

// List returns all coupons ordered by code.
func (r *couponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY code`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query coupons")
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan coupon row")
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}
	return coupons, nil
}

// Create inserts a new coupon.
func (r *couponRepository) Create(ctx context.Context, c *model.Coupon) error {
	query := `
		INSERT INTO coupons (code, discount_kind, discount_value, min_order_value, max_discount_amount,
			expires_at, usage_limit, usage_count, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		c.Code, c.Kind, c.Value.String(), c.MinOrderValue, c.MaxDiscountAmount,
		c.ExpiresAt, c.UsageLimit, c.UsageCount, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return model.ErrCouponExists.WithDetails(map[string]any{"code": c.Code})
		}
		r.logger.Error().Err(err).Str("coupon_code", c.Code).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	r.logger.Debug().Str("coupon_code", c.Code).Msg("coupon created")
	return nil
}

// Update rewrites a coupon's rule fields.
func (r *couponRepository) Update(ctx context.Context, c *model.Coupon) error {
	query := `
		UPDATE coupons
		SET discount_kind = $2, discount_value = $3::numeric, min_order_value = $4,
			max_discount_amount = $5, expires_at = $6, usage_limit = $7, updated_at = $8
		WHERE code = $1
		RETURNING usage_count, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		c.Code, c.Kind, c.Value.String(), c.MinOrderValue, c.MaxDiscountAmount,
		c.ExpiresAt, c.UsageLimit, c.UpdatedAt,
	).Scan(&c.UsageCount, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrCouponNotFound.WithDetails(map[string]any{"code": c.Code})
		}
		r.logger.Error().Err(err).Str("coupon_code", c.Code).Msg("failed to update coupon")
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	return nil
}

// Delete removes a coupon. Orders keep the code they were placed with.
func (r *couponRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE code = $1`, code)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to delete coupon")
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCouponNotFound.WithDetails(map[string]any{"code": code})
	}
	return nil
}

// IncrementUsage consumes one use of the coupon inside tx.
func (r *couponRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, code string) error {
	query := `
		UPDATE coupons
		SET usage_count = usage_count + 1, updated_at = now()
		WHERE code = $1 AND (usage_limit IS NULL OR usage_count < usage_limit)
	`

	tag, err := tx.Exec(ctx, query, code)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to increment coupon usage")
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM coupons WHERE code = $1)`, code).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check coupon: %w", err)
	}
	if !exists {
		return model.ErrCouponNotFound.WithDetails(map[string]any{"code": code})
	}

	r.logger.Warn().Str("coupon_code", code).Msg("coupon usage limit reached at placement")
	return model.ErrCouponExhausted.WithDetails(map[string]any{"code": code})
}
