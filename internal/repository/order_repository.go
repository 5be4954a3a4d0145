package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// orderSelect loads an order with its items and history aggregated as JSON,
// so a single row carries the whole aggregate.
const orderSelect = `
	SELECT o.id, o.order_number, o.idempotency_key, o.customer, o.shipping,
		o.subtotal, o.discount, o.coupon_code, o.shipping_cost, o.total,
		o.status, o.tracking, o.created_at, o.updated_at,
		COALESCE((
			SELECT json_agg(json_build_object(
				'productId', i.product_id,
				'variantId', i.variant_id,
				'name', i.name,
				'unitPrice', i.unit_price,
				'quantity', i.quantity) ORDER BY i.position)
			FROM order_items i WHERE i.order_id = o.id), '[]'::json),
		COALESCE((
			SELECT json_agg(json_build_object('status', h.status, 'at', h.changed_at) ORDER BY h.id)
			FROM order_status_history h WHERE h.order_id = o.id), '[]'::json)
	FROM orders o`

const orderListWhere = `
	WHERE ($1::text IS NULL OR o.status = $1)
	ORDER BY o.created_at DESC, o.order_number DESC
	LIMIT $2 OFFSET $3`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.IdempotencyKey,
		&o.Customer,
		&o.Shipping,
		&o.Pricing.Subtotal,
		&o.Pricing.Discount,
		&o.Pricing.CouponCode,
		&o.Pricing.ShippingCost,
		&o.Pricing.Total,
		&o.Status,
		&o.Tracking,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.Items,
		&o.StatusHistory,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// NextOrderNumber draws the next value of the order number sequence.
func (r *orderRepository) NextOrderNumber(ctx context.Context, tx pgx.Tx) (int64, error) {
	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		r.logger.Error().Err(err).Msg("failed to draw order number")
		return 0, fmt.Errorf("failed to draw order number: %w", err)
	}
	return seq, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, order_number, idempotency_key, customer, shipping,
			subtotal, discount, coupon_code, shipping_cost, total, status, tracking, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.IdempotencyKey,
		order.Customer,
		order.Shipping,
		order.Pricing.Subtotal,
		order.Pricing.Discount,
		order.Pricing.CouponCode,
		order.Pricing.ShippingCost,
		order.Pricing.Total,
		order.Status,
		order.Tracking,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "orders_idempotency_key_key") {
			return ErrDuplicateIdempotencyKey
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	batch := &pgx.Batch{}
	for i, item := range order.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, position, product_id, variant_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			order.ID, i, item.ProductID, item.VariantID, item.Name, item.UnitPrice, item.Quantity)
	}
	for _, change := range order.StatusHistory {
		batch.Queue(`
			INSERT INTO order_status_history (order_id, status, changed_at)
			VALUES ($1, $2, $3)`,
			order.ID, change.Status, change.At)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Msg("failed to create order rows")
			return fmt.Errorf("failed to create order rows: %w", err)
		}
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(order.Items)).
		Msg("order created successfully")

	return nil
}

func (r *orderRepository) getOne(ctx context.Context, q pgx.Row, field, value string) (*model.Order, error) {
	o, err := scanOrder(q)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str(field, value).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str(field, value).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	return o, nil
}

// GetByIdempotencyKey returns nil if no order carries the key.
func (r *orderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx, orderSelect+` WHERE o.idempotency_key = $1`, key)
	return r.getOne(ctx, row, "idempotency_key", key)
}

// GetByOrderNumber returns nil if the order does not exist.
func (r *orderRepository) GetByOrderNumber(ctx context.Context, number string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx, orderSelect+` WHERE o.order_number = $1`, number)
	return r.getOne(ctx, row, "order_number", number)
}

// GetForUpdate loads and row-locks an order within tx.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	row := tx.QueryRow(ctx, orderSelect+` WHERE o.id = $1 FOR UPDATE OF o`, id)
	return r.getOne(ctx, row, "order_id", id.String())
}

// AppendStatus persists the current status and the newest history entry.
func (r *orderRepository) AppendStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	if len(order.StatusHistory) == 0 {
		return fmt.Errorf("order %s has no status history", order.OrderNumber)
	}
	last := order.StatusHistory[len(order.StatusHistory)-1]

	tag, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		order.ID, order.Status, order.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound.WithDetails(map[string]any{"id": order.ID})
	}

	_, err = tx.Exec(ctx, `INSERT INTO order_status_history (order_id, status, changed_at) VALUES ($1, $2, $3)`,
		order.ID, last.Status, last.At)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to append status history")
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}

// UpdateTracking replaces the tracking details.
func (r *orderRepository) UpdateTracking(ctx context.Context, id uuid.UUID, tracking model.Tracking) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET tracking = $2, updated_at = $3 WHERE id = $1`,
		id, tracking, tracking.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update tracking")
		return fmt.Errorf("failed to update tracking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound.WithDetails(map[string]any{"id": id})
	}
	return nil
}

// List returns orders newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	orders := []model.Order{}
	err := r.Export(ctx, filter, func(o *model.Order) error {
		orders = append(orders, *o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Export streams matching orders to fn without buffering the result set.
// A zero filter limit means no limit.
func (r *orderRepository) Export(ctx context.Context, filter model.OrderFilter, fn func(*model.Order) error) error {
	var status, limit any
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	if filter.Limit > 0 {
		limit = filter.Limit
	}

	rows, err := r.pool.Query(ctx, orderSelect+orderListWhere, status, limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return fmt.Errorf("failed to scan order: %w", err)
		}
		if err := fn(o); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return fmt.Errorf("error iterating orders: %w", err)
	}
	return nil
}
