package repository

import (
	"context"
	"errors"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateIdempotencyKey is returned by CreateOrder when another order
// already holds the idempotency key.
var ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves products ordered by name with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with its variants. Returns nil if
	// the product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	// Lookup returns the coupon for a normalised code, or nil if none exists.
	Lookup(ctx context.Context, code string) (*model.Coupon, error)

	List(ctx context.Context) ([]model.Coupon, error)

	// Create returns ErrCouponExists when the code is taken.
	Create(ctx context.Context, c *model.Coupon) error

	// Update returns ErrCouponNotFound when the code is unknown. Usage counts
	// are left alone.
	Update(ctx context.Context, c *model.Coupon) error

	Delete(ctx context.Context, code string) error

	// IncrementUsage consumes one use of the coupon inside tx. It returns
	// ErrCouponExhausted when the usage limit has been reached.
	IncrementUsage(ctx context.Context, tx pgx.Tx, code string) error
}

// ZoneRepository defines the interface for shipping zone data access operations.
type ZoneRepository interface {
	// ListZones returns every zone. It satisfies shipping.ZoneSource.
	ListZones(ctx context.Context) ([]model.ShippingZone, error)

	// GetZone returns nil if the zone does not exist.
	GetZone(ctx context.Context, id string) (*model.ShippingZone, error)

	CreateZone(ctx context.Context, z *model.ShippingZone) error

	// UpdateZone returns ErrZoneNotFound when the id is unknown.
	UpdateZone(ctx context.Context, z *model.ShippingZone) error

	DeleteZone(ctx context.Context, id string) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// NextOrderNumber draws the next value of the order number sequence.
	NextOrderNumber(ctx context.Context, tx pgx.Tx) (int64, error)

	// CreateOrder inserts the order, its items and its status history within
	// tx. A reused idempotency key yields ErrDuplicateIdempotencyKey.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByIdempotencyKey returns nil if no order carries the key.
	GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error)

	// GetByOrderNumber returns nil if the order does not exist.
	GetByOrderNumber(ctx context.Context, number string) (*model.Order, error)

	// GetForUpdate loads and row-locks an order within tx. Returns nil if the
	// order does not exist.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// AppendStatus persists the order's current status and its newest
	// history entry within tx.
	AppendStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// UpdateTracking replaces the tracking details. Returns ErrOrderNotFound
	// when the order does not exist.
	UpdateTracking(ctx context.Context, id uuid.UUID, tracking model.Tracking) error

	// List returns orders newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// Export streams every order matching filter to fn, newest first. It stops
	// at the first error fn returns.
	Export(ctx context.Context, filter model.OrderFilter, fn func(*model.Order) error) error
}

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
