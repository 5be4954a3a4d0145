package service

import (
	"context"
	"io"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for browsing the catalogue.
type ProductService interface {
	// GetAll retrieves products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// CartService defines operations on a session's cart.
type CartService interface {
	Get(ctx context.Context, sessionID string) (*model.CartView, error)

	// AddItem adds a product at its current price.
	AddItem(ctx context.Context, sessionID string, req *model.AddItemRequest) (*model.CartView, error)

	// UpdateItem replaces a line quantity; zero or less removes the line.
	UpdateItem(ctx context.Context, sessionID string, req *model.UpdateItemRequest) (*model.CartView, error)

	RemoveItem(ctx context.Context, sessionID, productID, variantID string) (*model.CartView, error)

	Clear(ctx context.Context, sessionID string) error
}

// CheckoutService prices carts and turns them into orders.
type CheckoutService interface {
	// PriceCart previews the payable total for a session's cart without
	// side effects.
	PriceCart(ctx context.Context, req *model.PriceCartRequest) (*model.PriceQuote, error)

	// PlaceOrder creates an order from the session's cart. created is false
	// when the idempotency key had already produced an order, which is then
	// returned unchanged.
	PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest) (order *model.Order, created bool, err error)
}

// OrderService defines tracking and back-office operations on orders.
type OrderService interface {
	GetByOrderNumber(ctx context.Context, number string) (*model.Order, error)

	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// TransitionOrder moves an order along the lifecycle graph.
	TransitionOrder(ctx context.Context, id uuid.UUID, status string) (*model.Order, error)

	UpdateTracking(ctx context.Context, id uuid.UUID, req *model.TrackingRequest) error

	// ExportCSV writes one CSV row per matching order to w.
	ExportCSV(ctx context.Context, w io.Writer, filter model.OrderFilter) error
}

// AdminService defines coupon and shipping zone management.
type AdminService interface {
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	GetCoupon(ctx context.Context, code string) (*model.Coupon, error)
	CreateCoupon(ctx context.Context, req *model.CouponRequest) (*model.Coupon, error)
	UpdateCoupon(ctx context.Context, code string, req *model.CouponRequest) (*model.Coupon, error)
	DeleteCoupon(ctx context.Context, code string) error

	ListZones(ctx context.Context) ([]model.ShippingZone, error)
	CreateZone(ctx context.Context, req *model.ZoneRequest) (*model.ShippingZone, error)
	UpdateZone(ctx context.Context, id string, req *model.ZoneRequest) (*model.ShippingZone, error)
	DeleteZone(ctx context.Context, id string) error
}
