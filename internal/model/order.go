package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// ParseOrderStatus maps a string onto a known status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, nil
	}
	return "", ErrInvalidStatus.WithDetails(map[string]any{"status": s})
}

// PricingResult is the money breakdown for a cart.
type PricingResult struct {
	Subtotal     Money   `json:"subtotal"`
	Discount     Money   `json:"discount"`
	CouponCode   *string `json:"couponCode,omitempty"`
	ShippingCost Money   `json:"shippingCost"`
	Total        Money   `json:"total"`
}

// Customer is the buyer snapshot stored on an order.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Pincode string `json:"pincode"`
}

// StatusChange is one entry of an order's audit trail.
type StatusChange struct {
	Status OrderStatus `json:"status"`
	At     time.Time   `json:"at"`
}

// Tracking holds carrier details entered by an administrator.
type Tracking struct {
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"trackingNumber"`
	URL            string    `json:"url,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Order represents a placed customer order.
type Order struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	OrderNumber    string         `json:"orderNumber" db:"order_number"`
	Customer       Customer       `json:"customer"`
	Items          []LineItem     `json:"items"`
	Pricing        PricingResult  `json:"pricing"`
	Shipping       ShippingQuote  `json:"shipping"`
	Status         OrderStatus    `json:"status" db:"status"`
	StatusHistory  []StatusChange `json:"statusHistory"`
	Tracking       *Tracking      `json:"tracking,omitempty"`
	IdempotencyKey string         `json:"-" db:"idempotency_key"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}

// PriceCartRequest represents the payload for pricing a cart.
type PriceCartRequest struct {
	SessionID  string `json:"sessionId"`
	CouponCode string `json:"couponCode,omitempty"`
	Pincode    string `json:"pincode"`
}

// PriceQuote is the checkout preview returned to the storefront.
type PriceQuote struct {
	Pricing   PricingResult `json:"pricing"`
	Shipping  ShippingQuote `json:"shipping"`
	Items     []LineItem    `json:"items"`
	ItemCount int           `json:"itemCount"`
}

// PlaceOrderRequest represents the payload for placing an order. Pricing is
// the total the shopper was shown; when present it must match the server's
// recomputation.
type PlaceOrderRequest struct {
	SessionID      string         `json:"sessionId"`
	Customer       Customer       `json:"customer"`
	CouponCode     string         `json:"couponCode,omitempty"`
	Pricing        *PricingResult `json:"pricing,omitempty"`
	IdempotencyKey string         `json:"-"`
}

// StatusUpdateRequest represents the admin payload for a status transition.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// TrackingRequest represents the admin payload for tracking details.
type TrackingRequest struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
	URL            string `json:"url,omitempty"`
}

// OrderFilter narrows admin order listings and exports.
type OrderFilter struct {
	Status *OrderStatus
	Limit  int
	Offset int
}
