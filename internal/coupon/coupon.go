package coupon

import (
	"context"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
	"github.com/shopspring/decimal"
)

// Collection looks coupons up by normalised code.
type Collection interface {
	// Lookup returns the coupon for code, or nil if none exists.
	Lookup(ctx context.Context, code string) (*model.Coupon, error)
}

// Validator checks coupon codes against a cart subtotal.
type Validator interface {
	// Validate decides whether code may be applied to subtotal and computes
	// the discount. It never mutates coupon state.
	Validate(ctx context.Context, code string, subtotal model.Money, coupons Collection) (*model.CouponResult, error)
}

var hundred = decimal.NewFromInt(100)
