package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountKind selects how a coupon's value is interpreted.
type DiscountKind string

const (
	DiscountPercentage  DiscountKind = "percentage"
	DiscountFixedAmount DiscountKind = "fixed_amount"
)

// Coupon is an administrator-defined discount rule.
//
// For DiscountPercentage, Value is a percentage (20 means 20%). For
// DiscountFixedAmount, Value is a whole number of minor units.
type Coupon struct {
	Code              string          `json:"code" db:"code"`
	Kind              DiscountKind    `json:"discountKind" db:"discount_kind"`
	Value             decimal.Decimal `json:"discountValue" db:"discount_value"`
	MinOrderValue     *Money          `json:"minOrderValue,omitempty" db:"min_order_value"`
	MaxDiscountAmount *Money          `json:"maxDiscountAmount,omitempty" db:"max_discount_amount"`
	ExpiresAt         *time.Time      `json:"expiresAt,omitempty" db:"expires_at"`
	UsageLimit        *int            `json:"usageLimit,omitempty" db:"usage_limit"`
	UsageCount        int             `json:"usageCount" db:"usage_count"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`
}

// NormalizeCouponCode trims and upper-cases a code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// maxDiscountValue bounds discount_value, stored as NUMERIC(12, 2).
var maxDiscountValue = decimal.New(1, 10)

// Validate checks the invariants every stored coupon must satisfy.
func (c *Coupon) Validate() error {
	if c.Code == "" {
		return ErrInvalidCoupon.WithMessage("coupon code is required")
	}
	switch c.Kind {
	case DiscountPercentage, DiscountFixedAmount:
	default:
		return ErrInvalidCoupon.WithMessage("unknown discount kind %q", c.Kind)
	}
	if !c.Value.IsPositive() {
		return ErrInvalidCoupon.WithMessage("discount value must be greater than zero")
	}
	if !c.Value.Equal(c.Value.Truncate(2)) {
		return ErrInvalidCoupon.WithMessage("discount value allows at most two decimal places")
	}
	if c.Value.GreaterThanOrEqual(maxDiscountValue) {
		return ErrInvalidCoupon.WithMessage("discount value must be less than %s", maxDiscountValue)
	}
	if c.Kind == DiscountFixedAmount && !c.Value.IsInteger() {
		return ErrInvalidCoupon.WithMessage("fixed discount must be a whole number of minor units")
	}
	if c.MinOrderValue != nil && *c.MinOrderValue < 0 {
		return ErrInvalidCoupon.WithMessage("minimum order value cannot be negative")
	}
	if c.MaxDiscountAmount != nil && *c.MaxDiscountAmount < 0 {
		return ErrInvalidCoupon.WithMessage("maximum discount cannot be negative")
	}
	if c.UsageLimit != nil && *c.UsageLimit < 0 {
		return ErrInvalidCoupon.WithMessage("usage limit cannot be negative")
	}
	return nil
}

// Exhausted reports whether the coupon has no uses left.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit
}

// CouponResult is the outcome of a successful coupon validation.
type CouponResult struct {
	Valid    bool    `json:"valid"`
	Code     string  `json:"code"`
	Discount Money   `json:"discount"`
	Coupon   *Coupon `json:"-"`
}

// CouponRequest represents the admin payload for creating or editing a coupon.
type CouponRequest struct {
	Code              string          `json:"code"`
	Kind              DiscountKind    `json:"discountKind"`
	Value             decimal.Decimal `json:"discountValue"`
	MinOrderValue     *Money          `json:"minOrderValue,omitempty"`
	MaxDiscountAmount *Money          `json:"maxDiscountAmount,omitempty"`
	ExpiresAt         *time.Time      `json:"expiresAt,omitempty"`
	UsageLimit        *int            `json:"usageLimit,omitempty"`
}
