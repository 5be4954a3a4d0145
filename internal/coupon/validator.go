package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// validator implements Validator.
type validator struct {
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a validator.
type Option func(*validator)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(v *validator) {
		if now != nil {
			v.now = now
		}
	}
}

// NewValidator creates a new coupon validator.
func NewValidator(logger zerolog.Logger, opts ...Option) Validator {
	v := &validator{
		now:    time.Now,
		logger: logger.With().Str("component", "coupon-validator").Logger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the checks in order: existence, expiry, usage limit, minimum
// order value. The first failing check decides the rejection.
func (v *validator) Validate(ctx context.Context, code string, subtotal model.Money, coupons Collection) (*model.CouponResult, error) {
	normalized := model.NormalizeCouponCode(code)
	if normalized == "" {
		return nil, model.ErrCouponNotFound
	}

	c, err := coupons.Lookup(ctx, normalized)
	if err != nil {
		v.logger.Error().Err(err).Str("coupon_code", normalized).Msg("failed to look up coupon")
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if c == nil {
		v.logger.Debug().Str("coupon_code", normalized).Msg("coupon not found")
		return nil, model.ErrCouponNotFound.WithDetails(map[string]any{"code": normalized})
	}

	if c.ExpiresAt != nil && c.ExpiresAt.Before(v.now()) {
		v.logger.Debug().
			Str("coupon_code", normalized).
			Time("expires_at", *c.ExpiresAt).
			Msg("coupon expired")
		return nil, model.ErrCouponExpired.WithDetails(map[string]any{
			"code":      normalized,
			"expiresAt": *c.ExpiresAt,
		})
	}

	if c.Exhausted() {
		v.logger.Debug().
			Str("coupon_code", normalized).
			Int("usage_count", c.UsageCount).
			Msg("coupon usage limit reached")
		return nil, model.ErrCouponExhausted.WithDetails(map[string]any{"code": normalized})
	}

	if c.MinOrderValue != nil && subtotal < *c.MinOrderValue {
		shortfall := *c.MinOrderValue - subtotal
		v.logger.Debug().
			Str("coupon_code", normalized).
			Int64("subtotal", int64(subtotal)).
			Int64("shortfall", int64(shortfall)).
			Msg("minimum order value not met")
		return nil, model.ErrMinimumOrderNotMet.
			WithMessage("Add %s more to use coupon %s", shortfall, normalized).
			WithDetails(map[string]any{
				"code":          normalized,
				"minOrderValue": *c.MinOrderValue,
				"shortfall":     shortfall,
			})
	}

	discount := Discount(c, subtotal)

	v.logger.Debug().
		Str("coupon_code", normalized).
		Int64("subtotal", int64(subtotal)).
		Int64("discount", int64(discount)).
		Msg("coupon validated successfully")

	return &model.CouponResult{
		Valid:    true,
		Code:     normalized,
		Discount: discount,
		Coupon:   c,
	}, nil
}

// Discount computes the discount c grants on subtotal. Percentage discounts
// are computed exactly, capped, then rounded half-up once. The result never
// exceeds subtotal.
func Discount(c *model.Coupon, subtotal model.Money) model.Money {
	if subtotal <= 0 {
		return 0
	}
	base := decimal.NewFromInt(int64(subtotal))

	var amount decimal.Decimal
	switch c.Kind {
	case model.DiscountPercentage:
		pct := c.Value
		if pct.GreaterThan(hundred) {
			pct = hundred
		}
		if pct.IsNegative() {
			pct = decimal.Zero
		}
		amount = base.Mul(pct).Div(hundred)
		if c.MaxDiscountAmount != nil {
			amount = decimal.Min(amount, decimal.NewFromInt(int64(*c.MaxDiscountAmount)))
		}
	case model.DiscountFixedAmount:
		amount = decimal.Min(c.Value, base)
	default:
		return 0
	}

	// Round rounds half away from zero, which is half-up for non-negative amounts.
	amount = decimal.Max(amount.Round(0), decimal.Zero)
	amount = decimal.Min(amount, base)
	return model.Money(amount.IntPart())
}
