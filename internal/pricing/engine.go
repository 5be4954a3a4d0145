// Package pricing computes payable totals. It is the only place in the
// service that derives a charge from cart contents.
package pricing

import (
	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
)

// Price composes subtotal, discount and shipping into a PricingResult:
//
//	subtotal = Σ unitPrice × quantity
//	discount = coupon.Discount, or 0 without a coupon
//	total    = max(0, subtotal − discount) + shipping.Rate
//
// Malformed input is returned as an error. An unserviceable shipping quote
// yields ErrUnserviceable and no total. A broken monetary invariant panics
// with *model.IntegrityError.
func Price(items []model.LineItem, coupon *model.CouponResult, shipping model.ShippingQuote) (model.PricingResult, error) {
	if len(items) == 0 {
		return model.PricingResult{}, model.ErrEmptyCart
	}

	var subtotal model.Money
	for _, item := range items {
		if item.Quantity < 1 || item.Quantity > model.MaxLineQuantity {
			return model.PricingResult{}, model.ErrInvalidQuantity.WithDetails(map[string]any{
				"productId": item.ProductID,
				"variantId": item.VariantID,
				"quantity":  item.Quantity,
			})
		}
		if item.UnitPrice < 0 {
			violate("unit price must not be negative", map[string]int64{"unitPrice": int64(item.UnitPrice)})
		}
		line, ok := item.Total()
		if !ok {
			violate("line total overflows", map[string]int64{
				"unitPrice": int64(item.UnitPrice),
				"quantity":  int64(item.Quantity),
			})
		}
		if subtotal, ok = subtotal.Plus(line); !ok {
			violate("subtotal overflows", map[string]int64{"line": int64(line)})
		}
	}

	if !shipping.Serviceable {
		return model.PricingResult{}, model.ErrUnserviceable.WithDetails(map[string]any{"pincode": shipping.Pincode})
	}
	if shipping.Rate < 0 {
		violate("shipping rate must not be negative", map[string]int64{"rate": int64(shipping.Rate)})
	}

	var (
		discount   model.Money
		couponCode *string
	)
	if coupon != nil && coupon.Valid {
		discount = coupon.Discount
		code := coupon.Code
		couponCode = &code
	}
	if discount < 0 {
		violate("discount must not be negative", map[string]int64{"discount": int64(discount)})
	}
	if discount > subtotal {
		violate("discount must not exceed subtotal", map[string]int64{
			"discount": int64(discount),
			"subtotal": int64(subtotal),
		})
	}

	total, ok := max(0, subtotal-discount).Plus(shipping.Rate)
	if !ok {
		violate("total overflows", map[string]int64{
			"subtotal": int64(subtotal),
			"discount": int64(discount),
			"rate":     int64(shipping.Rate),
		})
	}
	if total < 0 {
		violate("total must not be negative", map[string]int64{"total": int64(total)})
	}

	return model.PricingResult{
		Subtotal:     subtotal,
		Discount:     discount,
		CouponCode:   couponCode,
		ShippingCost: shipping.Rate,
		Total:        total,
	}, nil
}

// Reconcile reports whether a client-held pricing matches a fresh
// computation. Only the money fields and the applied coupon are compared.
func Reconcile(shown, current model.PricingResult) bool {
	if shown.Subtotal != current.Subtotal ||
		shown.Discount != current.Discount ||
		shown.ShippingCost != current.ShippingCost ||
		shown.Total != current.Total {
		return false
	}
	return couponCode(shown) == couponCode(current)
}

func couponCode(p model.PricingResult) string {
	if p.CouponCode == nil {
		return ""
	}
	return model.NormalizeCouponCode(*p.CouponCode)
}

func violate(invariant string, values map[string]int64) {
	panic(&model.IntegrityError{Invariant: invariant, Values: values})
}
