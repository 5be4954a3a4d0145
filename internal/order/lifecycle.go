package order

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/pricing"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/shipping"

	"github.com/google/uuid"
)

// transitions lists the statuses reachable from each status. Delivered and
// Cancelled are terminal; returns after shipment are handled outside the
// order lifecycle.
var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusProcessing, model.OrderStatusCancelled},
	model.OrderStatusProcessing: {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:    {model.OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to model.OrderStatus) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	return slices.Contains(next, to)
}

// NextStatuses returns the statuses reachable from status.
func NextStatuses(status model.OrderStatus) []model.OrderStatus {
	return slices.Clone(transitions[status])
}

// Transition moves o to status and appends the change to its history. An
// illegal move returns ErrIllegalStatusTransition and leaves o untouched.
func Transition(o *model.Order, to model.OrderStatus, at time.Time) error {
	if !CanTransition(o.Status, to) {
		return model.ErrIllegalStatusTransition.
			WithMessage("cannot move order %s from %s to %s", o.OrderNumber, o.Status, to).
			WithDetails(map[string]any{
				"from":    o.Status,
				"to":      to,
				"allowed": NextStatuses(o.Status),
			})
	}

	at = at.UTC()
	o.Status = to
	o.UpdatedAt = at
	o.StatusHistory = append(o.StatusHistory, model.StatusChange{Status: to, At: at})
	return nil
}

// PlaceInput carries everything needed to create an order.
type PlaceInput struct {
	Number         string
	Customer       model.Customer
	Items          []model.LineItem
	Coupon         *model.CouponResult
	Shipping       model.ShippingQuote
	IdempotencyKey string
}

// Place prices the cart and freezes the result into a new Pending order.
// Items are copied, so later cart or catalogue changes never reach the order.
func Place(in PlaceInput, now time.Time) (*model.Order, error) {
	customer, err := validateCustomer(in.Customer, in.Shipping)
	if err != nil {
		return nil, err
	}

	result, err := pricing.Price(in.Items, in.Coupon, in.Shipping)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &model.Order{
		ID:             uuid.New(),
		OrderNumber:    in.Number,
		Customer:       customer,
		Items:          slices.Clone(in.Items),
		Pricing:        result,
		Shipping:       in.Shipping,
		Status:         model.OrderStatusPending,
		StatusHistory:  []model.StatusChange{{Status: model.OrderStatusPending, At: now}},
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// FormatOrderNumber renders a human-readable order number such as
// ORD-2026-000042.
func FormatOrderNumber(year int, seq int64) string {
	return fmt.Sprintf("ORD-%04d-%06d", year, seq)
}

func validateCustomer(c model.Customer, quote model.ShippingQuote) (model.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)

	missing := func(field string) error {
		return model.ErrInvalidCustomer.
			WithMessage("customer %s is required", field).
			WithDetails(map[string]any{"field": field})
	}

	switch {
	case c.Name == "":
		return c, missing("name")
	case c.Phone == "":
		return c, missing("phone")
	case c.Address == "":
		return c, missing("address")
	case c.Email == "":
		return c, missing("email")
	}

	if addr, err := mail.ParseAddress(c.Email); err != nil || addr.Address != c.Email {
		return c, model.ErrInvalidCustomer.
			WithMessage("customer email %q is not valid", c.Email).
			WithDetails(map[string]any{"field": "email"})
	}

	if c.Pincode == "" {
		c.Pincode = quote.Pincode
		return c, nil
	}
	code, err := shipping.NormalizePincode(c.Pincode, len(quote.Pincode))
	if err != nil || code != quote.Pincode {
		return c, model.ErrInvalidCustomer.
			WithMessage("customer pincode %q does not match the delivery quote", c.Pincode).
			WithDetails(map[string]any{"field": "pincode"})
	}
	c.Pincode = code
	return c, nil
}
