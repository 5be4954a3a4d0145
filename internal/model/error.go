package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeInvalidParameter        = "INVALID_PARAMETER"
	ErrCodeMissingField            = "MISSING_FIELD"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeInvalidPincode          = "INVALID_PINCODE"
	ErrCodeEmptyCart               = "EMPTY_CART"
	ErrCodeMissingIdempotencyKey   = "MISSING_IDEMPOTENCY_KEY"
	ErrCodeInvalidCoupon           = "INVALID_COUPON"
	ErrCodeInvalidZone             = "INVALID_ZONE"
	ErrCodeInvalidCustomer         = "INVALID_CUSTOMER"
	ErrCodeInvalidStatus           = "INVALID_STATUS"
	ErrCodeCouponNotFound          = "COUPON_NOT_FOUND"
	ErrCodeCouponExpired           = "COUPON_EXPIRED"
	ErrCodeCouponExhausted         = "COUPON_EXHAUSTED"
	ErrCodeMinimumOrderNotMet      = "MINIMUM_ORDER_NOT_MET"
	ErrCodeUnserviceable           = "UNSERVICEABLE"
	ErrCodeIllegalStatusTransition = "ILLEGAL_STATUS_TRANSITION"
	ErrCodePriceChanged            = "PRICE_CHANGED"
	ErrCodeProductNotFound         = "PRODUCT_NOT_FOUND"
	ErrCodeVariantNotFound         = "VARIANT_NOT_FOUND"
	ErrCodeOrderNotFound           = "ORDER_NOT_FOUND"
	ErrCodeZoneNotFound            = "ZONE_NOT_FOUND"
	ErrCodeCheckoutInProgress      = "CHECKOUT_IN_PROGRESS"
	ErrCodeZoneOverlap             = "ZONE_OVERLAP"
	ErrCodeCouponExists            = "COUPON_EXISTS"
	ErrCodeUnauthorised            = "UNAUTHORIZED"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// ErrorKind groups error codes by how callers are expected to react.
type ErrorKind string

const (
	KindInput     ErrorKind = "input"
	KindRejection ErrorKind = "rejection"
	KindNotFound  ErrorKind = "not_found"
	KindConflict  ErrorKind = "conflict"
	KindInternal  ErrorKind = "internal"
)

var codeKinds = map[string]ErrorKind{
	ErrCodeInvalidJSON:             KindInput,
	ErrCodeInvalidParameter:        KindInput,
	ErrCodeMissingField:            KindInput,
	ErrCodeInvalidQuantity:         KindInput,
	ErrCodeInvalidPincode:          KindInput,
	ErrCodeEmptyCart:               KindInput,
	ErrCodeMissingIdempotencyKey:   KindInput,
	ErrCodeInvalidCoupon:           KindInput,
	ErrCodeInvalidZone:             KindInput,
	ErrCodeInvalidCustomer:         KindInput,
	ErrCodeInvalidStatus:           KindInput,
	ErrCodeCouponNotFound:          KindRejection,
	ErrCodeCouponExpired:           KindRejection,
	ErrCodeCouponExhausted:         KindRejection,
	ErrCodeMinimumOrderNotMet:      KindRejection,
	ErrCodeUnserviceable:           KindRejection,
	ErrCodeIllegalStatusTransition: KindRejection,
	ErrCodePriceChanged:            KindRejection,
	ErrCodeProductNotFound:         KindNotFound,
	ErrCodeVariantNotFound:         KindNotFound,
	ErrCodeOrderNotFound:           KindNotFound,
	ErrCodeZoneNotFound:            KindNotFound,
	ErrCodeCheckoutInProgress:      KindConflict,
	ErrCodeZoneOverlap:             KindConflict,
	ErrCodeCouponExists:            KindConflict,
}

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so errors.Is works
// against the sentinels below even when details were attached.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Kind reports the category of the error code.
func (e *DomainError) Kind() ErrorKind {
	if kind, ok := codeKinds[e.Code]; ok {
		return kind
	}
	return KindInternal
}

// WithDetails returns a copy of the error carrying the given details.
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &DomainError{Code: e.Code, Message: e.Message, Details: merged}
}

// WithMessage returns a copy of the error with a more specific message.
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	return &DomainError{Code: e.Code, Message: fmt.Sprintf(format, args...), Details: e.Details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// AsDomainError unwraps err into a DomainError if it is one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Shortfall returns the amount still missing for a MinimumOrderNotMet rejection.
func Shortfall(err error) (Money, bool) {
	de, ok := AsDomainError(err)
	if !ok || de.Code != ErrCodeMinimumOrderNotMet {
		return 0, false
	}
	v, ok := de.Details["shortfall"].(Money)
	return v, ok
}

// Common domain errors
var (
	ErrInvalidQuantity         = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidPincode          = NewDomainError(ErrCodeInvalidPincode, "Pincode is malformed")
	ErrEmptyCart               = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrMissingIdempotencyKey   = NewDomainError(ErrCodeMissingIdempotencyKey, "Idempotency key is required")
	ErrInvalidCoupon           = NewDomainError(ErrCodeInvalidCoupon, "Coupon definition is invalid")
	ErrInvalidZone             = NewDomainError(ErrCodeInvalidZone, "Shipping zone definition is invalid")
	ErrInvalidCustomer         = NewDomainError(ErrCodeInvalidCustomer, "Customer details are invalid")
	ErrInvalidStatus           = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrCouponNotFound          = NewDomainError(ErrCodeCouponNotFound, "Coupon not found")
	ErrCouponExpired           = NewDomainError(ErrCodeCouponExpired, "Coupon has expired")
	ErrCouponExhausted         = NewDomainError(ErrCodeCouponExhausted, "Coupon usage limit reached")
	ErrMinimumOrderNotMet      = NewDomainError(ErrCodeMinimumOrderNotMet, "Order does not meet the coupon minimum")
	ErrUnserviceable           = NewDomainError(ErrCodeUnserviceable, "Delivery is not available for this pincode")
	ErrIllegalStatusTransition = NewDomainError(ErrCodeIllegalStatusTransition, "Order status transition is not allowed")
	ErrPriceChanged            = NewDomainError(ErrCodePriceChanged, "Cart pricing changed, please review the new total")
	ErrProductNotFound         = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrVariantNotFound         = NewDomainError(ErrCodeVariantNotFound, "Product variant not found")
	ErrOrderNotFound           = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrZoneNotFound            = NewDomainError(ErrCodeZoneNotFound, "Shipping zone not found")
	ErrCheckoutInProgress      = NewDomainError(ErrCodeCheckoutInProgress, "Checkout already in progress for this session")
	ErrZoneOverlap             = NewDomainError(ErrCodeZoneOverlap, "Pincodes already belong to another zone")
	ErrCouponExists            = NewDomainError(ErrCodeCouponExists, "Coupon code already exists")
)

// IntegrityError signals a broken monetary invariant. It is raised with
// panic, never returned.
type IntegrityError struct {
	Invariant string
	Values    map[string]int64
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("pricing integrity violation: %s %v", e.Invariant, e.Values)
}
