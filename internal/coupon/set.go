package coupon

import (
	"context"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
)

// Set implements Collection using a map for O(1) lookups.
type Set struct {
	coupons map[string]model.Coupon
}

// NewSet creates a coupon set keyed by normalised code. Later entries with
// the same code replace earlier ones.
func NewSet(coupons ...model.Coupon) *Set {
	s := &Set{coupons: make(map[string]model.Coupon, len(coupons))}
	for _, c := range coupons {
		s.Add(c)
	}
	return s
}

// Add stores a coupon under its normalised code.
func (s *Set) Add(c model.Coupon) {
	c.Code = model.NormalizeCouponCode(c.Code)
	s.coupons[c.Code] = c
}

// Lookup returns a copy of the coupon for code, or nil.
func (s *Set) Lookup(ctx context.Context, code string) (*model.Coupon, error) {
	c, ok := s.coupons[model.NormalizeCouponCode(code)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Size returns the number of coupons in the set.
func (s *Set) Size() int {
	return len(s.coupons)
}
