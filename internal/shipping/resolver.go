package shipping

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"golang.org/x/text/width"
)

// DefaultPincodeLength is the length of an Indian postal code.
const DefaultPincodeLength = 6

// ZoneSource provides the current set of shipping zones.
type ZoneSource interface {
	ListZones(ctx context.Context) ([]model.ShippingZone, error)
}

// Resolver maps delivery pincodes to shipping quotes.
type Resolver struct {
	pincodeLength int
}

// NewResolver creates a resolver accepting pincodes of the given length.
func NewResolver(pincodeLength int) *Resolver {
	if pincodeLength <= 0 {
		pincodeLength = DefaultPincodeLength
	}
	return &Resolver{pincodeLength: pincodeLength}
}

// PincodeLength returns the accepted pincode length.
func (r *Resolver) PincodeLength() int {
	return r.pincodeLength
}

// NormalizePincode trims the input, folds full-width digits and drops every
// non-digit. The result must have exactly length digits.
func NormalizePincode(raw string, length int) (string, error) {
	folded := width.Fold.String(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	code := b.String()
	if len(code) != length {
		return "", model.ErrInvalidPincode.WithDetails(map[string]any{
			"pincode":        raw,
			"expectedLength": length,
		})
	}
	return code, nil
}

// Normalize normalises a pincode using the resolver's configured length.
func (r *Resolver) Normalize(raw string) (string, error) {
	return NormalizePincode(raw, r.pincodeLength)
}

// Resolve finds the shipping quote for pincode. Zones are scanned by
// ascending priority and the first zone listing the pincode wins. An
// unmatched pincode yields a quote with Serviceable set to false, never a
// zero-rate quote.
func (r *Resolver) Resolve(pincode string, zones []model.ShippingZone) (model.ShippingQuote, error) {
	code, err := r.Normalize(pincode)
	if err != nil {
		return model.ShippingQuote{}, err
	}

	for _, zone := range SortZones(zones) {
		for _, p := range zone.Pincodes {
			if p == code {
				return model.ShippingQuote{
					Serviceable:  true,
					Pincode:      code,
					ZoneID:       zone.ID,
					ZoneName:     zone.Name,
					Rate:         zone.Rate,
					DeliveryDays: zone.DeliveryDays,
				}, nil
			}
		}
	}

	return model.ShippingQuote{Serviceable: false, Pincode: code}, nil
}

// SortZones returns a copy of zones in scan order: priority, then name, then id.
func SortZones(zones []model.ShippingZone) []model.ShippingZone {
	sorted := slices.Clone(zones)
	slices.SortStableFunc(sorted, func(a, b model.ShippingZone) int {
		return cmp.Or(
			cmp.Compare(a.Priority, b.Priority),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return sorted
}
