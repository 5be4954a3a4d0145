package shipping

import (
	"context"
	"slices"
	"strings"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
)

// Overlap records a pincode claimed by more than one zone.
type Overlap struct {
	Pincode string   `json:"pincode"`
	ZoneIDs []string `json:"zoneIds"`
}

// ValidateZone normalises the zone's pincodes in place and checks its
// invariants.
func ValidateZone(zone *model.ShippingZone, pincodeLength int) error {
	zone.Name = strings.TrimSpace(zone.Name)
	if zone.Name == "" {
		return model.ErrInvalidZone.WithMessage("zone name is required")
	}
	if zone.Rate < 0 {
		return model.ErrInvalidZone.WithMessage("zone %q has a negative rate", zone.Name)
	}
	if len(zone.Pincodes) == 0 {
		return model.ErrInvalidZone.WithMessage("zone %q has no pincodes", zone.Name)
	}

	seen := make(map[string]struct{}, len(zone.Pincodes))
	normalized := make([]string, 0, len(zone.Pincodes))
	for _, raw := range zone.Pincodes {
		code, err := NormalizePincode(raw, pincodeLength)
		if err != nil {
			return model.ErrInvalidZone.
				WithMessage("zone %q has malformed pincode %q", zone.Name, raw).
				WithDetails(map[string]any{"pincode": raw})
		}
		if _, dup := seen[code]; dup {
			return model.ErrInvalidZone.
				WithMessage("zone %q lists pincode %s twice", zone.Name, code).
				WithDetails(map[string]any{"pincode": code})
		}
		seen[code] = struct{}{}
		normalized = append(normalized, code)
	}
	zone.Pincodes = normalized
	return nil
}

// FindOverlaps lists every pincode that more than one zone claims, sorted by
// pincode.
func FindOverlaps(zones []model.ShippingZone) []Overlap {
	owners := make(map[string][]string)
	for _, zone := range zones {
		for _, p := range zone.Pincodes {
			owners[p] = append(owners[p], zone.ID)
		}
	}

	var overlaps []Overlap
	for pincode, ids := range owners {
		if len(ids) > 1 {
			overlaps = append(overlaps, Overlap{Pincode: pincode, ZoneIDs: ids})
		}
	}
	slices.SortFunc(overlaps, func(a, b Overlap) int {
		return strings.Compare(a.Pincode, b.Pincode)
	})
	return overlaps
}

// StaticSource serves a fixed zone catalogue, typically loaded from files.
type StaticSource struct {
	zones []model.ShippingZone
}

// NewStaticSource wraps an already validated zone list.
func NewStaticSource(zones []model.ShippingZone) *StaticSource {
	return &StaticSource{zones: slices.Clone(zones)}
}

// ListZones returns a copy of the catalogue.
func (s *StaticSource) ListZones(ctx context.Context) ([]model.ShippingZone, error) {
	return slices.Clone(s.zones), nil
}
