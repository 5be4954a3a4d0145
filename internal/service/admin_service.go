package service

import (
	"context"
	"fmt"
	"time"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/repository"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/shipping"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// adminService implements AdminService.
type adminService struct {
	coupons       repository.CouponRepository
	zones         repository.ZoneRepository
	pincodeLength int
	now           func() time.Time
	logger        zerolog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(
	coupons repository.CouponRepository,
	zones repository.ZoneRepository,
	pincodeLength int,
	logger zerolog.Logger,
) AdminService {
	return &adminService{
		coupons:       coupons,
		zones:         zones,
		pincodeLength: pincodeLength,
		now:           time.Now,
		logger:        logger.With().Str("service", "admin").Logger(),
	}
}

func (s *adminService) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	coupons, err := s.coupons.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

func (s *adminService) GetCoupon(ctx context.Context, code string) (*model.Coupon, error) {
	normalized := model.NormalizeCouponCode(code)
	c, err := s.coupons.Lookup(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if c == nil {
		return nil, model.ErrCouponNotFound.WithDetails(map[string]any{"code": normalized})
	}
	return c, nil
}

func couponFromRequest(code string, req *model.CouponRequest, now time.Time) *model.Coupon {
	return &model.Coupon{
		Code:              model.NormalizeCouponCode(code),
		Kind:              req.Kind,
		Value:             req.Value,
		MinOrderValue:     req.MinOrderValue,
		MaxDiscountAmount: req.MaxDiscountAmount,
		ExpiresAt:         req.ExpiresAt,
		UsageLimit:        req.UsageLimit,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// CreateCoupon validates and stores a new coupon with zero usage.
func (s *adminService) CreateCoupon(ctx context.Context, req *model.CouponRequest) (*model.Coupon, error) {
	c := couponFromRequest(req.Code, req, s.now().UTC())
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.coupons.Create(ctx, c); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.Info().Str("coupon_code", c.Code).Str("kind", string(c.Kind)).Msg("coupon created")
	return c, nil
}

// UpdateCoupon rewrites the rule of an existing coupon. The code in the path
// wins over any code in the body.
func (s *adminService) UpdateCoupon(ctx context.Context, code string, req *model.CouponRequest) (*model.Coupon, error) {
	c := couponFromRequest(code, req, s.now().UTC())
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.coupons.Update(ctx, c); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}

	s.logger.Info().Str("coupon_code", c.Code).Msg("coupon updated")
	return c, nil
}

func (s *adminService) DeleteCoupon(ctx context.Context, code string) error {
	normalized := model.NormalizeCouponCode(code)
	if err := s.coupons.Delete(ctx, normalized); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return err
		}
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	s.logger.Info().Str("coupon_code", normalized).Msg("coupon deleted")
	return nil
}

func (s *adminService) ListZones(ctx context.Context) ([]model.ShippingZone, error) {
	zones, err := s.zones.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipping zones: %w", err)
	}
	return shipping.SortZones(zones), nil
}

// CreateZone validates a new zone and rejects pincodes another zone owns.
func (s *adminService) CreateZone(ctx context.Context, req *model.ZoneRequest) (*model.ShippingZone, error) {
	now := s.now().UTC()
	z := zoneFromRequest(uuid.NewString(), req, now)
	if err := s.checkZone(ctx, z); err != nil {
		return nil, err
	}

	if err := s.zones.CreateZone(ctx, z); err != nil {
		return nil, fmt.Errorf("failed to create shipping zone: %w", err)
	}

	s.logger.Info().Str("zone_id", z.ID).Str("zone_name", z.Name).Int("pincodes", len(z.Pincodes)).Msg("shipping zone created")
	return z, nil
}

// UpdateZone replaces an existing zone's definition.
func (s *adminService) UpdateZone(ctx context.Context, id string, req *model.ZoneRequest) (*model.ShippingZone, error) {
	existing, err := s.zones.GetZone(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get shipping zone: %w", err)
	}
	if existing == nil {
		return nil, model.ErrZoneNotFound.WithDetails(map[string]any{"id": id})
	}

	z := zoneFromRequest(id, req, s.now().UTC())
	z.CreatedAt = existing.CreatedAt
	if err := s.checkZone(ctx, z); err != nil {
		return nil, err
	}

	if err := s.zones.UpdateZone(ctx, z); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update shipping zone: %w", err)
	}

	s.logger.Info().Str("zone_id", z.ID).Msg("shipping zone updated")
	return z, nil
}

func (s *adminService) DeleteZone(ctx context.Context, id string) error {
	if err := s.zones.DeleteZone(ctx, id); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return err
		}
		return fmt.Errorf("failed to delete shipping zone: %w", err)
	}
	s.logger.Info().Str("zone_id", id).Msg("shipping zone deleted")
	return nil
}

func zoneFromRequest(id string, req *model.ZoneRequest, now time.Time) *model.ShippingZone {
	return &model.ShippingZone{
		ID:           id,
		Name:         req.Name,
		Pincodes:     append([]string(nil), req.Pincodes...),
		Rate:         req.Rate,
		DeliveryDays: req.DeliveryDays,
		Priority:     req.Priority,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// checkZone normalises z and compares it against every other stored zone.
func (s *adminService) checkZone(ctx context.Context, z *model.ShippingZone) error {
	if err := shipping.ValidateZone(z, s.pincodeLength); err != nil {
		return err
	}

	zones, err := s.zones.ListZones(ctx)
	if err != nil {
		return fmt.Errorf("failed to list shipping zones: %w", err)
	}

	candidate := []model.ShippingZone{*z}
	for _, other := range zones {
		if other.ID != z.ID {
			candidate = append(candidate, other)
		}
	}

	if overlaps := shipping.FindOverlaps(candidate); len(overlaps) > 0 {
		s.logger.Warn().Str("zone_name", z.Name).Int("overlaps", len(overlaps)).Msg("shipping zone overlaps existing zones")
		return model.ErrZoneOverlap.WithDetails(map[string]any{"overlaps": overlaps})
	}
	return nil
}

// ImportZones writes a loaded zone catalogue into the zone repository,
// creating unknown ids and replacing known ones. It returns how many zones
// were written.
func ImportZones(ctx context.Context, repo repository.ZoneRepository, zones []model.ShippingZone, logger zerolog.Logger) (int, error) {
	now := time.Now().UTC()
	for i := range zones {
		z := zones[i]
		z.CreatedAt, z.UpdatedAt = now, now
		existing, err := repo.GetZone(ctx, z.ID)
		if err != nil {
			return i, fmt.Errorf("failed to get shipping zone %s: %w", z.ID, err)
		}

		if existing == nil {
			err = repo.CreateZone(ctx, &z)
		} else {
			z.CreatedAt = existing.CreatedAt
			err = repo.UpdateZone(ctx, &z)
		}
		if err != nil {
			return i, fmt.Errorf("failed to import shipping zone %s: %w", z.ID, err)
		}
	}

	logger.Info().Int("zones", len(zones)).Msg("shipping zone catalogue imported")
	return len(zones), nil
}
