package service

import (
	"context"
	"testing"
	"time"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/shipping"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAdminService() (AdminService, *MockCouponRepository, *MockZoneRepository) {
	coupons := new(MockCouponRepository)
	zones := new(MockZoneRepository)
	return NewAdminService(coupons, zones, 6, zerolog.Nop()), coupons, zones
}

func TestAdminService_CreateCoupon(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *model.CouponRequest
		repoErr error
		wantErr error
	}{
		{
			name: "Percentage coupon",
			req:  &model.CouponRequest{Code: " save20 ", Kind: model.DiscountPercentage, Value: decimal.NewFromInt(20), MaxDiscountAmount: model.MoneyPtr(20000)},
		},
		{
			name:    "Zero value",
			req:     &model.CouponRequest{Code: "ZERO", Kind: model.DiscountFixedAmount, Value: decimal.Zero},
			wantErr: model.ErrInvalidCoupon,
		},
		{
			name:    "Unknown kind",
			req:     &model.CouponRequest{Code: "ODD", Kind: "bogo", Value: decimal.NewFromInt(1)},
			wantErr: model.ErrInvalidCoupon,
		},
		{
			name:    "Code already taken",
			req:     &model.CouponRequest{Code: "FLAT100", Kind: model.DiscountFixedAmount, Value: decimal.NewFromInt(10000)},
			repoErr: model.ErrCouponExists,
			wantErr: model.ErrCouponExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, coupons, _ := newAdminService()
			coupons.On("Create", ctx, mock.AnythingOfType("*model.Coupon")).Return(tt.repoErr)

			c, err := svc.CreateCoupon(ctx, tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "SAVE20", c.Code)
			assert.Equal(t, 0, c.UsageCount)
			assert.False(t, c.CreatedAt.IsZero())
		})
	}
}

func TestAdminService_CouponLookupAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, coupons, _ := newAdminService()

	coupons.On("Lookup", ctx, "SAVE20").Return(&model.Coupon{Code: "SAVE20"}, nil)
	coupons.On("Lookup", ctx, "GONE").Return(nil, nil)
	coupons.On("Delete", ctx, "SAVE20").Return(nil)
	coupons.On("Delete", ctx, "GONE").Return(model.ErrCouponNotFound)
	coupons.On("Update", ctx, mock.MatchedBy(func(c *model.Coupon) bool { return c.Code == "GONE" })).
		Return(model.ErrCouponNotFound)

	c, err := svc.GetCoupon(ctx, "save20")
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", c.Code)

	_, err = svc.GetCoupon(ctx, "gone")
	assert.ErrorIs(t, err, model.ErrCouponNotFound)

	require.NoError(t, svc.DeleteCoupon(ctx, "save20"))
	assert.ErrorIs(t, svc.DeleteCoupon(ctx, "gone"), model.ErrCouponNotFound)

	_, err = svc.UpdateCoupon(ctx, "gone", &model.CouponRequest{Kind: model.DiscountFixedAmount, Value: decimal.NewFromInt(500)})
	assert.ErrorIs(t, err, model.ErrCouponNotFound)
}

func TestAdminService_CreateZone(t *testing.T) {
	ctx := context.Background()
	existing := []model.ShippingZone{
		{ID: "z-metro", Name: "Metro", Pincodes: []string{"560001", "400001"}, Rate: 5000, Priority: 10},
	}

	tests := []struct {
		name     string
		req      *model.ZoneRequest
		wantErr  error
		pincodes []string
	}{
		{
			name:     "New zone with normalised pincodes",
			req:      &model.ZoneRequest{Name: "Kerala", Pincodes: []string{"682 001", "６９５００１"}, Rate: 8000, DeliveryDays: "3-5", Priority: 20},
			pincodes: []string{"682001", "695001"},
		},
		{
			name:    "Overlapping pincode",
			req:     &model.ZoneRequest{Name: "Bengaluru", Pincodes: []string{"560001"}, Rate: 4000},
			wantErr: model.ErrZoneOverlap,
		},
		{
			name:    "Malformed pincode",
			req:     &model.ZoneRequest{Name: "Bad", Pincodes: []string{"12"}, Rate: 4000},
			wantErr: model.ErrInvalidZone,
		},
		{
			name:    "Negative rate",
			req:     &model.ZoneRequest{Name: "Bad", Pincodes: []string{"110001"}, Rate: -1},
			wantErr: model.ErrInvalidZone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, zones := newAdminService()
			zones.On("ListZones", ctx).Return(existing, nil)
			zones.On("CreateZone", ctx, mock.AnythingOfType("*model.ShippingZone")).Return(nil)

			z, err := svc.CreateZone(ctx, tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				zones.AssertNotCalled(t, "CreateZone", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, z.ID)
			assert.Equal(t, tt.pincodes, z.Pincodes)
			zones.AssertExpectations(t)
		})
	}
}

func TestAdminService_ZoneOverlapDetails(t *testing.T) {
	ctx := context.Background()
	svc, _, zones := newAdminService()
	zones.On("ListZones", ctx).Return([]model.ShippingZone{
		{ID: "z-metro", Name: "Metro", Pincodes: []string{"560001"}},
	}, nil)

	_, err := svc.CreateZone(ctx, &model.ZoneRequest{Name: "South", Pincodes: []string{"560001", "600001"}})

	de, ok := model.AsDomainError(err)
	require.True(t, ok)
	overlaps, ok := de.Details["overlaps"].([]shipping.Overlap)
	require.True(t, ok)
	require.Len(t, overlaps, 1)
	assert.Equal(t, "560001", overlaps[0].Pincode)
	assert.Contains(t, overlaps[0].ZoneIDs, "z-metro")
}

func TestAdminService_UpdateZone(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	metro := model.ShippingZone{ID: "z-metro", Name: "Metro", Pincodes: []string{"560001"}, Rate: 5000, CreatedAt: created}

	t.Run("Own pincodes do not count as overlap", func(t *testing.T) {
		svc, _, zones := newAdminService()
		zones.On("GetZone", ctx, "z-metro").Return(&metro, nil)
		zones.On("ListZones", ctx).Return([]model.ShippingZone{metro}, nil)
		zones.On("UpdateZone", ctx, mock.AnythingOfType("*model.ShippingZone")).Return(nil)

		z, err := svc.UpdateZone(ctx, "z-metro", &model.ZoneRequest{Name: "Metro", Pincodes: []string{"560001", "560002"}, Rate: 4500})

		require.NoError(t, err)
		assert.Equal(t, model.Money(4500), z.Rate)
		assert.Equal(t, created, z.CreatedAt)
		zones.AssertExpectations(t)
	})

	t.Run("Unknown zone", func(t *testing.T) {
		svc, _, zones := newAdminService()
		zones.On("GetZone", ctx, "z-none").Return(nil, nil)

		_, err := svc.UpdateZone(ctx, "z-none", &model.ZoneRequest{Name: "None", Pincodes: []string{"110001"}})

		assert.ErrorIs(t, err, model.ErrZoneNotFound)
	})
}

func TestImportZones(t *testing.T) {
	ctx := context.Background()
	zones := new(MockZoneRepository)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	zones.On("GetZone", ctx, "z-metro").Return(&model.ShippingZone{ID: "z-metro", CreatedAt: created}, nil)
	zones.On("GetZone", ctx, "z-remote").Return(nil, nil)
	zones.On("UpdateZone", ctx, mock.MatchedBy(func(z *model.ShippingZone) bool {
		return z.ID == "z-metro" && z.CreatedAt.Equal(created)
	})).Return(nil)
	zones.On("CreateZone", ctx, mock.MatchedBy(func(z *model.ShippingZone) bool {
		return z.ID == "z-remote"
	})).Return(nil)

	n, err := ImportZones(ctx, zones, []model.ShippingZone{
		{ID: "z-metro", Name: "Metro", Pincodes: []string{"560001"}},
		{ID: "z-remote", Name: "Remote", Pincodes: []string{"799001"}},
	}, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	zones.AssertExpectations(t)
}
