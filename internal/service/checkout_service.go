package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/cart"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/coupon"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/events"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/lock"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/order"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/pricing"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/repository"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/shipping"

	"github.com/rs/zerolog"
)

// CheckoutDeps groups the collaborators of the checkout service.
type CheckoutDeps struct {
	Carts     cart.Persister
	Coupons   repository.CouponRepository
	Validator coupon.Validator
	Zones     shipping.ZoneSource
	Resolver  *shipping.Resolver
	Orders    repository.OrderRepository
	Locker    lock.Locker
	Publisher events.Publisher
	LockTTL   time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	deps   CheckoutDeps
	logger zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(deps CheckoutDeps, logger zerolog.Logger) CheckoutService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.LockTTL <= 0 {
		deps.LockTTL = 30 * time.Second
	}
	return &checkoutService{
		deps:   deps,
		logger: logger.With().Str("service", "checkout").Logger(),
	}
}

// quote is the priced state of a cart at one instant.
type quote struct {
	items    []model.LineItem
	coupon   *model.CouponResult
	shipping model.ShippingQuote
}

// prepare loads the cart, resolves shipping for pincode and validates the
// coupon against the cart subtotal.
func (s *checkoutService) prepare(ctx context.Context, store *cart.Store, pincode, couponCode string) (*quote, error) {
	if store.ItemCount() == 0 {
		return nil, model.ErrEmptyCart
	}

	zones, err := s.deps.Zones.ListZones(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list shipping zones")
		return nil, fmt.Errorf("failed to list shipping zones: %w", err)
	}

	ship, err := s.deps.Resolver.Resolve(pincode, zones)
	if err != nil {
		return nil, err
	}

	q := &quote{items: store.Items(), shipping: ship}
	if couponCode != "" {
		result, err := s.deps.Validator.Validate(ctx, couponCode, store.Subtotal(), s.deps.Coupons)
		if err != nil {
			return nil, err
		}
		q.coupon = result
	}
	return q, nil
}

// PriceCart previews the payable total for a session's cart.
func (s *checkoutService) PriceCart(ctx context.Context, req *model.PriceCartRequest) (*model.PriceQuote, error) {
	if req.Pincode == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "pincode is required")
	}

	store, err := cart.Open(ctx, req.SessionID, s.deps.Carts)
	if err != nil {
		return nil, err
	}

	q, err := s.prepare(ctx, store, req.Pincode, req.CouponCode)
	if err != nil {
		return nil, err
	}

	result, err := pricing.Price(q.items, q.coupon, q.shipping)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("session_id", req.SessionID).
		Str("pincode", q.shipping.Pincode).
		Int64("total", int64(result.Total)).
		Msg("cart priced")

	return &model.PriceQuote{
		Pricing:   result,
		Shipping:  q.shipping,
		Items:     q.items,
		ItemCount: store.ItemCount(),
	}, nil
}

// PlaceOrder turns the session's cart into an order exactly once per
// idempotency key.
func (s *checkoutService) PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest) (*model.Order, bool, error) {
	if req.IdempotencyKey == "" {
		return nil, false, model.ErrMissingIdempotencyKey
	}
	if req.SessionID == "" {
		return nil, false, model.NewDomainError(model.ErrCodeMissingField, "sessionId is required")
	}

	if existing, err := s.replay(ctx, req.IdempotencyKey); err != nil || existing != nil {
		return existing, false, err
	}

	release, err := s.deps.Locker.Acquire(ctx, "checkout:"+req.SessionID, s.deps.LockTTL)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", req.SessionID).Msg("checkout lock not acquired")
		return nil, false, err
	}
	defer release()

	// The key may have been used while we waited for the lock.
	if existing, err := s.replay(ctx, req.IdempotencyKey); err != nil || existing != nil {
		return existing, false, err
	}

	store, err := cart.Open(ctx, req.SessionID, s.deps.Carts)
	if err != nil {
		return nil, false, err
	}

	q, err := s.prepare(ctx, store, req.Customer.Pincode, req.CouponCode)
	if err != nil {
		return nil, false, err
	}

	now := s.deps.Now()
	o, err := order.Place(order.PlaceInput{
		Customer:       req.Customer,
		Items:          q.items,
		Coupon:         q.coupon,
		Shipping:       q.shipping,
		IdempotencyKey: req.IdempotencyKey,
	}, now)
	if err != nil {
		return nil, false, err
	}

	if req.Pricing != nil && !pricing.Reconcile(*req.Pricing, o.Pricing) {
		s.logger.Info().
			Str("session_id", req.SessionID).
			Int64("shown_total", int64(req.Pricing.Total)).
			Int64("current_total", int64(o.Pricing.Total)).
			Msg("pricing changed since quote")
		return nil, false, model.ErrPriceChanged.WithDetails(map[string]any{"pricing": o.Pricing})
	}

	if err := s.persist(ctx, o, now); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdempotencyKey) {
			winner, rerr := s.replay(ctx, req.IdempotencyKey)
			if rerr != nil {
				return nil, false, rerr
			}
			if winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, err
	}

	s.logger.Info().
		Str("order_id", o.ID.String()).
		Str("order_number", o.OrderNumber).
		Int("item_count", len(o.Items)).
		Int64("total", int64(o.Pricing.Total)).
		Msg("order placed successfully")

	if err := store.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).Str("session_id", req.SessionID).Msg("failed to clear cart after checkout")
	}
	if err := s.deps.Publisher.Publish(ctx, events.OrderPlaced(o)); err != nil {
		s.logger.Warn().Err(err).Str("order_number", o.OrderNumber).Msg("failed to publish order placed event")
	}

	return o, true, nil
}

func (s *checkoutService) replay(ctx context.Context, key string) (*model.Order, error) {
	existing, err := s.deps.Orders.GetByIdempotencyKey(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up idempotency key")
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	if existing != nil {
		s.logger.Debug().Str("order_number", existing.OrderNumber).Msg("idempotent replay of placed order")
	}
	return existing, nil
}

// persist writes o in a single transaction: coupon usage, order number,
// then the order rows.
func (s *checkoutService) persist(ctx context.Context, o *model.Order, now time.Time) (err error) {
	tx, err := s.deps.Orders.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if o.Pricing.CouponCode != nil {
		if err = s.deps.Coupons.IncrementUsage(ctx, tx, *o.Pricing.CouponCode); err != nil {
			s.logger.Warn().Err(err).Str("coupon_code", *o.Pricing.CouponCode).Msg("failed to consume coupon")
			return err
		}
	}

	seq, err := s.deps.Orders.NextOrderNumber(ctx, tx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to allocate order number")
		return fmt.Errorf("failed to allocate order number: %w", err)
	}
	o.OrderNumber = order.FormatOrderNumber(now.UTC().Year(), seq)

	if err = s.deps.Orders.CreateOrder(ctx, tx, o); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdempotencyKey) {
			return err
		}
		s.logger.Error().Err(err).Str("order_id", o.ID.String()).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", o.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}
