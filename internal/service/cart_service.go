package service

import (
	"context"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/cart"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/rs/zerolog"
)

// cartService implements CartService. Each call opens a fresh cart.Store.
type cartService struct {
	persister   cart.Persister
	products    ProductService
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(persister cart.Persister, products ProductService, logger zerolog.Logger) CartService {
	return &cartService{
		persister: persister,
		products:  products,
		logger:    logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) open(ctx context.Context, sessionID string) (*cart.Store, error) {
	store, err := cart.Open(ctx, sessionID, s.persister)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to open cart")
		return nil, err
	}
	return store, nil
}

func view(store *cart.Store) *model.CartView {
	v := store.View()
	return &v
}

// Get returns the cart for a session. An unknown session has an empty cart.
func (s *cartService) Get(ctx context.Context, sessionID string) (*model.CartView, error) {
	store, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return view(store), nil
}

// AddItem adds a product at its current price.
func (s *cartService) AddItem(ctx context.Context, sessionID string, req *model.AddItemRequest) (*model.CartView, error) {
	if req.ProductID == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "productId is required")
	}
	if req.Quantity <= 0 || req.Quantity > model.MaxLineQuantity {
		return nil, model.ErrInvalidQuantity.WithDetails(map[string]any{"quantity": req.Quantity})
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	store, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := store.AddItem(ctx, *product, req.VariantID, req.Quantity); err != nil {
		s.logger.Warn().
			Err(err).
			Str("session_id", sessionID).
			Str("product_id", req.ProductID).
			Str("variant_id", req.VariantID).
			Msg("failed to add item to cart")
		return nil, err
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("product_id", req.ProductID).
		Int("quantity", req.Quantity).
		Msg("item added to cart")

	return view(store), nil
}

// UpdateItem replaces a line quantity.
func (s *cartService) UpdateItem(ctx context.Context, sessionID string, req *model.UpdateItemRequest) (*model.CartView, error) {
	if req.ProductID == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "productId is required")
	}

	store, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := store.UpdateQuantity(ctx, req.ProductID, req.VariantID, req.Quantity); err != nil {
		return nil, err
	}
	return view(store), nil
}

// RemoveItem drops a line from the cart.
func (s *cartService) RemoveItem(ctx context.Context, sessionID, productID, variantID string) (*model.CartView, error) {
	if productID == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "productId is required")
	}

	store, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := store.RemoveItem(ctx, productID, variantID); err != nil {
		return nil, err
	}
	return view(store), nil
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, sessionID string) error {
	store, err := s.open(ctx, sessionID)
	if err != nil {
		return err
	}
	return store.Clear(ctx)
}
