// Package cart holds a shopper's line items for one session.
package cart

import (
	"context"
	"fmt"
	"slices"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
)

// Store is the cart of a single session. It is built per request and is not
// safe for concurrent use; concurrent writers to the same session are
// last-writer-wins at the persister.
type Store struct {
	sessionID string
	items     []model.LineItem
	persister Persister
}

// Open loads the persisted cart for sessionID.
func Open(ctx context.Context, sessionID string, persister Persister) (*Store, error) {
	if sessionID == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "session ID is required")
	}

	items, err := persister.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	return &Store{sessionID: sessionID, items: items, persister: persister}, nil
}

// AddItem adds quantity units of product (or one of its variants). An existing
// entry for the same product and variant has its quantity increased and keeps
// its original unit price; a new entry snapshots the current price. A line may
// not exceed model.MaxLineQuantity units, and the cart subtotal must fit in
// Money.
func (s *Store) AddItem(ctx context.Context, product model.Product, variantID string, quantity int) error {
	if quantity <= 0 || quantity > model.MaxLineQuantity {
		return model.ErrInvalidQuantity.WithDetails(map[string]any{"quantity": quantity})
	}

	if i := s.index(product.ID, variantID); i >= 0 {
		merged := s.items[i].Quantity + quantity
		if merged > model.MaxLineQuantity {
			return model.ErrInvalidQuantity.
				WithMessage("quantity for %s cannot exceed %d", product.ID, model.MaxLineQuantity).
				WithDetails(map[string]any{"quantity": merged})
		}
		items := slices.Clone(s.items)
		items[i].Quantity = merged
		return s.commit(ctx, items)
	}

	price, err := product.PriceFor(variantID)
	if err != nil {
		return err
	}

	items := append(slices.Clone(s.items), model.LineItem{
		ProductID: product.ID,
		VariantID: variantID,
		Name:      itemName(product, variantID),
		UnitPrice: price,
		Quantity:  quantity,
	})
	return s.commit(ctx, items)
}

// UpdateQuantity replaces the quantity of an entry. A quantity of zero or
// less removes it. Updating an entry that is not in the cart does nothing.
func (s *Store) UpdateQuantity(ctx context.Context, productID, variantID string, quantity int) error {
	i := s.index(productID, variantID)
	if i < 0 {
		return nil
	}

	if quantity <= 0 {
		s.items = slices.Delete(s.items, i, i+1)
		return s.save(ctx)
	}
	if quantity > model.MaxLineQuantity {
		return model.ErrInvalidQuantity.WithDetails(map[string]any{"quantity": quantity})
	}

	items := slices.Clone(s.items)
	items[i].Quantity = quantity
	return s.commit(ctx, items)
}

// RemoveItem drops an entry if present.
func (s *Store) RemoveItem(ctx context.Context, productID, variantID string) error {
	i := s.index(productID, variantID)
	if i < 0 {
		return nil
	}
	s.items = slices.Delete(s.items, i, i+1)
	return s.save(ctx)
}

// Clear empties the cart and deletes the persisted record.
func (s *Store) Clear(ctx context.Context) error {
	s.items = nil
	if err := s.persister.Delete(ctx, s.sessionID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Subtotal returns the sum of all line totals. AddItem and UpdateQuantity
// keep it within range, so an overflow here means the persisted cart was
// corrupted and panics with *model.IntegrityError.
func (s *Store) Subtotal() model.Money {
	total, ok := model.SumLines(s.items)
	if !ok {
		panic(&model.IntegrityError{
			Invariant: "cart subtotal overflows",
			Values:    map[string]int64{"lines": int64(len(s.items))},
		})
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (s *Store) ItemCount() int {
	var count int
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []model.LineItem {
	return slices.Clone(s.items)
}

// View returns the storefront read model of the cart.
func (s *Store) View() model.CartView {
	items := s.Items()
	if items == nil {
		items = []model.LineItem{}
	}
	return model.CartView{
		SessionID: s.sessionID,
		Items:     items,
		Subtotal:  s.Subtotal(),
		ItemCount: s.ItemCount(),
	}
}

func (s *Store) index(productID, variantID string) int {
	return slices.IndexFunc(s.items, func(li model.LineItem) bool {
		return li.Matches(productID, variantID)
	})
}

// commit replaces the items with next and persists them. It refuses a cart
// whose subtotal would overflow and leaves the current items untouched.
func (s *Store) commit(ctx context.Context, next []model.LineItem) error {
	if _, ok := model.SumLines(next); !ok {
		return model.ErrInvalidQuantity.WithMessage("cart total is too large")
	}
	s.items = next
	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	if err := s.persister.Save(ctx, s.sessionID, s.items); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func itemName(p model.Product, variantID string) string {
	for _, v := range p.Variants {
		if v.ID == variantID && v.Name != "" {
			return p.Name + " (" + v.Name + ")"
		}
	}
	return p.Name
}
