package model

import "math"

// MaxLineQuantity bounds the quantity of a single line. It matches the
// INTEGER order_items.quantity column.
const MaxLineQuantity = math.MaxInt32

// LineItem is one cart or order entry. UnitPrice is captured when the item is
// first added and never refreshed.
type LineItem struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Name      string `json:"name"`
	UnitPrice Money  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// Total returns UnitPrice × Quantity. ok is false on overflow.
func (li LineItem) Total() (Money, bool) {
	return li.UnitPrice.Times(li.Quantity)
}

// SumLines adds up the line totals of items. ok is false if any line or the
// running sum overflows.
func SumLines(items []LineItem) (Money, bool) {
	var sum Money
	for _, item := range items {
		line, ok := item.Total()
		if !ok {
			return 0, false
		}
		if sum, ok = sum.Plus(line); !ok {
			return 0, false
		}
	}
	return sum, true
}

// Matches reports whether the item is the entry for (productID, variantID).
func (li LineItem) Matches(productID, variantID string) bool {
	return li.ProductID == productID && li.VariantID == variantID
}

// CartView is the read model returned to the storefront.
type CartView struct {
	SessionID string     `json:"sessionId"`
	Items     []LineItem `json:"items"`
	Subtotal  Money      `json:"subtotal"`
	ItemCount int        `json:"itemCount"`
}

// AddItemRequest represents the payload for adding an item to a cart.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest represents the payload for changing a line quantity.
type UpdateItemRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}
