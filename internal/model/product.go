package model

import "time"

// Product represents a product in the catalogue.
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     Money     `json:"price" db:"price"`
	Category  string    `json:"category" db:"category"`
	Variants  []Variant `json:"variants,omitempty" db:"variants"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Variant is a purchasable option of a product (size, colour). A nil Price
// means the variant sells at the product price.
type Variant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price *Money `json:"price,omitempty"`
}

// PriceFor returns the current unit price for the given variant. An empty
// variantID selects the base product.
func (p *Product) PriceFor(variantID string) (Money, error) {
	if variantID == "" {
		return p.Price, nil
	}
	for _, v := range p.Variants {
		if v.ID == variantID {
			if v.Price != nil {
				return *v.Price, nil
			}
			return p.Price, nil
		}
	}
	return 0, ErrVariantNotFound.WithDetails(map[string]any{
		"productId": p.ID,
		"variantId": variantID,
	})
}
