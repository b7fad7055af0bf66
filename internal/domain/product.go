package domain

import "time"

// Product and ProductVariant are owned by the remote store and treated as
// read-only inputs here. Which variant is "current" is UI state, not persisted.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Price       float64          `json:"price"`
	Stock       int              `json:"stock"`
	ImageURL    string           `json:"image_url"`
	Images      []string         `json:"images,omitempty"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

type ProductVariant struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Price  float64  `json:"price"` // 0 means no override, base price applies
	Stock  int      `json:"stock"`
	Color  string   `json:"color,omitempty"`
	Sizes  []string `json:"sizes,omitempty"`
	Images []string `json:"images,omitempty"`
}

// Variant returns the variant with the given id, or nil when id is empty or
// no variant matches.
func (p *Product) Variant(id string) *ProductVariant {
	if id == "" {
		return nil
	}
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// UnitPrice resolves the price for a selection: the variant override when one
// is set, the base price otherwise.
func (p *Product) UnitPrice(v *ProductVariant) float64 {
	if v != nil && v.Price > 0 {
		return v.Price
	}
	return p.Price
}
