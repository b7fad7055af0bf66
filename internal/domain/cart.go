package domain

import "time"

// CartLine is one row in a user's cart. Display fields are denormalized from
// the product at add time so the cart renders without another catalog fetch.
type CartLine struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	VariantID   string    `json:"variant_id,omitempty"` // empty means base product, no variant
	Name        string    `json:"name"`
	VariantName string    `json:"variant_name,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	UnitPrice   float64   `json:"unit_price"`
	Size        string    `json:"size,omitempty"`
	Color       string    `json:"color,omitempty"`
	Quantity    int       `json:"quantity"`
	AddedAt     time.Time `json:"added_at"`
}

// Key is the combination the remote store merges on: two adds with the same
// key increment quantity instead of creating a second line.
func (l CartLine) Key() string {
	return l.ProductID + "|" + l.VariantID + "|" + l.Size + "|" + l.Color
}

// Subtotal sums unit price times quantity over all lines.
func Subtotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// Units sums quantities over all lines, for the cart badge.
func Units(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
