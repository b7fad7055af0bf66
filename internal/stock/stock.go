package stock

import "github.com/chandraa-ads/sthree-storefront/internal/domain"

// Available returns how many units of a product (or one of its variants) can
// still be added to the cart: the stock the remote store reports minus what
// the cart already holds for that exact product+variant, clamped at zero.
// Lines referencing a different variant of the same product do not count.
func Available(p *domain.Product, v *domain.ProductVariant, lines []domain.CartLine) int {
	total := p.Stock
	variantID := ""
	if v != nil {
		total = v.Stock
		variantID = v.ID
	}

	inCart := 0
	for _, l := range lines {
		if l.ProductID == p.ID && l.VariantID == variantID {
			inCart += l.Quantity
		}
	}

	if avail := total - inCart; avail > 0 {
		return avail
	}
	return 0
}

// Purchasable reports whether at least one more unit can be added. This is
// what disables the add and quick-add controls.
func Purchasable(p *domain.Product, v *domain.ProductVariant, lines []domain.CartLine) bool {
	return Available(p, v, lines) > 0
}
