package catalog

import (
	"sort"
	"strings"

	"github.com/chandraa-ads/sthree-storefront/internal/domain"
	"github.com/sahilm/fuzzy"
)

// Filter narrows a fetched product list locally. Zero values mean "no
// constraint". Everything here is a single synchronous pass over an
// in-memory slice.
type Filter struct {
	Category    string
	Color       string
	Size        string
	MinPrice    float64
	MaxPrice    float64
	InStockOnly bool
}

func Apply(products []domain.Product, f Filter) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.Color != "" && !hasColor(p, f.Color) {
			continue
		}
		if f.Size != "" && !hasSize(p, f.Size) {
			continue
		}
		price := p.Price
		if f.MinPrice > 0 && price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && price > f.MaxPrice {
			continue
		}
		if f.InStockOnly && !anyStock(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

type Order string

const (
	OrderPriceAsc  Order = "price_asc"
	OrderPriceDesc Order = "price_desc"
	OrderNewest    Order = "newest"
	OrderName      Order = "name"
)

// Sort orders products in place. Unknown orders leave the slice untouched.
func Sort(products []domain.Product, order Order) {
	switch order {
	case OrderPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case OrderPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case OrderNewest:
		sort.SliceStable(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	case OrderName:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	}
}

type productSource []domain.Product

func (s productSource) String(i int) string { return s[i].Name + " " + s[i].Description }
func (s productSource) Len() int            { return len(s) }

// Search fuzzy-matches the query against product names and descriptions and
// returns matches best-first. An empty query returns the input unchanged.
func Search(products []domain.Product, query string) []domain.Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return products
	}

	matches := fuzzy.FindFrom(query, productSource(products))
	out := make([]domain.Product, 0, len(matches))
	for _, m := range matches {
		out = append(out, products[m.Index])
	}
	return out
}

func hasColor(p domain.Product, color string) bool {
	for _, v := range p.Variants {
		if strings.EqualFold(v.Color, color) {
			return true
		}
	}
	return false
}

func hasSize(p domain.Product, size string) bool {
	for _, v := range p.Variants {
		for _, s := range v.Sizes {
			if strings.EqualFold(s, size) {
				return true
			}
		}
	}
	return false
}

func anyStock(p domain.Product) bool {
	if len(p.Variants) == 0 {
		return p.Stock > 0
	}
	for _, v := range p.Variants {
		if v.Stock > 0 {
			return true
		}
	}
	return false
}
