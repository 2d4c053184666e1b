package products

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FinalPrice applies the discount percentage and rounds to two decimals.
func FinalPrice(price, discountPercentage float64) float64 {
	p := decimal.NewFromFloat(price)
	discount := p.Mul(decimal.NewFromFloat(discountPercentage)).Div(hundred)
	f, _ := p.Sub(discount).Round(2).Float64()
	return f
}

// Transform maps upstream records to client products, preserving order.
func Transform(in []UpstreamProduct) []Product {
	out := make([]Product, 0, len(in))
	for _, p := range in {
		out = append(out, Product{
			Title:       p.Title,
			Description: p.Description,
			FinalPrice:  FinalPrice(p.Price, p.DiscountPercentage),
		})
	}
	return out
}
