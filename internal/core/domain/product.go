package domain

import "strings"

const maxProductNameLen = 255

// Product is one order line item. Construct it with NewProduct; a Product is
// immutable afterwards.
type Product struct {
	name  string
	price float64
	count int
}

// NewProduct validates and builds a product. A zero price is allowed,
// a negative one is not.
func NewProduct(name string, price float64, count int) (Product, error) {
	if strings.TrimSpace(name) == "" {
		return Product{}, newValidationError("name", "product name must not be empty")
	}
	if len([]rune(name)) > maxProductNameLen {
		return Product{}, newValidationError("name", "product name must not exceed 255 characters")
	}
	if price < 0 {
		return Product{}, newValidationError("price", "product price must not be negative")
	}
	if count < 1 {
		return Product{}, newValidationError("count", "product count must be at least 1")
	}
	return Product{name: name, price: price, count: count}, nil
}

func (p Product) Name() string   { return p.name }
func (p Product) Price() float64 { return p.price }
func (p Product) Count() int     { return p.count }

// Fields returns the product in the gateway's wire shape.
func (p Product) Fields() map[string]any {
	return map[string]any{
		"name":  p.name,
		"price": p.price,
		"count": p.count,
	}
}
