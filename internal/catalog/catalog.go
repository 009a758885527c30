package catalog

import (
	"strings"
)

// Lookup resolves product names coming from free-text messages. Implemented
// by Catalog; narrow interface so the workflow can be tested against a stub.
type Lookup interface {
	FindByName(name string) (*Product, bool)
	FindInText(text string) (*Product, bool)
	Available() []Product
	OutOfStock() []Product
}

// Catalog is an in-memory product list loaded once at startup.
type Catalog struct {
	products []Product
}

// New creates a Catalog from an already-parsed product list.
func New(products []Product) *Catalog {
	return &Catalog{products: products}
}

// FindByName returns the product matching name, trying an exact
// case-insensitive match first and then a substring match.
func (c *Catalog) FindByName(name string) (*Product, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, false
	}

	for i := range c.products {
		if strings.ToLower(c.products[i].Name) == needle {
			p := c.products[i]
			return &p, true
		}
	}

	for i := range c.products {
		if strings.Contains(strings.ToLower(c.products[i].Name), needle) {
			p := c.products[i]
			return &p, true
		}
	}

	return nil, false
}

// FindInText scans a free-text message (or a previous assistant reply) for a
// mention of any catalog product. Longer names are checked first so that
// "new balance 574" wins over a hypothetical "new" product.
func (c *Catalog) FindInText(text string) (*Product, bool) {
	haystack := strings.ToLower(text)
	if haystack == "" {
		return nil, false
	}

	best := -1
	for i := range c.products {
		name := strings.ToLower(c.products[i].Name)
		if !strings.Contains(haystack, name) {
			// Also try the brand token ("puma" for "Puma RS-X"), the way
			// customers actually type product names.
			brand := firstToken(name)
			if len(brand) < 4 || !strings.Contains(haystack, brand) {
				continue
			}
		}
		if best == -1 || len(c.products[i].Name) > len(c.products[best].Name) {
			best = i
		}
	}

	if best == -1 {
		return nil, false
	}
	p := c.products[best]
	return &p, true
}

// Available returns only in-stock products.
func (c *Catalog) Available() []Product {
	var out []Product
	for _, p := range c.products {
		if p.InStock {
			out = append(out, p)
		}
	}
	return out
}

// OutOfStock returns products currently not sellable.
func (c *Catalog) OutOfStock() []Product {
	var out []Product
	for _, p := range c.products {
		if !p.InStock {
			out = append(out, p)
		}
	}
	return out
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
