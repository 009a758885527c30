package catalog

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var priceRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseBusinessData reads the business data file and extracts products.
//
// Expected block format, blocks separated by a blank line:
//
//	Product: Puma RS-X
//	Price: 310 TND
//	Availability: In stock
//	Delivery: 72h
func ParseBusinessData(path string) ([]Product, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to read business data %s: %w", path, err)
	}

	products := ParseBusinessText(string(content))
	log.Info().Int("products", len(products)).Str("path", path).Msg("Business data loaded")
	return products, nil
}

// ParseBusinessText parses the business data format from an in-memory string.
// Blocks without a product name are skipped, never an error.
func ParseBusinessText(content string) []Product {
	var products []Product

	for _, block := range strings.Split(content, "\n\n") {
		if !strings.Contains(block, "Product:") {
			continue
		}

		var p Product
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "Product:"):
				p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Product:"))
			case strings.HasPrefix(line, "Price:"):
				if m := priceRe.FindString(line); m != "" {
					if d, err := decimal.NewFromString(m); err == nil {
						p.Price = d
					}
				}
			case strings.HasPrefix(line, "Availability:"):
				p.StockStatus = strings.TrimSpace(strings.TrimPrefix(line, "Availability:"))
				p.InStock = strings.Contains(strings.ToLower(p.StockStatus), "in stock")
			case strings.HasPrefix(line, "Delivery:"):
				p.DeliveryTime = strings.TrimSpace(strings.TrimPrefix(line, "Delivery:"))
			}
		}

		if p.Name != "" {
			products = append(products, p)
		}
	}

	return products
}
