// Package intent assigns a coarse category to a user message using keyword
// scoring. It only routes messages and is never trusted as ground truth.
package intent

import "strings"

// Categories returned by Classify.
const (
	Pricing     = "pricing"
	Services    = "services"
	Orders      = "orders"
	Catalog     = "catalog"
	ProductInfo = "product_info"
	Support     = "support"
	Other       = "other"
)

var keywords = map[string][]string{
	Pricing: {
		"price", "cost", "how much", "tariff", "amount", "expensive",
		"cheap", "tnd", "€", "$",
	},
	Services: {
		"delivery", "return", "shipping", "ship", "send", "receive",
		"arrive", "when", "deadline", "fee",
	},
	Orders: {
		"order", "buy", "purchase", "checkout", "cart", "pay", "payment",
		"reserve", "finalize", "want", "take it",
	},
	Catalog: {
		"list", "products", "catalog", "available", "stock", "collection",
		"what products", "show", "see", "display", "all",
	},
	ProductInfo: {
		"feature", "specification", "detail", "description", "specs",
		"size", "color", "material", "info", "information", "describe",
		"what is",
	},
	Support: {
		"help", "problem", "issue", "contact", "support", "customer service",
		"complaint", "agent", "human", "speak",
	},
}

// Classifier routes a message to a category. Satisfied by KeywordClassifier;
// callers may plug in a real model behind the same signature.
type Classifier interface {
	Classify(text string) string
}

// KeywordClassifier scores each category by counting keyword hits and picks
// the highest. Ties resolve to the first category in scan order, which is
// acceptable for routing.
type KeywordClassifier struct{}

// NewKeywordClassifier creates the default classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify returns one of the category constants. Messages with no keyword
// hit fall back to ProductInfo, matching how customers mostly ask about
// products; empty input is Other.
func (c *KeywordClassifier) Classify(text string) string {
	query := strings.ToLower(strings.TrimSpace(text))
	if query == "" {
		return Other
	}

	bestCategory := ""
	bestScore := 0
	for _, category := range []string{Pricing, Services, Orders, Catalog, ProductInfo, Support} {
		score := 0
		for _, kw := range keywords[category] {
			if strings.Contains(query, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestCategory = category
		}
	}

	if bestCategory == "" {
		return ProductInfo
	}
	return bestCategory
}

// Recognized reports whether the category is a real one rather than the
// generic fallback.
func Recognized(category string) bool {
	return category != "" && category != Other
}
