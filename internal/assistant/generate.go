package assistant

import (
	"context"
	"fmt"

	"github.com/vasiliy-maslov/commerce-assistant/internal/catalog"
	"github.com/vasiliy-maslov/commerce-assistant/internal/history"
)

// Retriever fetches context chunks relevant to a question. The chunks are
// only used for confidence scoring and as generator input; their content is
// never inspected.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]string, error)
}

// Generator produces the free-text answer for a question. It is an opaque
// black box: the pipeline inspects its output only for the fixed hedge and
// not-found phrase sets.
type Generator interface {
	Generate(ctx context.Context, query string, contextChunks []string, recent []history.Message) (string, error)
}

// CatalogRetriever serves product descriptions as context chunks. It is the
// default wiring; deployments with a real retrieval backend replace it.
type CatalogRetriever struct {
	products catalog.Lookup
}

// NewCatalogRetriever creates a retriever over the product catalog.
func NewCatalogRetriever(products catalog.Lookup) *CatalogRetriever {
	return &CatalogRetriever{products: products}
}

func (r *CatalogRetriever) Retrieve(_ context.Context, query string) ([]string, error) {
	p, ok := r.products.FindInText(query)
	if !ok {
		return nil, nil
	}
	chunk := fmt.Sprintf("%s costs %s TND.", p.Name, p.Price.String())
	if p.InStock {
		chunk += fmt.Sprintf(" It is in stock, delivery in %s.", p.DeliveryTime)
	} else {
		chunk += " It is currently out of stock."
	}
	return []string{chunk}, nil
}

// TemplateGenerator is the default answer generator: it answers product
// questions from the catalog and hedges on everything else, which lets the
// confidence scoring and escalation chain behave exactly as with a real
// model behind the same interface.
type TemplateGenerator struct {
	products catalog.Lookup
}

// NewTemplateGenerator creates the default generator.
func NewTemplateGenerator(products catalog.Lookup) *TemplateGenerator {
	return &TemplateGenerator{products: products}
}

func (g *TemplateGenerator) Generate(_ context.Context, query string, contextChunks []string, _ []history.Message) (string, error) {
	if p, ok := g.products.FindInText(query); ok {
		if p.InStock {
			return fmt.Sprintf("The %s costs %s TND and is in stock, with delivery in %s. Would you like to add it to your cart?",
				p.Name, p.Price.String(), p.DeliveryTime), nil
		}
		return fmt.Sprintf("The %s costs %s TND but it is not available right now.", p.Name, p.Price.String()), nil
	}
	if len(contextChunks) > 0 {
		return contextChunks[0], nil
	}
	return "I'm not sure I can answer that. I can help you browse our products or place an order.", nil
}
