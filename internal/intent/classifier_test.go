package intent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/commerce-assistant/internal/intent"
)

func TestKeywordClassifier_Classify(t *testing.T) {
	c := intent.NewKeywordClassifier()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "pricing", text: "how much does the Puma RS-X cost?", want: intent.Pricing},
		{name: "services", text: "when will my delivery arrive?", want: intent.Services},
		{name: "orders", text: "I want to buy it, checkout please", want: intent.Orders},
		{name: "catalog", text: "show me all available products", want: intent.Catalog},
		{name: "support", text: "I have a problem, I need a human agent", want: intent.Support},
		{name: "fallback_product_info", text: "puma rs-x", want: intent.ProductInfo},
		{name: "empty", text: "   ", want: intent.Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestRecognized(t *testing.T) {
	assert.True(t, intent.Recognized(intent.Pricing))
	assert.False(t, intent.Recognized(intent.Other))
	assert.False(t, intent.Recognized(""))
}
