package workflow

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/commerce-assistant/internal/cart"
	"github.com/vasiliy-maslov/commerce-assistant/internal/catalog"
	"github.com/vasiliy-maslov/commerce-assistant/internal/order"
	"github.com/vasiliy-maslov/commerce-assistant/internal/session"
)

const divider = "----------------------------------------"

// Fixed prompts reused across transitions.
const (
	promptName         = "To finalize your order, what is your full name?"
	promptPhone        = "Thank you! What is your phone number?"
	promptPhoneRetry   = "The phone number must contain at least 8 digits. Please try again:"
	promptAddress      = "Perfect! What is your full delivery address?"
	promptPaymentRetry = "Invalid choice. Reply 1 for cash on delivery or 2 for card payment:"
	promptConfirmRetry = "Please reply Yes to confirm or No to cancel."
	promptEmptyCart    = "Your cart is empty. Add some products first!"
	promptCancelled    = "Order cancelled. How else can I help you?"
	promptAbandoned    = "Order cancelled. Can I help you with anything else?"
	promptFallback     = "I can help you place an order. Which product are you interested in?"
)

const promptPayment = "Thank you! How would you like to pay?\n\n" +
	"1. Cash on delivery\n" +
	"2. Card payment\n\n" +
	"Reply 1 or 2"

func renderProductInfo(p *catalog.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Name)
	fmt.Fprintf(&b, "Price: %s TND\n", p.Price.String())
	if p.InStock {
		b.WriteString("Availability: In stock\n")
	} else {
		b.WriteString("Availability: Out of stock\n")
	}
	if p.DeliveryTime != "" {
		fmt.Fprintf(&b, "Delivery: %s\n", p.DeliveryTime)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderProductList(products []catalog.Product) string {
	if len(products) == 0 {
		return "No products are available right now."
	}
	var b strings.Builder
	b.WriteString("Available products:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: %s TND (delivery %s)\n", p.Name, p.Price.String(), p.DeliveryTime)
	}
	b.WriteString("\nWhich one are you interested in?")
	return b.String()
}

func renderCart(sum *cart.Summary) string {
	if len(sum.Items) == 0 {
		return "Your cart is empty."
	}

	var b strings.Builder
	b.WriteString("YOUR CART\n\n")
	for _, item := range sum.Items {
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		fmt.Fprintf(&b, "- %s\n  %s TND x %d = %s TND\n", item.ProductName, item.Price.String(), item.Quantity, lineTotal.String())
		if item.DeliveryTime != "" {
			fmt.Fprintf(&b, "  Delivery: %s\n", item.DeliveryTime)
		}
	}
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Subtotal: %s TND\n", sum.Subtotal.String())
	fmt.Fprintf(&b, "Delivery: %s TND\n", sum.DeliveryFee.String())
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "TOTAL: %s TND", sum.Total.String())
	return b.String()
}

func renderConfirmation(sum *cart.Summary, tempData map[string]string) string {
	var b strings.Builder
	b.WriteString("ORDER SUMMARY\n\n")
	fmt.Fprintf(&b, "Name: %s\n", valueOr(tempData[session.FieldName], "Not provided"))
	fmt.Fprintf(&b, "Phone: %s\n", valueOr(tempData[session.FieldPhone], "Not provided"))
	fmt.Fprintf(&b, "Address: %s\n\n", valueOr(tempData[session.FieldAddress], "Not provided"))
	b.WriteString("Items:\n")
	for _, item := range sum.Items {
		fmt.Fprintf(&b, "- %s - %s TND x %d\n", item.ProductName, item.Price.String(), item.Quantity)
	}
	b.WriteString("\n" + divider + "\n")
	fmt.Fprintf(&b, "Subtotal: %s TND\n", sum.Subtotal.String())
	fmt.Fprintf(&b, "Delivery: %s TND\n", sum.DeliveryFee.String())
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "TOTAL: %s TND\n\n", sum.Total.String())
	fmt.Fprintf(&b, "Payment: %s\n\n", order.PaymentLabel(order.PaymentMethod(tempData[session.FieldPaymentMethod])))
	b.WriteString("Do you confirm this order? (Yes/No)")
	return b.String()
}

func renderConfirmed(o *order.Order) string {
	var b strings.Builder
	b.WriteString("ORDER CONFIRMED!\n\n")
	fmt.Fprintf(&b, "Order number: %s\n\n", o.OrderID)
	b.WriteString("Our team will contact you within 24 hours to confirm availability and arrange delivery.\n\n")
	b.WriteString("Thank you for your trust!")
	return b.String()
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
