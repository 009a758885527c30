// Package workflow drives the guided checkout dialogue: it turns a stream
// of free-text messages into a correctly-sequenced, resumable transaction.
package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/commerce-assistant/internal/cart"
	"github.com/vasiliy-maslov/commerce-assistant/internal/catalog"
	"github.com/vasiliy-maslov/commerce-assistant/internal/history"
	"github.com/vasiliy-maslov/commerce-assistant/internal/intent"
	"github.com/vasiliy-maslov/commerce-assistant/internal/order"
	"github.com/vasiliy-maslov/commerce-assistant/internal/session"
)

var (
	cancelWords   = []string{"cancel", "stop"}
	cancelPhrases = []string{"no thanks", "never mind"}
)

var finalizeKeywords = []string{
	"finalize", "checkout", "check out", "place order", "place my order",
	"buy", "purchase", "complete order",
}

var affirmations = []string{"yes", "ok", "okay", "sure", "yep", "yeah", "yes please"}

var confirmWords = []string{"yes", "confirm", "ok", "okay", "sure", "agreed"}

var declineWords = []string{"no", "cancel", "nope"}

// Result is the outcome of one workflow turn. Handled is false when the
// message is not checkout traffic and should fall through to the general
// question-answering path.
type Result struct {
	Reply   string
	Next    State
	Handled bool
}

// Workflow is the conversation state machine for one deployment. It is
// stateless itself; all per-session state lives in the session store and
// the cart/order aggregates.
type Workflow struct {
	carts    cart.Service
	orders   order.Service
	products catalog.Lookup
	messages history.Store
}

// New creates the workflow.
func New(carts cart.Service, orders order.Service, products catalog.Lookup, messages history.Store) *Workflow {
	return &Workflow{carts: carts, orders: orders, products: products, messages: messages}
}

// HandleMessage runs one turn against the session's current state. It
// mutates sess.TempData; the caller persists the session with the returned
// next state and must hold the session lock for the whole turn.
func (w *Workflow) HandleMessage(ctx context.Context, sess *session.Session, message, intentCategory string) (Result, error) {
	state := ParseState(sess.State)
	lower := strings.ToLower(strings.TrimSpace(message))

	log.Debug().Str("session_id", sess.SessionID).Str("state", state.String()).Str("intent", intentCategory).Msg("workflow: handling message")

	// Short affirmation right after the assistant proposed a product:
	// interpret as "add that product" and jump straight to name collection.
	if !state.collecting() && isAffirmation(lower) {
		if res, ok, err := w.affirmationLookahead(ctx, sess); err != nil {
			return Result{}, err
		} else if ok {
			return res, nil
		}
	}

	// Cancellation wins from any non-idle state. Single words match on word
	// boundaries so a customer named Christopher can get through name
	// collection.
	if state != StateIdle && (containsWord(lower, cancelWords) || containsAny(lower, cancelPhrases)) {
		if err := w.carts.Clear(ctx, sess.SessionID); err != nil {
			return Result{}, err
		}
		clearTempData(sess)
		return Result{Reply: promptCancelled, Next: StateIdle, Handled: true}, nil
	}

	if state.collecting() {
		return w.collectStep(ctx, sess, state, message, lower)
	}

	// Idle, Browsing and Confirmed all accept new checkout traffic.
	return w.openStep(ctx, sess, message, lower, intentCategory)
}

// affirmationLookahead reads the last assistant utterance and adds the
// product it referenced, if any.
func (w *Workflow) affirmationLookahead(ctx context.Context, sess *session.Session) (Result, bool, error) {
	recent, err := w.messages.LastN(ctx, sess.SessionID, 3)
	if err != nil {
		return Result{}, false, fmt.Errorf("workflow: failed to read history: %w", err)
	}

	lastReply := history.LastAssistantMessage(recent)
	if lastReply == "" {
		return Result{}, false, nil
	}
	product, ok := w.products.FindInText(lastReply)
	if !ok {
		return Result{}, false, nil
	}

	if _, err := w.carts.AddItem(ctx, sess.SessionID, *product, 1); err != nil {
		return Result{}, false, err
	}

	reply := fmt.Sprintf("%s added to your cart (%s TND).\n\n%s", product.Name, product.Price.String(), promptName)
	return Result{Reply: reply, Next: StateWaitingName, Handled: true}, true, nil
}

// collectStep handles the field-collection chain and the final
// confirmation. Validation failures re-prompt in the same state and are
// never errors.
func (w *Workflow) collectStep(ctx context.Context, sess *session.Session, state State, message, lower string) (Result, error) {
	switch state {
	case StateWaitingName:
		sess.TempData[session.FieldName] = strings.TrimSpace(message)
		return Result{Reply: promptPhone, Next: StateWaitingPhone, Handled: true}, nil

	case StateWaitingPhone:
		phone := strings.ReplaceAll(strings.TrimSpace(message), " ", "")
		if len(phone) < 8 || !allDigits(phone) {
			return Result{Reply: promptPhoneRetry, Next: StateWaitingPhone, Handled: true}, nil
		}
		sess.TempData[session.FieldPhone] = phone
		return Result{Reply: promptAddress, Next: StateWaitingAddress, Handled: true}, nil

	case StateWaitingAddress:
		sess.TempData[session.FieldAddress] = strings.TrimSpace(message)
		return Result{Reply: promptPayment, Next: StateWaitingPayment, Handled: true}, nil

	case StateWaitingPayment:
		switch {
		case strings.Contains(message, "1") || strings.Contains(lower, "cash") || strings.Contains(lower, "delivery"):
			sess.TempData[session.FieldPaymentMethod] = string(order.PaymentCashOnDelivery)
		case strings.Contains(message, "2") || strings.Contains(lower, "card"):
			sess.TempData[session.FieldPaymentMethod] = string(order.PaymentCard)
		default:
			return Result{Reply: promptPaymentRetry, Next: StateWaitingPayment, Handled: true}, nil
		}
		sum, err := w.carts.Summarize(ctx, sess.SessionID)
		if err != nil {
			return Result{}, err
		}
		return Result{Reply: renderConfirmation(sum, sess.TempData), Next: StateConfirm, Handled: true}, nil

	case StateConfirm:
		if containsWord(lower, confirmWords) {
			return w.finalize(ctx, sess)
		}
		if containsWord(lower, declineWords) {
			if err := w.carts.MarkAbandoned(ctx, sess.SessionID); err != nil {
				return Result{}, err
			}
			clearTempData(sess)
			return Result{Reply: promptAbandoned, Next: StateIdle, Handled: true}, nil
		}
		return Result{Reply: promptConfirmRetry, Next: StateConfirm, Handled: true}, nil

	case StateIdle, StateBrowsing, StateConfirmed:
		// Unreachable; collecting() excludes these.
	}
	return Result{Reply: promptFallback, Next: StateIdle, Handled: true}, nil
}

// openStep handles messages arriving outside an active collection flow.
func (w *Workflow) openStep(ctx context.Context, sess *session.Session, message, lower, intentCategory string) (Result, error) {
	if containsAny(lower, finalizeKeywords) {
		// "buy the X" names a product: that is an add-to-cart message, not a
		// checkout of whatever the cart already holds.
		if _, ok := w.products.FindInText(message); ok {
			return w.addToCart(ctx, sess, message)
		}
		return w.startCheckout(ctx, sess)
	}

	if strings.Contains(lower, "cart") || strings.Contains(lower, "basket") {
		sum, err := w.carts.Summarize(ctx, sess.SessionID)
		if err != nil {
			return Result{}, err
		}
		return Result{Reply: renderCart(sum), Next: StateBrowsing, Handled: true}, nil
	}

	switch intentCategory {
	case intent.Catalog:
		return Result{Reply: renderProductList(w.products.Available()), Next: StateBrowsing, Handled: true}, nil

	case intent.Orders:
		return w.addToCart(ctx, sess, message)

	case intent.ProductInfo, intent.Pricing:
		if product, ok := w.products.FindInText(message); ok {
			reply := renderProductInfo(product) + "\n\nWould you like to add it to your cart?"
			return Result{Reply: reply, Next: StateIdle, Handled: true}, nil
		}
	}

	// Not checkout traffic: let the question-answering path take it.
	return Result{Next: ParseState(sess.State), Handled: false}, nil
}

// startCheckout reacts to an explicit finalize keyword. An empty cart always
// gets the notice and stays idle; checkout never adds items.
func (w *Workflow) startCheckout(ctx context.Context, sess *session.Session) (Result, error) {
	empty, err := w.carts.IsEmpty(ctx, sess.SessionID)
	if err != nil {
		return Result{}, err
	}

	if empty {
		return Result{Reply: promptEmptyCart, Next: StateIdle, Handled: true}, nil
	}

	return Result{Reply: "Great! " + promptName, Next: StateWaitingName, Handled: true}, nil
}

// addToCart reacts to an order-intent message by adding the mentioned
// product.
func (w *Workflow) addToCart(ctx context.Context, sess *session.Session, message string) (Result, error) {
	product, ok := w.products.FindInText(message)
	if !ok {
		return Result{Reply: promptFallback, Next: StateIdle, Handled: true}, nil
	}

	if !product.InStock {
		reply := fmt.Sprintf("%s is currently out of stock. Can I interest you in something else?", product.Name)
		return Result{Reply: reply, Next: StateIdle, Handled: true}, nil
	}

	if _, err := w.carts.AddItem(ctx, sess.SessionID, *product, 1); err != nil {
		return Result{}, err
	}
	reply := fmt.Sprintf("%s added to your cart (%s TND). Reply *checkout* when you are ready to finalize, or keep browsing.", product.Name, product.Price.String())
	return Result{Reply: reply, Next: StateBrowsing, Handled: true}, nil
}

// finalize snapshots the cart and collected fields into an order.
func (w *Workflow) finalize(ctx context.Context, sess *session.Session) (Result, error) {
	sum, err := w.carts.Summarize(ctx, sess.SessionID)
	if err != nil {
		return Result{}, err
	}

	items := make([]order.Item, 0, len(sum.Items))
	for _, li := range sum.Items {
		items = append(items, order.Item{
			ProductName:  li.ProductName,
			Price:        li.Price,
			Quantity:     li.Quantity,
			DeliveryTime: li.DeliveryTime,
		})
	}

	o, err := w.orders.Create(ctx, order.CreateInput{
		SessionID: sess.SessionID,
		Customer: order.CustomerInfo{
			Name:    sess.TempData[session.FieldName],
			Phone:   sess.TempData[session.FieldPhone],
			Address: sess.TempData[session.FieldAddress],
		},
		Items:         items,
		PaymentMethod: order.PaymentMethod(sess.TempData[session.FieldPaymentMethod]),
		Channel:       sess.Channel,
		DeliveryFee:   sum.DeliveryFee,
	})
	if err != nil {
		return Result{}, err
	}

	if err := w.carts.MarkConverted(ctx, sess.SessionID); err != nil {
		return Result{}, err
	}
	clearTempData(sess)

	log.Info().Str("session_id", sess.SessionID).Str("order_id", o.OrderID).Msg("workflow: order finalized")
	return Result{Reply: renderConfirmed(o), Next: StateConfirmed, Handled: true}, nil
}

func clearTempData(sess *session.Session) {
	sess.TempData = map[string]string{}
}

func isAffirmation(lower string) bool {
	trimmed := strings.Trim(lower, " .!")
	for _, a := range affirmations {
		if trimmed == a {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// containsWord matches whole words so that "nope" does not count as "no"
// twice or "ok" inside "broken".
func containsWord(s string, words []string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?'
	})
	for _, f := range fields {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
