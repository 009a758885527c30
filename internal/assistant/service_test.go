package assistant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/commerce-assistant/internal/assistant"
	"github.com/vasiliy-maslov/commerce-assistant/internal/cart"
	"github.com/vasiliy-maslov/commerce-assistant/internal/catalog"
	"github.com/vasiliy-maslov/commerce-assistant/internal/escalation"
	"github.com/vasiliy-maslov/commerce-assistant/internal/history"
	"github.com/vasiliy-maslov/commerce-assistant/internal/intent"
	"github.com/vasiliy-maslov/commerce-assistant/internal/order"
	"github.com/vasiliy-maslov/commerce-assistant/internal/session"
	"github.com/vasiliy-maslov/commerce-assistant/internal/workflow"
)

type classifierMock struct {
	classifyFn func(text string) string
}

func (m *classifierMock) Classify(text string) string { return m.classifyFn(text) }

type retrieverMock struct {
	retrieveFn func(ctx context.Context, query string) ([]string, error)
}

func (m *retrieverMock) Retrieve(ctx context.Context, query string) ([]string, error) {
	return m.retrieveFn(ctx, query)
}

type generatorMock struct {
	generateFn func(ctx context.Context, query string, contextChunks []string, recent []history.Message) (string, error)
}

func (m *generatorMock) Generate(ctx context.Context, query string, contextChunks []string, recent []history.Message) (string, error) {
	return m.generateFn(ctx, query, contextChunks, recent)
}

type sessionStoreMock struct {
	loadFn func(ctx context.Context, sessionID string) (*session.Session, error)
	saveFn func(ctx context.Context, s *session.Session) error
}

func (m *sessionStoreMock) Load(ctx context.Context, sessionID string) (*session.Session, error) {
	return m.loadFn(ctx, sessionID)
}

func (m *sessionStoreMock) Save(ctx context.Context, s *session.Session) error {
	return m.saveFn(ctx, s)
}

func testCatalog() catalog.Lookup {
	return catalog.New([]catalog.Product{
		{Name: "Puma RS-X", Price: decimal.NewFromInt(310), InStock: true, DeliveryTime: "2-3 days"},
		{Name: "Nike Air Max", Price: decimal.NewFromInt(450), InStock: true, DeliveryTime: "3-5 days"},
	})
}

type deps struct {
	sessions session.Store
	messages history.Store
	latch    escalation.Latch
	orders   order.Service
	carts    cart.Service
}

func defaultDeps() *deps {
	return &deps{
		sessions: session.NewMemoryStore(),
		messages: history.NewMemoryStore(),
		latch:    escalation.NewMemoryLatch(),
		orders:   order.NewService(order.NewMemoryRepository()),
		carts:    cart.NewService(cart.NewMemoryRepository()),
	}
}

func newService(d *deps, classifier intent.Classifier, retriever assistant.Retriever, generator assistant.Generator) *assistant.Service {
	products := testCatalog()
	if classifier == nil {
		classifier = intent.NewKeywordClassifier()
	}
	if retriever == nil {
		retriever = assistant.NewCatalogRetriever(products)
	}
	if generator == nil {
		generator = assistant.NewTemplateGenerator(products)
	}
	checkout := workflow.New(d.carts, d.orders, products, d.messages)
	return assistant.New(d.sessions, d.messages, classifier, checkout, d.latch, retriever, generator)
}

func TestService_CheckoutEndToEnd(t *testing.T) {
	d := defaultDeps()
	svc := newService(d, nil, nil, nil)
	ctx := context.Background()

	steps := []struct {
		message   string
		wantState string
	}{
		{"I want the Puma RS-X", "browsing"},
		{"checkout", "collecting_name"},
		{"Ahmed Ben Ali", "collecting_phone"},
		{"55123456", "collecting_address"},
		{"Avenue Habib Bourguiba", "collecting_payment"},
		{"1", "confirming_order"},
		{"yes", "order_placed"},
	}

	for _, step := range steps {
		turn, err := svc.HandleTurn(ctx, "e2e", "web", step.message)
		require.NoError(t, err, "message %q", step.message)
		assert.Equal(t, step.wantState, turn.State, "message %q", step.message)
		assert.False(t, turn.Escalated, "message %q", step.message)
		assert.InDelta(t, 1.0, turn.Confidence, 1e-9, "checkout turns are deterministic")
	}

	orders, err := d.orders.ListBySession(ctx, "e2e")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.StatusPending, orders[0].Status)
	assert.True(t, orders[0].Total.Equal(decimal.NewFromInt(318)), "310 + 8 delivery, got %s", orders[0].Total)

	empty, err := d.carts.IsEmpty(ctx, "e2e")
	require.NoError(t, err)
	assert.True(t, empty, "cart converted at finalization")

	// Both sides of every exchange are logged.
	msgs, err := d.messages.LastN(ctx, "e2e", 100)
	require.NoError(t, err)
	assert.Len(t, msgs, len(steps)*2)
}

func TestService_HumanRequestLatchesSession(t *testing.T) {
	d := defaultDeps()
	svc := newService(d, nil, nil, nil)
	ctx := context.Background()

	turn, err := svc.HandleTurn(ctx, "s-human", "web", "I need to talk to a real person")
	require.NoError(t, err)
	assert.True(t, turn.Escalated)
	assert.Contains(t, turn.Reply, "member of our team")
	assert.Equal(t, "idle", turn.State)

	active, err := d.latch.IsActive(ctx, "s-human")
	require.NoError(t, err)
	assert.True(t, active)

	// Latch is monotonic: later innocuous messages only get the hand-off
	// acknowledgement, the state machine never runs.
	turn, err = svc.HandleTurn(ctx, "s-human", "web", "I want the Puma RS-X")
	require.NoError(t, err)
	assert.True(t, turn.Escalated)
	assert.Contains(t, turn.Reply, "hold on")

	empty, err := d.carts.IsEmpty(ctx, "s-human")
	require.NoError(t, err)
	assert.True(t, empty, "no cart mutation while latched")
}

func TestService_FrustrationEscalates(t *testing.T) {
	d := defaultDeps()
	svc := newService(d, nil, nil, nil)

	turn, err := svc.HandleTurn(context.Background(), "s-angry", "web", "this is useless, you don't understand")
	require.NoError(t, err)
	assert.True(t, turn.Escalated)

	active, err := d.latch.IsActive(context.Background(), "s-angry")
	require.NoError(t, err)
	assert.True(t, active)
}

func TestService_HedgedAnswerEscalates(t *testing.T) {
	d := defaultDeps()
	classifier := &classifierMock{classifyFn: func(string) string { return intent.Other }}
	retriever := &retrieverMock{retrieveFn: func(context.Context, string) ([]string, error) { return nil, nil }}
	generator := &generatorMock{generateFn: func(context.Context, string, []string, []history.Message) (string, error) {
		return "I'm not sure about that.", nil
	}}
	svc := newService(d, classifier, retriever, generator)

	turn, err := svc.HandleTurn(context.Background(), "s-hedge", "web", "do you deliver to the moon?")
	require.NoError(t, err)
	assert.True(t, turn.Escalated)
	assert.InDelta(t, 0.0, turn.Confidence, 1e-9)
	assert.Contains(t, turn.Reply, "connecting you")
	assert.Equal(t, "idle", turn.State, "a fresh session reports a real state, never the zero value")

	active, err := d.latch.IsActive(context.Background(), "s-hedge")
	require.NoError(t, err)
	assert.True(t, active)
}

func TestService_ConfidentAnswerDoesNotEscalate(t *testing.T) {
	d := defaultDeps()
	classifier := &classifierMock{classifyFn: func(string) string { return intent.Pricing }}
	retriever := &retrieverMock{retrieveFn: func(context.Context, string) ([]string, error) {
		return []string{"Puma RS-X costs 310 TND."}, nil
	}}
	generator := &generatorMock{generateFn: func(context.Context, string, []string, []history.Message) (string, error) {
		return "The Puma RS-X costs 310 TND and ships within two days.", nil
	}}
	svc := newService(d, classifier, retriever, generator)

	turn, err := svc.HandleTurn(context.Background(), "s-good", "web", "how much is the rs-x?")
	require.NoError(t, err)
	assert.False(t, turn.Escalated)
	assert.InDelta(t, 0.80, turn.Confidence, 1e-9, "0.25 intent + 0.35 context + 0.20 length")
	assert.Equal(t, "idle", turn.State)

	active, err := d.latch.IsActive(context.Background(), "s-good")
	require.NoError(t, err)
	assert.False(t, active)
}

type failingCartRepo struct{}

func (failingCartRepo) GetActiveBySession(context.Context, string) (*cart.Cart, error) {
	return nil, errors.New("connection refused")
}
func (failingCartRepo) Create(context.Context, *cart.Cart) error { return errors.New("connection refused") }
func (failingCartRepo) SaveItems(context.Context, *cart.Cart) error {
	return errors.New("connection refused")
}
func (failingCartRepo) UpdateStatus(context.Context, uuid.UUID, cart.CartStatus) error {
	return errors.New("connection refused")
}

func TestService_CheckoutFaultFallsThroughToAnswering(t *testing.T) {
	d := defaultDeps()
	d.carts = cart.NewService(failingCartRepo{})
	svc := newService(d, nil, nil, nil)

	// The cart store is down, so the add-to-cart transition fails; the turn
	// still produces a useful product answer instead of an error.
	turn, err := svc.HandleTurn(context.Background(), "s-degraded", "web", "I want the Puma RS-X")
	require.NoError(t, err)
	assert.False(t, turn.Escalated)
	assert.Contains(t, turn.Reply, "310 TND")
	assert.InDelta(t, 0.80, turn.Confidence, 1e-9)
}

func TestService_SessionSaveFaultPropagates(t *testing.T) {
	d := defaultDeps()
	sessions := &sessionStoreMock{
		loadFn: func(_ context.Context, sessionID string) (*session.Session, error) {
			return &session.Session{SessionID: sessionID, TempData: map[string]string{}}, nil
		},
		saveFn: func(context.Context, *session.Session) error {
			return errors.New("connection refused")
		},
	}
	d.sessions = sessions
	svc := newService(d, nil, nil, nil)

	_, err := svc.HandleTurn(context.Background(), "s-down", "web", "I want the Puma RS-X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save session")
}

func TestService_ResetRestartsSession(t *testing.T) {
	d := defaultDeps()
	svc := newService(d, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.HandleTurn(ctx, "s-reset", "web", "get me a human agent")
	require.NoError(t, err)

	require.NoError(t, d.latch.Reset(ctx, "s-reset"))

	turn, err := svc.HandleTurn(ctx, "s-reset", "web", "I want the Puma RS-X")
	require.NoError(t, err)
	assert.False(t, turn.Escalated, "after an administrative reset the session is automated again")
	assert.Equal(t, "browsing", turn.State)
}
