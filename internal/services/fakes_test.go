package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/gitshopapp/storefront/internal/cart"
	"github.com/gitshopapp/storefront/internal/events"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/stripe"
)

type fakeOrderStore struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*models.Order
	createErr error
	lookups   int
	deleted   []uuid.UUID
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
		order.Items[i].OrderID = order.ID
	}
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (s *fakeOrderStore) Delete(_ context.Context, orderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return ErrOrderNotFound
	}
	delete(s.orders, orderID)
	s.deleted = append(s.deleted, orderID)
	return nil
}

func (s *fakeOrderStore) GetByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookups++
	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (s *fakeOrderStore) AttachPaymentSession(_ context.Context, orderID uuid.UUID, sessionID, paymentIntentID string) error {
	return s.update(orderID, func(order *models.Order) {
		order.ProviderSessionID = sessionID
		if paymentIntentID != "" {
			order.StripePaymentIntentID = paymentIntentID
		}
	})
}

func (s *fakeOrderStore) MarkProcessing(_ context.Context, orderID uuid.UUID, paymentIntentID string) error {
	return s.update(orderID, func(order *models.Order) {
		order.Status = models.StatusProcessing
		if paymentIntentID != "" {
			order.StripePaymentIntentID = paymentIntentID
		}
	})
}

func (s *fakeOrderStore) MarkCancelled(_ context.Context, orderID uuid.UUID) error {
	return s.update(orderID, func(order *models.Order) {
		order.Status = models.StatusCancelled
	})
}

func (s *fakeOrderStore) update(orderID uuid.UUID, apply func(order *models.Order)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookups++
	order, ok := s.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	apply(order)
	return nil
}

func (s *fakeOrderStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *fakeOrderStore) only() *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		return cloneOrder(order)
	}
	return nil
}

func (s *fakeOrderStore) lookupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

func cloneOrder(order *models.Order) *models.Order {
	clone := *order
	clone.Items = append([]models.OrderItem(nil), order.Items...)
	return &clone
}

type fakeCarts struct {
	mu      sync.Mutex
	carts   map[string]*cart.Cart
	cleared []string
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: make(map[string]*cart.Cart)}
}

func (c *fakeCarts) put(owner string, items ...cart.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.carts[owner] = &cart.Cart{Owner: owner, Currency: "eur", Items: items}
}

func (c *fakeCarts) Get(_ context.Context, owner string) (*cart.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.carts[owner]
	if !ok {
		return &cart.Cart{Owner: owner, Currency: "eur"}, nil
	}
	clone := *current
	clone.Items = append([]cart.Item(nil), current.Items...)
	return &clone, nil
}

func (c *fakeCarts) Clear(_ context.Context, owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.carts, owner)
	c.cleared = append(c.cleared, owner)
	return nil
}

type fakeGateway struct {
	mu       sync.Mutex
	err      error
	requests []SessionRequest
}

func (g *fakeGateway) CreateSession(_ context.Context, req SessionRequest) (*PaymentSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &PaymentSession{
		ID:  "cs_test_" + req.Order.ID.String(),
		URL: "https://checkout.example.com/" + req.Order.ID.String(),
	}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}
	return types
}

type fakeEmailSender struct {
	mu           sync.Mutex
	confirmed    []uuid.UUID
	cancelled    []uuid.UUID
	confirmError error
}

func (s *fakeEmailSender) SendOrderConfirmation(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = append(s.confirmed, order.ID)
	return s.confirmError
}

func (s *fakeEmailSender) SendOrderCancelled(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, order.ID)
	return nil
}

type fakeSessionReader struct {
	sessions map[string]*stripeapi.CheckoutSession
	err      error
}

func (r *fakeSessionReader) GetCheckoutSession(_ context.Context, sessionID string) (*stripeapi.CheckoutSession, error) {
	if r.err != nil {
		return nil, r.err
	}
	sess, ok := r.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", stripe.ErrSessionNotFound, sessionID)
	}
	return sess, nil
}
