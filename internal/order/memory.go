package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository used by tests and local runs
// without a database. The daily sequence mirrors the atomic upsert the
// Postgres implementation uses.
type MemoryRepository struct {
	mu     sync.Mutex
	orders map[string]*Order
	seq    map[string]int
}

// NewMemoryRepository creates an empty in-memory order repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders: make(map[string]*Order),
		seq:    make(map[string]int),
	}
}

func (r *MemoryRepository) NextDailySequence(_ context.Context, day string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[day]++
	return r.seq[day], nil
}

func (r *MemoryRepository) Create(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	r.orders[o.OrderID] = &cp
	return nil
}

func (r *MemoryRepository) GetByOrderID(_ context.Context, orderID string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp, nil
}

func (r *MemoryRepository) ListBySession(_ context.Context, sessionID string) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Order
	for _, o := range r.orders {
		if o.SessionID == sessionID {
			out = append(out, *o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository) List(_ context.Context, status OrderStatus) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Order
	for _, o := range r.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, orderID string, newStatus OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = newStatus
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func sortNewestFirst(orders []Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].OrderID > orders[j].OrderID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
