package cart

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

// MemoryRepository is an in-memory Repository used by tests and local runs
// without a database.
type MemoryRepository struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*Cart
}

// NewMemoryRepository creates an empty in-memory cart repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[uuid.UUID]*Cart)}
}

func (r *MemoryRepository) GetActiveBySession(_ context.Context, sessionID string) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.SessionID == sessionID && c.Status == StatusActive {
			cp := *c
			cp.Items = append([]LineItem(nil), c.Items...)
			return &cp, nil
		}
	}
	return nil, ErrCartNotFound
}

func (r *MemoryRepository) Create(_ context.Context, c *Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		c.ID = id
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	cp := *c
	cp.Items = append([]LineItem(nil), c.Items...)
	r.carts[c.ID] = &cp
	return nil
}

func (r *MemoryRepository) SaveItems(_ context.Context, c *Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.carts[c.ID]
	if !ok {
		return ErrCartNotFound
	}
	stored.Items = append([]LineItem(nil), c.Items...)
	stored.UpdatedAt = time.Now().UTC()
	c.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, cartID uuid.UUID, status CartStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	stored.Status = status
	stored.UpdatedAt = time.Now().UTC()
	return nil
}
