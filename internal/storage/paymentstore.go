package storage

import (
	"context"
	"sync"

	"github.com/NikamRenuka/cabadmin/internal/models"
)

// PaymentStore lists the payments shown on the payments page.
type PaymentStore interface {
	Payments(ctx context.Context) ([]models.Payment, error)
}

// MemoryStore serves a fixed in-process payment list; the default when no
// database or Stripe key is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	payments []models.Payment
}

// NewMemoryStore seeds the store with the static rows the dashboard has
// always shown.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payments: []models.Payment{
		{ID: "1", Customer: "Priya Sharma", Amount: 4500, Date: "2025-09-15"},
		{ID: "2", Customer: "Amit Patel", Amount: 5500, Date: "2025-09-14"},
	}}
}

func (m *MemoryStore) Payments(ctx context.Context) ([]models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Payment, len(m.payments))
	copy(out, m.payments)
	return out, nil
}

// Add appends a payment row; used by seeding and tests.
func (m *MemoryStore) Add(p models.Payment) {
	m.mu.Lock()
	m.payments = append(m.payments, p)
	m.mu.Unlock()
}
