// Package memory holds in-process implementations of the repository
// interfaces. They back the DB_DRIVER=memory mode and the service tests.
package memory

import (
	"context"
	"sync"

	"loyaltycard/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the shared state of all memory repositories. Values are stored by
// copy so callers never alias stored records.
type Store struct {
	mu        sync.RWMutex
	customers map[primitive.ObjectID]models.Customer
	tenants   map[string]models.Tenant
	plans     map[string]models.Plan
	counters  map[string]models.TenantCounter

	// txMu serializes transactions, standing in for mongo's write-conflict
	// retry on the counter document.
	txMu sync.Mutex
}

func NewStore() *Store {
	return &Store{
		customers: make(map[primitive.ObjectID]models.Customer),
		tenants:   make(map[string]models.Tenant),
		plans:     make(map[string]models.Plan),
		counters:  make(map[string]models.TenantCounter),
	}
}

type txKey struct{}

// journal collects undo steps for writes made inside a transaction.
type journal struct {
	undo []func()
}

func journalFrom(ctx context.Context) *journal {
	j, _ := ctx.Value(txKey{}).(*journal)
	return j
}

// track registers an undo step. Must be called with s.mu held.
func (s *Store) track(ctx context.Context, undo func()) {
	if j := journalFrom(ctx); j != nil {
		j.undo = append(j.undo, undo)
	}
}

// WithTransaction runs fn with every write journaled and rolls the journal
// back if fn fails. Nested calls join the outer transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if journalFrom(ctx) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	j := &journal{}
	if err := fn(context.WithValue(ctx, txKey{}, j)); err != nil {
		s.mu.Lock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func copyCustomer(c models.Customer) *models.Customer {
	if c.PassRegistrations != nil {
		c.PassRegistrations = append([]models.PassRegistration(nil), c.PassRegistrations...)
	}
	if c.DeactivatedAt != nil {
		at := *c.DeactivatedAt
		c.DeactivatedAt = &at
	}
	return &c
}

// Ping only reports context cancellation.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}
