package memory

import (
	"context"
	"time"

	"loyaltycard/internal/models"
	"loyaltycard/internal/repositories/interfaces"
)

type counterRepository struct {
	store *Store
}

func NewCounterRepository(store *Store) interfaces.CounterRepository {
	return &counterRepository{store: store}
}

func (r *counterRepository) Get(ctx context.Context, tenantID string) (*models.TenantCounter, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.counters[tenantID]
	if !ok {
		return &models.TenantCounter{TenantID: tenantID}, nil
	}
	return &c, nil
}

func (r *counterRepository) IncrementIfUnderLimit(ctx context.Context, tenantID string, limits *models.PlanLimits, now time.Time) (*models.TenantCounter, error) {
	return r.update(ctx, tenantID, now, func(c *models.TenantCounter) error {
		if !c.CanEnroll(limits) {
			return interfaces.ErrQuotaExceeded
		}
		c.TotalCustomers++
		return nil
	})
}

func (r *counterRepository) IncrementNotifications(ctx context.Context, tenantID string, limits *models.PlanLimits, now time.Time) (*models.TenantCounter, error) {
	return r.update(ctx, tenantID, now, func(c *models.TenantCounter) error {
		if !c.CanNotify(limits) {
			return interfaces.ErrQuotaExceeded
		}
		c.NotificationsThisMonth++
		return nil
	})
}

func (r *counterRepository) ResetMonthlyIfStale(ctx context.Context, tenantID string, now time.Time) (*models.TenantCounter, error) {
	return r.update(ctx, tenantID, now, func(c *models.TenantCounter) error { return nil })
}

// update loads (or initializes) the counter, applies the lazy monthly reset
// and then fn. Nothing is written when fn fails.
func (r *counterRepository) update(ctx context.Context, tenantID string, now time.Time, fn func(c *models.TenantCounter) error) (*models.TenantCounter, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, existed := r.store.counters[tenantID]
	next := stored
	if !existed {
		next = models.TenantCounter{TenantID: tenantID}
	}

	next.ResetMonthlyIfStale(now)
	if err := fn(&next); err != nil {
		return nil, err
	}
	next.UpdatedAt = now

	r.store.counters[tenantID] = next
	r.store.track(ctx, func() {
		if existed {
			r.store.counters[tenantID] = stored
		} else {
			delete(r.store.counters, tenantID)
		}
	})

	out := next
	return &out, nil
}
