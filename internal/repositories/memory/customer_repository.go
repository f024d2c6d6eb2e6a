package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"loyaltycard/internal/models"
	"loyaltycard/internal/repositories/interfaces"
	"loyaltycard/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type customerRepository struct {
	store *Store
}

func NewCustomerRepository(store *Store) interfaces.CustomerRepository {
	return &customerRepository{store: store}
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if customer.ID.IsZero() {
		customer.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = now
	}
	customer.UpdatedAt = now
	customer.Version = 1

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.customers[customer.ID]; exists {
		return fmt.Errorf("failed to create customer: duplicate id %s", customer.ID.Hex())
	}
	r.store.customers[customer.ID] = *copyCustomer(*customer)

	id := customer.ID
	r.store.track(ctx, func() { delete(r.store.customers, id) })
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, interfaces.ErrNotFound
	}
	return copyCustomer(c), nil
}

func (r *customerRepository) UpdateLoyalty(ctx context.Context, tenantID string, id primitive.ObjectID, expectedVersion int64, state models.LoyaltyState, visitedAt time.Time) (*models.Customer, error) {
	return r.mutate(ctx, tenantID, id, func(c *models.Customer) error {
		if c.Version != expectedVersion {
			return interfaces.ErrVersionConflict
		}
		c.VisitsTotal = state.VisitsTotal
		c.CycleVisits = state.CycleVisits
		c.RewardsAvailable = state.RewardsAvailable
		c.RewardsRedeemed = state.RewardsRedeemed
		c.LastVisitAt = visitedAt
		c.UpdatedAt = visitedAt
		return nil
	})
}

func (r *customerRepository) SetActive(ctx context.Context, tenantID string, id primitive.ObjectID, active bool, at time.Time) (*models.Customer, error) {
	return r.mutate(ctx, tenantID, id, func(c *models.Customer) error {
		c.Active = active
		if active {
			c.DeactivatedAt = nil
		} else {
			deactivatedAt := at
			c.DeactivatedAt = &deactivatedAt
		}
		c.UpdatedAt = at
		return nil
	})
}

// mutate applies fn to a stored customer and bumps its version.
func (r *customerRepository) mutate(ctx context.Context, tenantID string, id primitive.ObjectID, fn func(c *models.Customer) error) (*models.Customer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.customers[id]
	if !ok || stored.TenantID != tenantID {
		return nil, interfaces.ErrNotFound
	}

	updated := *copyCustomer(stored)
	if err := fn(&updated); err != nil {
		return nil, err
	}
	updated.Version = stored.Version + 1
	r.store.customers[id] = updated
	r.store.track(ctx, func() { r.store.customers[id] = stored })

	return copyCustomer(updated), nil
}

func (r *customerRepository) AddPassRegistration(ctx context.Context, id primitive.ObjectID, deviceID, pushToken string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.customers[id]
	if !ok {
		return false, interfaces.ErrNotFound
	}

	updated := *copyCustomer(stored)
	created := true
	for i, reg := range updated.PassRegistrations {
		if reg.DeviceID == deviceID {
			if reg.PushToken == pushToken {
				return false, nil
			}
			updated.PassRegistrations[i].PushToken = pushToken
			created = false
			break
		}
	}
	if created {
		updated.PassRegistrations = append(updated.PassRegistrations, models.PassRegistration{DeviceID: deviceID, PushToken: pushToken})
	}
	updated.UpdatedAt = time.Now()

	r.store.customers[id] = updated
	r.store.track(ctx, func() { r.store.customers[id] = stored })
	return created, nil
}

func (r *customerRepository) RemovePassRegistration(ctx context.Context, id primitive.ObjectID, deviceID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.customers[id]
	if !ok {
		return interfaces.ErrNotFound
	}

	updated := *copyCustomer(stored)
	kept := updated.PassRegistrations[:0]
	for _, reg := range updated.PassRegistrations {
		if reg.DeviceID != deviceID {
			kept = append(kept, reg)
		}
	}
	updated.PassRegistrations = kept

	r.store.customers[id] = updated
	r.store.track(ctx, func() { r.store.customers[id] = stored })
	return nil
}

func (r *customerRepository) List(ctx context.Context, tenantID string, filter *models.CustomerFilter, params *utils.PaginationParams) ([]*models.Customer, int64, error) {
	r.store.mu.RLock()
	matched := make([]*models.Customer, 0)
	for _, c := range r.store.customers {
		if c.TenantID != tenantID {
			continue
		}
		if filter.Matches(&c) {
			matched = append(matched, copyCustomer(c))
		}
	}
	r.store.mu.RUnlock()

	ascending := params != nil && params.Order == "asc"
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if ascending {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if ascending {
			return a.ID.Hex() < b.ID.Hex()
		}
		return a.ID.Hex() > b.ID.Hex()
	})

	total := int64(len(matched))
	if params == nil {
		return matched, total, nil
	}

	start := params.GetSkip()
	if start >= len(matched) {
		return []*models.Customer{}, total, nil
	}
	end := start + params.GetLimit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *customerRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var n int64
	for _, c := range r.store.customers {
		if c.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *customerRepository) GetStats(ctx context.Context, tenantID string, now time.Time) (*models.CustomerStats, error) {
	weekAgo := now.AddDate(0, 0, -7)
	startOfDay := utils.StartOfDay(now)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stats := &models.CustomerStats{}
	for _, c := range r.store.customers {
		if c.TenantID != tenantID {
			continue
		}
		stats.TotalCustomers++
		switch c.OSFamily {
		case models.OSFamilyIOS:
			stats.IOSCount++
		case models.OSFamilyAndroid:
			stats.AndroidCount++
		}
		if !c.CreatedAt.Before(weekAgo) {
			stats.NewThisWeek++
		}
		if !c.LastVisitAt.Before(startOfDay) {
			stats.VisitedToday++
		}
	}
	return stats, nil
}
