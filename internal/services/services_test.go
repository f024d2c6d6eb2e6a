package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"loyaltycard/internal/models"
	"loyaltycard/internal/repositories/interfaces"
	"loyaltycard/internal/repositories/memory"
	"loyaltycard/internal/validators"
	"loyaltycard/pkg/cache"
	"loyaltycard/pkg/logger"
	"loyaltycard/pkg/wallet"

	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu   sync.Mutex
	name string

	createErr error
	updateErr error
	adjustErr error
	notifyErr error
	onUpdate  func()
	onRefresh func()

	unregistered []string

	created        []*wallet.PassRequest
	counterUpdates []*wallet.CounterUpdate
	adjustments    []int
	notifications  []string
	refreshed      []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) CreatePass(ctx context.Context, request *wallet.PassRequest) (*wallet.PassReference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, request)
	return &wallet.PassReference{Provider: f.name, URL: "https://wallet.test/" + f.name + "/" + request.CustomerID}, nil
}

func (f *fakeProvider) UpdatePassCounters(ctx context.Context, update *wallet.CounterUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onUpdate != nil {
		f.onUpdate()
	}
	if f.updateErr != nil {
		return f.updateErr
	}
	f.counterUpdates = append(f.counterUpdates, update)
	return nil
}

func (f *fakeProvider) AdjustPoints(ctx context.Context, customerID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.adjustErr != nil {
		return f.adjustErr
	}
	f.adjustments = append(f.adjustments, delta)
	return nil
}

func (f *fakeProvider) Notify(ctx context.Context, customerID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notifications = append(f.notifications, message)
	return nil
}

func (f *fakeProvider) RefreshPass(ctx context.Context, customerID string, pushTokens []string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onRefresh != nil {
		f.onRefresh()
	}
	f.refreshed = append(f.refreshed, pushTokens...)
	return f.unregistered
}

func (f *fakeProvider) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type fakeRegistry struct {
	apple  *fakeProvider
	google *fakeProvider
}

func (r *fakeRegistry) For(osFamily string) wallet.Provider {
	if osFamily == string(models.OSFamilyIOS) {
		return r.apple
	}
	return r.google
}

type testEnv struct {
	store     *memory.Store
	customers interfaces.CustomerRepository
	counters  interfaces.CounterRepository
	tenants   interfaces.TenantRepository
	plans     interfaces.PlanRepository
	backend   *cache.MemoryCache
	wallets   *fakeRegistry

	planService       PlanService
	enrollmentService EnrollmentService
	accrualService    AccrualService
	customerService   CustomerService
	messagingService  MessagingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	log := logger.NewNop()
	backend := cache.NewMemoryCache()
	cacheService := NewCacheService(backend, LockOptions{
		TTL:      5 * time.Second,
		Wait:     2 * time.Second,
		Interval: 2 * time.Millisecond,
	}, time.Minute, log)

	env := &testEnv{
		store:     store,
		customers: memory.NewCustomerRepository(store),
		counters:  memory.NewCounterRepository(store),
		tenants:   memory.NewTenantRepository(store),
		plans:     memory.NewPlanRepository(store),
		backend:   backend,
		wallets: &fakeRegistry{
			apple:  &fakeProvider{name: "apple"},
			google: &fakeProvider{name: "google"},
		},
	}

	env.planService = NewPlanService(env.tenants, env.plans, cacheService, time.Minute, log)
	env.enrollmentService = NewEnrollmentService(env.customers, env.counters, store, env.planService, env.wallets, log)
	env.accrualService = NewAccrualService(env.customers, cacheService, env.wallets, log)
	env.customerService = NewCustomerService(env.customers, env.counters, env.planService, cacheService, "https://loyalty.test/", log)
	env.messagingService = NewMessagingService(env.customers, env.counters, store, env.planService, env.wallets, log)
	return env
}

func intPtr(v int) *int { return &v }

// seedTenant stores a tenant on a plan with the given ceilings.
func (e *testEnv) seedTenant(t *testing.T, tenantID, planName string, maxCustomers, maxNotifications *int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.plans.Upsert(ctx, &models.Plan{
		Name:                     planName,
		MaxCustomers:             maxCustomers,
		MaxNotificationsPerMonth: maxNotifications,
	}))
	require.NoError(t, e.tenants.Upsert(ctx, &models.Tenant{ID: tenantID, Name: "Cafe " + tenantID, PlanName: planName}))
}

func enrollmentRequest(os string) *validators.EnrollmentRequest {
	return &validators.EnrollmentRequest{
		Name:      "Ana",
		Surname:   "Diaz",
		Email:     "  Ana@Example.COM ",
		Phone:     "+34600123456",
		BirthDate: "1990-05-01",
		OS:        os,
	}
}

func (e *testEnv) enroll(t *testing.T, tenantID, os string) *models.Customer {
	t.Helper()
	res, err := e.enrollmentService.Enroll(context.Background(), tenantID, enrollmentRequest(os))
	require.NoError(t, err)
	return res.Customer
}

func (e *testEnv) reload(t *testing.T, c *models.Customer) *models.Customer {
	t.Helper()
	got, err := e.customers.GetByID(context.Background(), c.TenantID, c.ID)
	require.NoError(t, err)
	return got
}
