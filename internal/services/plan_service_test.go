package services

import (
	"context"
	"testing"

	"loyaltycard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLimitsExactName(t *testing.T) {
	env := newTestEnv(t)
	env.seedTenant(t, "t1", "Pro", intPtr(500), intPtr(100))

	limits, err := env.planService.ResolveLimits(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, limits)
	assert.Equal(t, "Pro", limits.PlanName)
	assert.Equal(t, 500, *limits.MaxCustomers)
	assert.Equal(t, 100, *limits.MaxNotificationsPerMonth)
}

func TestResolveLimitsCaseInsensitiveFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.plans.Upsert(ctx, &models.Plan{Name: "Basic", MaxCustomers: intPtr(50)}))
	require.NoError(t, env.tenants.Upsert(ctx, &models.Tenant{ID: "t1", PlanName: "basic"}))

	limits, err := env.planService.ResolveLimits(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, limits)
	assert.Equal(t, 50, *limits.MaxCustomers)
}

func TestResolveLimitsUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.tenants.Upsert(ctx, &models.Tenant{ID: "no-plan"}))
	require.NoError(t, env.tenants.Upsert(ctx, &models.Tenant{ID: "ghost-plan", PlanName: "Enterprise"}))

	for _, tenantID := range []string{"missing", "no-plan", "ghost-plan"} {
		limits, err := env.planService.ResolveLimits(ctx, tenantID)
		require.NoError(t, err, tenantID)
		assert.Nil(t, limits, tenantID)
	}
}

func TestResolveLimitsServedFromCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedTenant(t, "t1", "Pro", intPtr(500), nil)

	_, err := env.planService.ResolveLimits(ctx, "t1")
	require.NoError(t, err)

	require.NoError(t, env.plans.Upsert(ctx, &models.Plan{Name: "Pro", MaxCustomers: intPtr(1)}))

	limits, err := env.planService.ResolveLimits(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 500, *limits.MaxCustomers)
}

func TestResolveLimitsCacheKeepsCaseDistinctPlans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedTenant(t, "t1", "Pro", intPtr(500), nil)
	env.seedTenant(t, "t2", "PRO", intPtr(5), nil)

	first, err := env.planService.ResolveLimits(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 500, *first.MaxCustomers)

	second, err := env.planService.ResolveLimits(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "PRO", second.PlanName)
	assert.Equal(t, 5, *second.MaxCustomers)
}

func TestGetTenant(t *testing.T) {
	env := newTestEnv(t)
	env.seedTenant(t, "t1", "Pro", nil, nil)

	tenant, err := env.planService.GetTenant(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Pro", tenant.PlanName)

	_, err = env.planService.GetTenant(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}
