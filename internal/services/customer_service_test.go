package services

import (
	"context"
	"testing"
	"time"

	"loyaltycard/internal/models"
	"loyaltycard/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeactivateIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.enroll(t, "t1", "ios")

	first, err := env.customerService.Deactivate(ctx, "t1", c.ID.Hex())
	require.NoError(t, err)
	assert.False(t, first.Active)
	require.NotNil(t, first.DeactivatedAt)

	second, err := env.customerService.Deactivate(ctx, "t1", c.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, *first.DeactivatedAt, *second.DeactivatedAt)
}

func TestReactivateKeepsCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.enroll(t, "t1", "android")
	for i := 0; i < 12; i++ {
		visit(t, env, c)
	}

	_, err := env.customerService.Deactivate(ctx, "t1", c.ID.Hex())
	require.NoError(t, err)

	back, err := env.customerService.Reactivate(ctx, "t1", c.ID.Hex())
	require.NoError(t, err)
	assert.True(t, back.Active)
	assert.Nil(t, back.DeactivatedAt)
	assert.Equal(t, models.LoyaltyState{VisitsTotal: 13, CycleVisits: 3, RewardsAvailable: 1}, back.LoyaltyState())

	visit(t, env, c)
}

func TestLifecycleUnknownCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.enroll(t, "t1", "ios")

	_, err := env.customerService.Deactivate(ctx, "t2", c.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.customerService.GetCustomer(ctx, "t1", "bogus")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCustomersFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ios := env.enroll(t, "t1", "ios")
	env.enroll(t, "t1", "android")
	env.enroll(t, "t2", "android")
	for i := 0; i < 10; i++ {
		visit(t, env, ios)
	}

	all, total, err := env.customerService.ListCustomers(ctx, "t1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	withRewards, total, err := env.customerService.ListCustomers(ctx, "t1", &models.CustomerFilter{Rewards: models.FilterWithRewards}, utils.NewPaginationParams(1, 10, "asc"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, ios.ID, withRewards[0].ID)

	androids, _, err := env.customerService.ListCustomers(ctx, "t1", &models.CustomerFilter{OS: "android"}, nil)
	require.NoError(t, err)
	require.Len(t, androids, 1)
	assert.Equal(t, models.OSFamilyAndroid, androids[0].OSFamily)
}

func TestGetStatsWithLimits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedTenant(t, "t1", "Tiny", intPtr(2), nil)
	env.enroll(t, "t1", "ios")
	env.enroll(t, "t1", "android")

	stats, err := env.customerService.GetStats(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalCustomers)
	assert.Equal(t, int64(1), stats.IOSCount)
	assert.Equal(t, int64(1), stats.AndroidCount)
	assert.Equal(t, int64(2), stats.NewThisWeek)
	assert.Equal(t, int64(2), stats.VisitedToday)
	assert.True(t, stats.LimitsKnown)
	assert.True(t, stats.AtLimit)
	assert.Equal(t, 2, *stats.MaxCustomers)
}

func TestGetStatsUnknownLimits(t *testing.T) {
	env := newTestEnv(t)
	env.enroll(t, "t1", "ios")

	stats, err := env.customerService.GetStats(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, stats.LimitsKnown)
	assert.False(t, stats.AtLimit)
	assert.Nil(t, stats.MaxCustomers)
}

func TestGetStatsRollsOverStaleMonth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedTenant(t, "t1", "Tiny", nil, intPtr(5))

	now := time.Now().UTC()
	lastMonth := now.AddDate(0, 0, -now.Day())
	_, err := env.counters.IncrementNotifications(ctx, "t1", nil, lastMonth)
	require.NoError(t, err)

	stats, err := env.customerService.GetStats(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.NotificationsThisMonth)
	assert.Equal(t, 5, *stats.MaxNotificationsPerMonth)

	counter, err := env.counters.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.MonthKey(time.Now()), counter.MonthKey)
}

func TestEnrollmentLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	link, err := env.customerService.EnrollmentLink(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "https://loyalty.test/register/t1", link)

	require.NoError(t, env.tenants.Upsert(ctx, &models.Tenant{ID: "t2", EnrollmentBaseURL: "https://cafe.example/"}))
	link, err = env.customerService.EnrollmentLink(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "https://cafe.example/register/t2", link)
}

func TestPassDeviceRegistration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.enroll(t, "t1", "ios")

	created, err := env.customerService.RegisterPassDevice(ctx, c.ID.Hex(), "dev-1", "tok-1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.customerService.RegisterPassDevice(ctx, c.ID.Hex(), "dev-1", "tok-1")
	require.NoError(t, err)
	assert.False(t, created)

	visit(t, env, c)
	assert.Equal(t, []string{"tok-1"}, env.wallets.apple.refreshed)

	require.NoError(t, env.customerService.UnregisterPassDevice(ctx, c.ID.Hex(), "dev-1"))
	assert.Empty(t, env.reload(t, c).PassRegistrations)

	_, err = env.customerService.RegisterPassDevice(ctx, "65f1c0ffee0000000000abcd", "dev-2", "tok-2")
	assert.ErrorIs(t, err, ErrNotFound)
}
