package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2026-03", MonthKey(time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-11", MonthKey(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)))
}

func TestResetMonthlyIfStale(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	c := &TenantCounter{TotalCustomers: 7, NotificationsThisMonth: 9, EmailsThisMonth: 4, MonthKey: "2026-09"}
	assert.True(t, c.ResetMonthlyIfStale(now))
	assert.Equal(t, int64(0), c.NotificationsThisMonth)
	assert.Equal(t, int64(0), c.EmailsThisMonth)
	assert.Equal(t, "2026-10", c.MonthKey)
	assert.Equal(t, int64(7), c.TotalCustomers)

	c.NotificationsThisMonth = 2
	assert.False(t, c.ResetMonthlyIfStale(now))
	assert.Equal(t, int64(2), c.NotificationsThisMonth)
}

func TestCanEnroll(t *testing.T) {
	c := &TenantCounter{TotalCustomers: 4}

	assert.True(t, c.CanEnroll(nil))
	assert.True(t, c.CanEnroll(&PlanLimits{}))
	assert.True(t, c.CanEnroll(&PlanLimits{MaxCustomers: intPtr(5)}))
	assert.False(t, c.CanEnroll(&PlanLimits{MaxCustomers: intPtr(4)}))
	assert.False(t, c.CanEnroll(&PlanLimits{MaxCustomers: intPtr(0)}))
}

func TestCanNotify(t *testing.T) {
	c := &TenantCounter{NotificationsThisMonth: 10}

	assert.True(t, c.CanNotify(nil))
	assert.False(t, c.CanNotify(&PlanLimits{MaxNotificationsPerMonth: intPtr(10)}))
	assert.True(t, c.CanNotify(&PlanLimits{MaxNotificationsPerMonth: intPtr(11)}))
}

func TestCustomerFilterMatches(t *testing.T) {
	c := &Customer{Name: "Ana", Surname: "Diaz", Email: "ana@x.com", OSFamily: OSFamilyIOS, RewardsAvailable: 2}

	assert.True(t, (*CustomerFilter)(nil).Matches(c))
	assert.True(t, (&CustomerFilter{Search: "DIAZ"}).Matches(c))
	assert.True(t, (&CustomerFilter{Search: "ana@"}).Matches(c))
	assert.False(t, (&CustomerFilter{Search: "bob"}).Matches(c))
	assert.True(t, (&CustomerFilter{OS: "ios"}).Matches(c))
	assert.False(t, (&CustomerFilter{OS: "android"}).Matches(c))
	assert.True(t, (&CustomerFilter{OS: "all", Rewards: "with"}).Matches(c))
	assert.False(t, (&CustomerFilter{Rewards: "without"}).Matches(c))
}

func TestNormalizeOSFamily(t *testing.T) {
	assert.Equal(t, OSFamilyIOS, NormalizeOSFamily(" iOS "))
	assert.True(t, NormalizeOSFamily("IOS").UsesEmbeddedCounters())
	assert.False(t, NormalizeOSFamily("android").UsesEmbeddedCounters())
	assert.False(t, NormalizeOSFamily("web").UsesEmbeddedCounters())
}
