package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyCustomerCountsAgainstQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedTenant(t, "t1", "Pro", nil, intPtr(2))
	c := env.enroll(t, "t1", "android")

	for i := 1; i <= 2; i++ {
		counter, err := env.messagingService.NotifyCustomer(ctx, "t1", c.ID.Hex(), "Double points today")
		require.NoError(t, err)
		assert.Equal(t, int64(i), counter.NotificationsThisMonth)
	}

	_, err := env.messagingService.NotifyCustomer(ctx, "t1", c.ID.Hex(), "One more")
	require.ErrorIs(t, err, ErrNotificationLimitReached)
	assert.Len(t, env.wallets.google.notifications, 2)
}

func TestNotifyCustomerWalletFailureKeepsQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedTenant(t, "t1", "Pro", nil, intPtr(5))
	c := env.enroll(t, "t1", "ios")
	env.wallets.apple.notifyErr = errors.New("upstream down")

	_, err := env.messagingService.NotifyCustomer(ctx, "t1", c.ID.Hex(), "hello")
	require.ErrorIs(t, err, ErrWalletProvider)

	counter, err := env.counters.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Zero(t, counter.NotificationsThisMonth)
}

func TestNotifyCustomerPreconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.enroll(t, "t1", "ios")

	_, err := env.messagingService.NotifyCustomer(ctx, "t2", c.ID.Hex(), "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.messagingService.NotifyCustomer(ctx, "t1", c.ID.Hex(), "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.customerService.Deactivate(ctx, "t1", c.ID.Hex())
	require.NoError(t, err)
	_, err = env.messagingService.NotifyCustomer(ctx, "t1", c.ID.Hex(), "hi")
	assert.ErrorIs(t, err, ErrInactive)
}
