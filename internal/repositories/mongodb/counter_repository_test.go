package mongodb

import (
	"context"
	"errors"
	"testing"

	"loyaltycard/internal/repositories/interfaces"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCounterWriteErrorMapsDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}
	assert.ErrorIs(t, counterWriteError(dup), interfaces.ErrWriteConflict)

	other := counterWriteError(errors.New("socket closed"))
	assert.NotErrorIs(t, other, interfaces.ErrWriteConflict)
	assert.Contains(t, other.Error(), "failed to write tenant counter")
}

func TestRetryOnWriteConflict(t *testing.T) {
	ctx := context.Background()

	t.Run("retries until the insert race is lost to a committed document", func(t *testing.T) {
		calls := 0
		err := retryOnWriteConflict(ctx, 3, func() error {
			calls++
			if calls == 1 {
				return counterWriteError(mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}})
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		calls := 0
		err := retryOnWriteConflict(ctx, 3, func() error {
			calls++
			return interfaces.ErrWriteConflict
		})
		assert.ErrorIs(t, err, interfaces.ErrWriteConflict)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		err := retryOnWriteConflict(ctx, 3, func() error {
			calls++
			return interfaces.ErrQuotaExceeded
		})
		assert.ErrorIs(t, err, interfaces.ErrQuotaExceeded)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		calls := 0
		err := retryOnWriteConflict(cancelled, 3, func() error {
			calls++
			return interfaces.ErrWriteConflict
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
