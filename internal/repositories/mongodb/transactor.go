package mongodb

import (
	"context"
	"errors"

	"loyaltycard/internal/repositories/interfaces"
	"loyaltycard/pkg/database"

	"go.mongodb.org/mongo-driver/mongo"
)

// maxConflictAttempts bounds retries of a transaction that lost a
// create race on a document another transaction inserted first.
const maxConflictAttempts = 3

type transactor struct {
	db *database.MongoDB
}

func NewTransactor(db *database.MongoDB) interfaces.Transactor {
	return &transactor{db: db}
}

// WithTransaction joins an open session when ctx already carries one.
func (t *transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	return retryOnWriteConflict(ctx, maxConflictAttempts, func() error {
		_, err := t.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			return nil, fn(sessCtx)
		})
		return err
	})
}

func retryOnWriteConflict(ctx context.Context, attempts int, run func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = run()
		if !errors.Is(err, interfaces.ErrWriteConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
