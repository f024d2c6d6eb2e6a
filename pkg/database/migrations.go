package database

import (
	"context"
	"fmt"
	"time"

	"loyaltycard/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionCustomers      = "customers"
	CollectionTenants        = "tenants"
	CollectionPlans          = "plans"
	CollectionTenantCounters = "tenant_counters"
	collectionMigrations     = "migrations"
)

type Migration struct {
	Version     int
	Description string
	Up          func(context.Context, *mongo.Database) error
	Down        func(context.Context, *mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	log        *logger.Logger
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
		log:        log,
	}
}

func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		m.log.WithField("version", migration.Version).Infof("Running migration: %s", migration.Description)

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) Down(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version > currentVersion || migration.Version <= targetVersion {
			continue
		}

		m.log.WithField("version", migration.Version).Infof("Reverting migration: %s", migration.Description)

		if err := migration.Down(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
		}

		previousVersion := targetVersion
		if i > 0 {
			previousVersion = m.migrations[i-1].Version
		}

		if err := m.updateVersion(ctx, previousVersion); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(collectionMigrations).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection(collectionMigrations).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)
	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create customers collection with indexes",
			Up:          createCustomersIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				_, err := db.Collection(CollectionCustomers).Indexes().DropAll(ctx)
				return err
			},
		},
		{
			Version:     2,
			Description: "Create plans collection with indexes",
			Up:          createPlansIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				_, err := db.Collection(CollectionPlans).Indexes().DropAll(ctx)
				return err
			},
		},
		{
			// Collections must exist before a transaction can write to them.
			Version:     3,
			Description: "Create tenant and counter collections",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return ensureCollections(ctx, db, CollectionTenants, CollectionTenantCounters, CollectionCustomers)
			},
			Down: func(ctx context.Context, db *mongo.Database) error {
				return nil
			},
		},
	}
}

func ensureCollections(ctx context.Context, db *mongo.Database, names ...string) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return err
	}

	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for _, name := range names {
		if have[name] {
			continue
		}
		if err := db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}
	return nil
}

func createCustomersIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(CollectionCustomers)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "os_family", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "rewards_available", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "last_visit_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "email", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createPlansIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(CollectionPlans)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
