package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"loyaltycard/internal/models"
	"loyaltycard/internal/repositories/interfaces"
	"loyaltycard/internal/utils"
	"loyaltycard/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type customerRepository struct {
	collection *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) interfaces.CustomerRepository {
	return &customerRepository{
		collection: db.Collection(database.CollectionCustomers),
	}
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

	_, err := r.collection.InsertOne(ctx, customer)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Customer, error) {
	var customer models.Customer
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "tenant_id": tenantID}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return &customer, nil
}

// UpdateLoyalty writes the new counters only if the stored version still
// equals expectedVersion.
func (r *customerRepository) UpdateLoyalty(ctx context.Context, tenantID string, id primitive.ObjectID, expectedVersion int64, state models.LoyaltyState, visitedAt time.Time) (*models.Customer, error) {
	filter := bson.M{"_id": id, "tenant_id": tenantID, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"visits_total":      state.VisitsTotal,
			"cycle_visits":      state.CycleVisits,
			"rewards_available": state.RewardsAvailable,
			"rewards_redeemed":  state.RewardsRedeemed,
			"last_visit_at":     visitedAt,
			"updated_at":        visitedAt,
		},
		"$inc": bson.M{"version": 1},
	}

	customer, err := r.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, interfaces.ErrNotFound) {
		if _, getErr := r.GetByID(ctx, tenantID, id); getErr == nil {
			return nil, interfaces.ErrVersionConflict
		}
	}
	return customer, err
}

func (r *customerRepository) SetActive(ctx context.Context, tenantID string, id primitive.ObjectID, active bool, at time.Time) (*models.Customer, error) {
	update := bson.M{
		"$set": bson.M{"active": active, "updated_at": at},
		"$inc": bson.M{"version": 1},
	}
	if active {
		update["$unset"] = bson.M{"deactivated_at": ""}
	} else {
		update["$set"].(bson.M)["deactivated_at"] = at
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": id, "tenant_id": tenantID}, update)
}

func (r *customerRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Customer, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var customer models.Customer
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return &customer, nil
}

func (r *customerRepository) AddPassRegistration(ctx context.Context, id primitive.ObjectID, deviceID, pushToken string) (bool, error) {
	now := time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "pass_registrations.device_id": bson.M{"$ne": deviceID}},
		bson.M{
			"$push": bson.M{"pass_registrations": models.PassRegistration{DeviceID: deviceID, PushToken: pushToken}},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to add pass registration: %w", err)
	}
	if result.MatchedCount > 0 {
		return true, nil
	}

	// Either the device is already registered or the customer does not exist.
	result, err = r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "pass_registrations.device_id": deviceID},
		bson.M{"$set": bson.M{
			"pass_registrations.$.push_token": pushToken,
			"updated_at":                      now,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update pass registration: %w", err)
	}
	if result.MatchedCount == 0 {
		return false, interfaces.ErrNotFound
	}
	return false, nil
}

func (r *customerRepository) RemovePassRegistration(ctx context.Context, id primitive.ObjectID, deviceID string) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$pull": bson.M{"pass_registrations": bson.M{"device_id": deviceID}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove pass registration: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}

func (r *customerRepository) List(ctx context.Context, tenantID string, filter *models.CustomerFilter, params *utils.PaginationParams) ([]*models.Customer, int64, error) {
	query := buildCustomerQuery(tenantID, filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	if params == nil {
		params = utils.NewPaginationParams(1, utils.MaxPageSize, "desc")
	}

	cursor, err := r.collection.Find(ctx, query, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer cursor.Close(ctx)

	customers := make([]*models.Customer, 0)
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, 0, fmt.Errorf("failed to decode customers: %w", err)
	}

	return customers, total, nil
}

// buildCustomerQuery mirrors models.CustomerFilter.Matches.
func buildCustomerQuery(tenantID string, filter *models.CustomerFilter) bson.M {
	query := bson.M{"tenant_id": tenantID}
	if filter == nil {
		return query
	}

	if term := strings.TrimSpace(filter.Search); term != "" {
		search := utils.SearchFilter(term, []string{"name", "surname", "email"})
		or := search["$or"].([]bson.M)
		if oid, err := primitive.ObjectIDFromHex(term); err == nil {
			or = append(or, bson.M{"_id": oid})
		}
		query["$or"] = or
	}

	if os := strings.ToLower(filter.OS); os != "" && os != models.FilterAll {
		query["os_family"] = os
	}

	switch strings.ToLower(filter.Rewards) {
	case models.FilterWithRewards:
		query["rewards_available"] = bson.M{"$gt": 0}
	case models.FilterNoRewards:
		query["rewards_available"] = bson.M{"$lte": 0}
	}

	return query
}

func (r *customerRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

func (r *customerRepository) GetStats(ctx context.Context, tenantID string, now time.Time) (*models.CustomerStats, error) {
	weekAgo := now.AddDate(0, 0, -7)
	startOfDay := utils.StartOfDay(now)

	countIf := func(cond bson.M) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{cond, 1, 0}}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tenant_id": tenantID}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"total":         bson.M{"$sum": 1},
			"ios":           countIf(bson.M{"$eq": bson.A{"$os_family", models.OSFamilyIOS}}),
			"android":       countIf(bson.M{"$eq": bson.A{"$os_family", models.OSFamilyAndroid}}),
			"new_this_week": countIf(bson.M{"$gte": bson.A{"$created_at", weekAgo}}),
			"visited_today": countIf(bson.M{"$gte": bson.A{"$last_visit_at", startOfDay}}),
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate customer stats: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total        int64 `bson:"total"`
		IOS          int64 `bson:"ios"`
		Android      int64 `bson:"android"`
		NewThisWeek  int64 `bson:"new_this_week"`
		VisitedToday int64 `bson:"visited_today"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode customer stats: %w", err)
	}

	stats := &models.CustomerStats{}
	if len(rows) > 0 {
		stats.TotalCustomers = rows[0].Total
		stats.IOSCount = rows[0].IOS
		stats.AndroidCount = rows[0].Android
		stats.NewThisWeek = rows[0].NewThisWeek
		stats.VisitedToday = rows[0].VisitedToday
	}

	return stats, nil
}
