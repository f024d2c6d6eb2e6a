package mongodb

import (
	"testing"

	"loyaltycard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildCustomerQueryDefaults(t *testing.T) {
	assert.Equal(t, bson.M{"tenant_id": "t1"}, buildCustomerQuery("t1", nil))
	assert.Equal(t, bson.M{"tenant_id": "t1"}, buildCustomerQuery("t1", &models.CustomerFilter{OS: "all", Rewards: "all"}))
}

func TestBuildCustomerQueryFilters(t *testing.T) {
	q := buildCustomerQuery("t1", &models.CustomerFilter{OS: "IOS", Rewards: "with"})
	assert.Equal(t, "ios", q["os_family"])
	assert.Equal(t, bson.M{"$gt": 0}, q["rewards_available"])

	q = buildCustomerQuery("t1", &models.CustomerFilter{Rewards: "without"})
	assert.Equal(t, bson.M{"$lte": 0}, q["rewards_available"])
}

func TestBuildCustomerQuerySearch(t *testing.T) {
	q := buildCustomerQuery("t1", &models.CustomerFilter{Search: "ana"})
	or, ok := q["$or"].([]bson.M)
	require.True(t, ok)
	assert.Len(t, or, 3)

	id := primitive.NewObjectID()
	q = buildCustomerQuery("t1", &models.CustomerFilter{Search: id.Hex()})
	or = q["$or"].([]bson.M)
	require.Len(t, or, 4)
	assert.Equal(t, bson.M{"_id": id}, or[3])
}
