package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNewPaginationParamsClamps(t *testing.T) {
	p := NewPaginationParams(0, 1000, "sideways")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, "desc", p.Order)
	assert.Equal(t, SortCreatedAt, p.Sort)

	p = NewPaginationParams(3, 10, "asc")
	assert.Equal(t, 20, p.GetSkip())
	assert.Equal(t, 10, p.GetLimit())
}

func TestCreatePaginationMeta(t *testing.T) {
	meta := CreatePaginationMeta(NewPaginationParams(2, 10, "desc"), 25)
	assert.Equal(t, 3, meta.TotalPages)
	require.NotNil(t, meta.NextPage)
	require.NotNil(t, meta.PreviousPage)
	assert.Equal(t, 3, *meta.NextPage)
	assert.Equal(t, 1, *meta.PreviousPage)
}

func TestSearchFilterQuotesTerm(t *testing.T) {
	f := SearchFilter("a.b", []string{"email"})
	or := f["$or"].([]bson.M)
	require.Len(t, or, 1)
	assert.Equal(t, `a\.b`, or[0]["email"].(bson.M)["$regex"])
	assert.Empty(t, SearchFilter("", []string{"email"}))
}

func TestPhoneHelpers(t *testing.T) {
	assert.True(t, IsValidPhone("+34 612 345 678"))
	assert.True(t, IsValidPhone("(555) 123-4567"))
	assert.False(t, IsValidPhone("12ab"))
	assert.Equal(t, "+34612345678", NormalizePhone(" +34 612-345-678 "))
	assert.Equal(t, "****5678", MaskPhone("12345678"))
}

func TestEmailHelpers(t *testing.T) {
	assert.Equal(t, "ana.diaz@mail.com", NormalizeEmail("  Ana.Diaz@Mail.com "))
	assert.Equal(t, "a**a@mail.com", MaskEmail("anna@mail.com"))
}

func TestTenantTokenRoundTrip(t *testing.T) {
	token, err := GenerateTenantToken("tenant-1", "loyaltycard", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateTenantToken(token, "loyaltycard", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", claims.TenantID)

	_, err = ValidateTenantToken(token, "loyaltycard", "other")
	assert.Error(t, err)

	_, err = ValidateTenantToken(token, "someone-else", "secret")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1990-05-17")
	require.NoError(t, err)
	assert.Equal(t, 1990, d.Year())

	_, err = ParseDate("17/05/1990")
	assert.Error(t, err)
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare("abc", "abc"))
	assert.False(t, SecureCompare("abc", "abd"))
	assert.Len(t, HashToken("device"), 16)
}
