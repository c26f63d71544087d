package shared_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombooking/shared"
	"roombooking/shared/cache/mocks"
	"roombooking/shared/constant"
	"roombooking/shared/dto"
	"roombooking/shared/failure"
)

func TestConvertStringToBool(t *testing.T) {
	tests := []struct {
		input    string
		expected *bool
	}{
		{input: "", expected: nil},
		{input: "true", expected: boolPtr(true)},
		{input: "0", expected: boolPtr(false)},
		{input: "F", expected: boolPtr(false)},
		{input: "random", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.ConvertStringToBool(tt.input))
		})
	}
}

func TestConvertStringToInt64(t *testing.T) {
	got, err := shared.ConvertStringToInt64(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)

	_, err = shared.ConvertStringToInt64("abc")
	assert.Error(t, err)

	n, err := shared.ConvertStringToInt("12")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestParseID(t *testing.T) {
	id, err := shared.ParseID("id", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, value := range []string{"", "abc", "0", "-3"} {
		_, err := shared.ParseID("id", value)
		assert.Equal(t, 400, failure.GetCode(err), value)
	}
}

func TestCalculateTotalPage(t *testing.T) {
	assert.Equal(t, 1, shared.CalculateTotalPage(0, 10))
	assert.Equal(t, 1, shared.CalculateTotalPage(100, 0))
	assert.Equal(t, 10, shared.CalculateTotalPage(100, 10))
	assert.Equal(t, 11, shared.CalculateTotalPage(101, 10))
}

func TestTransformFields(t *testing.T) {
	type roomPatch struct {
		Name     string `db:"name"`
		Capacity int    `db:"capacity"`
		Location string `db:"location"`
		Skipped  string `db:"-"`
		NoTag    string
	}

	result := shared.TransformFields(roomPatch{Name: "Orchid", Skipped: "x", NoTag: "y"}, "admin@example.com")

	assert.Equal(t, "Orchid", result["name"])
	assert.NotContains(t, result, "capacity")
	assert.NotContains(t, result, "location")
	assert.NotContains(t, result, "-")
	assert.Equal(t, "admin@example.com", result[constant.FieldModifiedBy])
	assert.IsType(t, time.Time{}, result[constant.FieldModifiedAt])
	assert.Len(t, result, 3)
}

func TestFilterByID(t *testing.T) {
	filter := shared.FilterByID(int64(5), "booking_id", "photo_usages")

	require.Len(t, filter.Filters, 1)
	assert.Equal(t, dto.Filter{Field: "booking_id", Value: int64(5), Operator: dto.FilterOperatorEq, Table: "photo_usages"}, filter.Filters[0])

	where, args := filter.GetWhereClause()
	assert.Equal(t, "(photo_usages.booking_id = :booking_id)", where)
	assert.Equal(t, map[string]any{"booking_id": int64(5)}, args)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "room:get", shared.BuildCacheKey("room:get"))
	assert.Equal(t, "room:get:7", shared.BuildCacheKey("room:get", int64(7)))
	assert.Equal(t, "rate:1.2.3.4:curl", shared.BuildCacheKey("rate", "1.2.3.4", "curl"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10}
	filter := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "name", Value: "a", Operator: dto.FilterOperatorLike},
			dto.Filter{Field: "capacity", Value: 4, Operator: dto.FilterOperatorGreaterEq},
		},
	}

	key := shared.BuildCacheKeyWithQuery("room:gets", params, filter)

	assert.Equal(t, key, shared.BuildCacheKeyWithQuery("room:gets", params, filter))
	assert.Contains(t, key, "room:gets:")
	assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("room:gets", dto.QueryParams{Page: 2, Limit: 10}, filter))
	assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("room:gets", params, dto.FilterGroup{}))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockRedisCache(ctrl)

	cache.EXPECT().Clear(gomock.Any(), "facility:gets:*").Return(nil)
	shared.InvalidateCaches(context.Background(), cache, "facility:gets")

	cache.EXPECT().Clear(gomock.Any(), "room:gets:*").Return(errors.New("redis down"))
	shared.InvalidateCaches(context.Background(), cache, "room:gets")
}

func TestContextUser(t *testing.T) {
	ctx := context.Background()

	assert.Zero(t, shared.GetUserID(ctx))
	assert.False(t, shared.IsAdmin(ctx))
	assert.Equal(t, constant.ContextGuest, shared.Actor(ctx))

	ctx = shared.WithUser(ctx, 9, "ana@example.com", constant.RoleAdmin)

	assert.Equal(t, int64(9), shared.GetUserID(ctx))
	assert.Equal(t, constant.RoleAdmin, shared.GetUserRole(ctx))
	assert.True(t, shared.IsAdmin(ctx))
	assert.Equal(t, "ana@example.com", shared.Actor(ctx))
}

func TestContextToken(t *testing.T) {
	tokenID, expiresAt := shared.GetToken(context.Background())
	assert.Empty(t, tokenID)
	assert.True(t, expiresAt.IsZero())

	exp := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	tokenID, expiresAt = shared.GetToken(shared.WithToken(context.Background(), "tok-1", exp))

	assert.Equal(t, "tok-1", tokenID)
	assert.Equal(t, exp, expiresAt)
}

func TestIsPqErrorCode(t *testing.T) {
	err := fmt.Errorf("failed to insert data (booking): %w", &pq.Error{Code: constant.PqErrorCodeFkViolation})

	assert.True(t, shared.IsPqErrorCode(err, constant.PqErrorCodeFkViolation))
	assert.False(t, shared.IsPqErrorCode(err, constant.PqErrorCodeUniqueViolation))
	assert.False(t, shared.IsPqErrorCode(errors.New("plain"), constant.PqErrorCodeFkViolation))
}

func boolPtr(b bool) *bool {
	return &b
}
