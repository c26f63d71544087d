package dto_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roombooking/shared/constant"
	"roombooking/shared/dto"
	"roombooking/shared/model"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	metadata := &dto.Metadata{}
	metadata.FromModel(model.NewMetadata("admin@example.com", createdAt))

	assert.Equal(t, createdAt.Format(constant.DateFormat), metadata.CreatedAt)
	assert.Equal(t, createdAt.Format(constant.DateFormat), metadata.ModifiedAt)
	assert.Equal(t, "admin@example.com", metadata.CreatedBy)
	assert.Equal(t, "admin@example.com", metadata.ModifiedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    "page=2&limit=20&sort_by=room&sort_dir=desc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "room", SortDir: dto.SortDirDesc},
		},
		{
			name:           "defaults",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "no defaults means unpaginated",
			expected: dto.QueryParams{},
		},
		{
			name:           "invalid numbers fall back",
			query:          "page=-1&limit=abc&sort_dir=sideways",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/bookings?"+tt.query, nil)

			params := dto.QueryParams{}
			params.FromRequest(req, tt.defaultRequest)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestQueryParams_Sanitize(t *testing.T) {
	allowed := map[string]string{"booking_date": "bookings.booking_date", "id": "bookings.id"}

	params := dto.QueryParams{SortBy: "booking_date"}
	params.Sanitize(allowed, "bookings.id")
	assert.Equal(t, dto.QueryParams{SortBy: "bookings.booking_date", SortDir: dto.SortDirAsc}, params)

	params = dto.QueryParams{SortBy: "id; DROP TABLE bookings", SortDir: dto.SortDirDesc}
	params.Sanitize(allowed, "bookings.id")
	assert.Equal(t, dto.QueryParams{SortBy: "bookings.id", SortDir: dto.SortDirAsc}, params)
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "status", Value: "pending", Operator: dto.FilterOperatorEq, Table: "bookings"},
			dto.Filter{Field: "room_id", Value: []int64{1, 2}, Operator: dto.FilterOperatorIn, Table: "bookings"},
			dto.Filter{Field: "checkout_time", Operator: dto.FilterIsNull, Table: "bookings"},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(bookings.status = :status AND bookings.room_id IN (:room_id_0, :room_id_1) AND bookings.checkout_time IS NULL)", where)
	assert.Equal(t, map[string]any{"status": "pending", "room_id_0": int64(1), "room_id_1": int64(2)}, args)
}

func TestFilterGroup_Empty(t *testing.T) {
	where, args := (&dto.FilterGroup{}).GetWhereClause()

	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "like wraps the value",
			filter:    dto.Filter{Field: "name", Value: "proj", Operator: dto.FilterOperatorLike, Table: "facilities"},
			wantWhere: "LOWER(facilities.name) LIKE LOWER(:name)",
			wantArgs:  map[string]any{"name": "%proj%"},
		},
		{
			name:      "arg name override",
			filter:    dto.Filter{ArgName: "expected_version", Field: "version", Value: int64(3), Operator: dto.FilterOperatorEq},
			wantWhere: "version = :expected_version",
			wantArgs:  map[string]any{"expected_version": int64(3)},
		},
		{
			name:      "empty in matches nothing",
			filter:    dto.Filter{Field: "room_id", Value: []int64{}, Operator: dto.FilterOperatorIn},
			wantWhere: "FALSE",
			wantArgs:  map[string]any{},
		},
		{
			name:      "scalar in is still bound",
			filter:    dto.Filter{Field: "room_id", Value: int64(4), Operator: dto.FilterOperatorIn},
			wantWhere: "room_id IN (:room_id)",
			wantArgs:  map[string]any{"room_id": int64(4)},
		},
		{
			name:      "unknown operator",
			filter:    dto.Filter{Field: "room_id", Value: 1, Operator: "between"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestMetadata_FromModelZero(t *testing.T) {
	metadata := &dto.Metadata{}
	metadata.FromModel(model.Metadata{})

	assert.Equal(t, dto.Metadata{}, *metadata)
}
