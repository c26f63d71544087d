package user_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	otelMocks "roombooking/infras/otel/mocks"
	"roombooking/internal/domains/user/model/dto"
	"roombooking/internal/domains/user/service/mocks"
	"roombooking/internal/handlers/user"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
	"roombooking/shared/failure"
)

func setup(t *testing.T) (*mocks.MockUser, *chi.Mux) {
	t.Helper()

	svc := mocks.NewMockUser(gomock.NewController(t))
	handler := user.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_GetUsers(t *testing.T) {
	t.Run("defaults and filters", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetUsersResponse, error) {
				assert.Equal(t, constant.DefaultValuePage, params.Page)
				assert.Equal(t, constant.DefaultValueLimit, params.Limit)
				require.Len(t, filter.Filters, 2)

				name, ok := filter.Filters[0].(gDto.Filter)
				require.True(t, ok)
				assert.Equal(t, gDto.FilterOperatorLike, name.Operator)
				assert.Equal(t, "ana", name.Value)

				role, ok := filter.Filters[1].(gDto.Filter)
				require.True(t, ok)
				assert.Equal(t, gDto.FilterOperatorEq, role.Operator)
				assert.Equal(t, constant.RoleAdmin, role.Value)

				return dto.GetUsersResponse{Users: []dto.UserResponse{{ID: 1, Name: "Ana"}}, TotalPage: 1, TotalData: 1}, nil
			})

		rec := serve(router, http.MethodGet, "/users?name=ana&role=admin", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total_data":1`)
	})

	t.Run("service failure", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(dto.GetUsersResponse{}, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, serve(router, http.MethodGet, "/users", "").Code)
	})
}

func TestHandler_GetUserByID(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Get(gomock.Any(), int64(5)).Return(dto.UserResponse{ID: 5, Email: "bo@example.com"}, nil)

	rec := serve(router, http.MethodGet, "/users/5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"bo@example.com"`)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/users/abc", "").Code)
}

func TestHandler_UpdateUser(t *testing.T) {
	t.Run("role change", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().
			Update(gomock.Any(), int64(5), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, req dto.UpdateUserRequest) (dto.UserResponse, error) {
				require.NotNil(t, req.Role)
				assert.Nil(t, req.Name)
				assert.Equal(t, constant.RoleAdmin, *req.Role)

				return dto.UserResponse{ID: 5, Role: constant.RoleAdmin}, nil
			})

		rec := serve(router, http.MethodPut, "/users/5", `{"role":"admin"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"role":"admin"`)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, router := setup(t)

		assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPut, "/users/5", `{"role":"root"}`).Code)
	})
}

func TestHandler_DeleteUser(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Delete(gomock.Any(), int64(5)).Return(nil)
	svc.EXPECT().Delete(gomock.Any(), int64(6)).Return(failure.Conflict("Cannot delete user because they have bookings"))

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodDelete, "/users/5", "").Code)
	assert.Equal(t, http.StatusConflict, serve(router, http.MethodDelete, "/users/6", "").Code)
}
