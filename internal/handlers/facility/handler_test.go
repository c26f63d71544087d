package facility_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	otelMocks "roombooking/infras/otel/mocks"
	"roombooking/internal/domains/facility/model/dto"
	"roombooking/internal/domains/facility/service/mocks"
	"roombooking/internal/handlers/facility"
	"roombooking/shared/constant"
	"roombooking/shared/failure"
)

func setup(t *testing.T) (*mocks.MockFacility, *chi.Mux) {
	t.Helper()

	svc := mocks.NewMockFacility(gomock.NewController(t))
	handler := facility.New(svc, otelMocks.NewOtel())

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

func TestHandler_GetFacilities(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]dto.FacilityResponse{{ID: 1, Name: "Projector"}}, nil)

	rec := serve(router, http.MethodGet, "/facilities", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Projector"`)
}

func TestHandler_CreateFacility(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().Create(gomock.Any(), dto.FacilityRequest{Name: "Whiteboard"}).Return(dto.FacilityResponse{ID: 3, Name: "Whiteboard"}, nil)

		rec := serve(router, http.MethodPost, "/facilities", `{"name":"Whiteboard"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/api/facilities/3", rec.Header().Get(constant.RequestHeaderLocation))
	})

	t.Run("name required", func(t *testing.T) {
		_, router := setup(t)

		rec := serve(router, http.MethodPost, "/facilities", `{"name":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.FacilityResponse{}, failure.BadRequestFromString(`Facility "Whiteboard" already exists`))

		rec := serve(router, http.MethodPost, "/facilities", `{"name":"Whiteboard"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_UpdateFacility(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Update(gomock.Any(), int64(3), dto.FacilityRequest{Name: "TV"}).Return(dto.FacilityResponse{ID: 3, Name: "TV"}, nil)

	rec := serve(router, http.MethodPut, "/facilities/3", `{"name":"TV"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"TV"`)
}

func TestHandler_DeleteFacility(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Delete(gomock.Any(), int64(3)).Return(nil)
	svc.EXPECT().Delete(gomock.Any(), int64(4)).
		Return(failure.BadRequestFromString("Cannot delete facility because it is used by one or more rooms"))

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodDelete, "/facilities/3", "").Code)

	rec := serve(router, http.MethodDelete, "/facilities/4", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "used by one or more rooms")
}

func TestHandler_GetFacilityByID(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Get(gomock.Any(), int64(8)).Return(dto.FacilityResponse{}, failure.NotFound("Facility with ID 8 not found"))

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/facilities/8", "").Code)
}
