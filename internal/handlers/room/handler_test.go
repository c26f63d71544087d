package room_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	otelMocks "roombooking/infras/otel/mocks"
	"roombooking/internal/domains/room/model/dto"
	"roombooking/internal/domains/room/service/mocks"
	"roombooking/internal/handlers/room"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
	"roombooking/shared/failure"
)

func setup(t *testing.T) (*mocks.MockRoom, *chi.Mux) {
	t.Helper()

	svc := mocks.NewMockRoom(gomock.NewController(t))
	handler := room.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

type field struct {
	key, value string
}

func multipartRequest(t *testing.T, method, path string, fields []field, photo []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range fields {
		require.NoError(t, writer.WriteField(f.key, f.value))
	}

	if photo != nil {
		part, err := writer.CreateFormFile(constant.FormPhoto, "room.png")
		require.NoError(t, err)

		_, err = part.Write(photo)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(constant.RequestHeaderContentType, writer.FormDataContentType())

	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_GetRooms(t *testing.T) {
	svc, router := setup(t)

	svc.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) ([]dto.RoomResponse, error) {
			require.Len(t, filter.Filters, 1)

			return []dto.RoomResponse{{ID: 1, Name: "Aurora", Facilities: []string{"Projector"}}}, nil
		}).
		Times(2)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/meeting_rooms?name=aur", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"facilities":["Projector"]`)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/rooms?status=available", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_CreateRoom(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc, router := setup(t)

		svc.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error) {
				assert.Equal(t, "Aurora", req.Name)
				assert.Equal(t, 12, req.Capacity)
				assert.Equal(t, []int64{1, 2, 3}, req.FacilityIDs)
				require.NotNil(t, req.Latitude)
				assert.InDelta(t, -6.2, *req.Latitude, 0.0001)
				require.NotNil(t, req.Photo)
				assert.Equal(t, "room.png", req.Photo.Filename)

				return dto.RoomResponse{ID: 4, Name: req.Name}, nil
			})

		req := multipartRequest(t, http.MethodPost, "/rooms", []field{
			{"name", "Aurora"},
			{"capacity", "12"},
			{"location", "Floor 2"},
			{"latitude", "-6.2"},
			{"facility_ids", "1,2"},
			{"facility_ids", "3"},
		}, []byte("png"))

		rec := serve(router, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/api/rooms/4", rec.Header().Get(constant.RequestHeaderLocation))
	})

	t.Run("missing name", func(t *testing.T) {
		_, router := setup(t)

		rec := serve(router, multipartRequest(t, http.MethodPost, "/rooms", []field{{"location", "Floor 2"}}, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad capacity", func(t *testing.T) {
		_, router := setup(t)

		rec := serve(router, multipartRequest(t, http.MethodPost, "/rooms", []field{
			{"name", "Aurora"}, {"location", "Floor 2"}, {"capacity", "many"},
		}, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		_, router := setup(t)

		rec := serve(router, httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_UpdateRoom(t *testing.T) {
	t.Run("facilities untouched when omitted", func(t *testing.T) {
		svc, router := setup(t)

		svc.EXPECT().
			Update(gomock.Any(), int64(4), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, req dto.UpdateRoomRequest) error {
				assert.Nil(t, req.FacilityIDs)
				assert.Nil(t, req.Photo)

				return nil
			})

		rec := serve(router, multipartRequest(t, http.MethodPut, "/rooms/4", []field{
			{"name", "Aurora"}, {"location", "Floor 3"},
		}, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("empty facility list clears", func(t *testing.T) {
		svc, router := setup(t)

		svc.EXPECT().
			Update(gomock.Any(), int64(4), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, req dto.UpdateRoomRequest) error {
				assert.NotNil(t, req.FacilityIDs)
				assert.Empty(t, req.FacilityIDs)

				return nil
			})

		rec := serve(router, multipartRequest(t, http.MethodPut, "/rooms/4", []field{
			{"name", "Aurora"}, {"location", "Floor 3"}, {"facility_ids", ""},
		}, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing room", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().Update(gomock.Any(), int64(9), gomock.Any()).Return(failure.NotFound("Room with ID 9 not found"))

		rec := serve(router, multipartRequest(t, http.MethodPut, "/rooms/9", []field{
			{"name", "Aurora"}, {"location", "Floor 3"},
		}, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_ReplaceFacilities(t *testing.T) {
	svc, router := setup(t)

	svc.EXPECT().
		ReplaceFacilities(gomock.Any(), int64(4), dto.ReplaceFacilitiesRequest{FacilityIDs: []int64{2, 5}}).
		Return(dto.RoomResponse{ID: 4, FacilityIDs: []int64{2, 5}}, nil)

	req := httptest.NewRequest(http.MethodPut, "/rooms/4/facilities", strings.NewReader(`{"facility_ids":[2,5]}`))
	rec := serve(router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"facility_ids":[2,5]`)
}

func TestHandler_DeleteRoom(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Delete(gomock.Any(), int64(4)).Return(nil)
	svc.EXPECT().Delete(gomock.Any(), int64(5)).Return(failure.Conflict("Room with ID 5 still has bookings"))

	assert.Equal(t, http.StatusNoContent, serve(router, httptest.NewRequest(http.MethodDelete, "/rooms/4", nil)).Code)
	assert.Equal(t, http.StatusConflict, serve(router, httptest.NewRequest(http.MethodDelete, "/rooms/5", nil)).Code)
}

func TestHandler_GetRoomByID(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Get(gomock.Any(), int64(4)).Return(dto.RoomResponse{ID: 4, Name: "Aurora"}, nil)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/rooms/4", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Aurora"`)
}
