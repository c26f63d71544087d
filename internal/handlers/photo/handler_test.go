package photo_test

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
	"roombooking/internal/domains/photo/model/dto"
	"roombooking/internal/domains/photo/service/mocks"
	"roombooking/internal/handlers/photo"
	"roombooking/shared/constant"
	"roombooking/shared/failure"
)

func setup(t *testing.T) (*mocks.MockPhoto, *chi.Mux) {
	t.Helper()

	svc := mocks.NewMockPhoto(gomock.NewController(t))
	handler := photo.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_GetPhotos(t *testing.T) {
	t.Run("by booking", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().GetByBooking(gomock.Any(), int64(3)).Return([]dto.PhotoResponse{{ID: 1, BookingID: 3, PhotoURL: "http://x/a.jpg"}}, nil)

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/photo_usage?booking_id=3", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "http://x/a.jpg")
	})

	t.Run("booking id required", func(t *testing.T) {
		_, router := setup(t)

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/photo_usage", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_CreatePhoto(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().
			Create(gomock.Any(), dto.CreatePhotoRequest{BookingID: 3, PhotoURL: "http://x/b.jpg"}).
			Return(dto.PhotoResponse{ID: 9, BookingID: 3, PhotoURL: "http://x/b.jpg"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/photo_usage", strings.NewReader(`{"bookingId":3,"photoUrl":"http://x/b.jpg"}`))
		rec := serve(router, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/api/photo_usage/9", rec.Header().Get(constant.RequestHeaderLocation))
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc, router := setup(t)
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dto.PhotoResponse{}, failure.NotFound("Booking with ID 3 not found"))

		req := httptest.NewRequest(http.MethodPost, "/photo_usage", strings.NewReader(`{"bookingId":3,"photoUrl":"http://x/b.jpg"}`))
		assert.Equal(t, http.StatusNotFound, serve(router, req).Code)
	})
}

func TestHandler_DeletePhoto(t *testing.T) {
	svc, router := setup(t)
	svc.EXPECT().Delete(gomock.Any(), int64(9)).Return(nil)

	assert.Equal(t, http.StatusNoContent, serve(router, httptest.NewRequest(http.MethodDelete, "/photo_usage/9", nil)).Code)
}

func TestHandler_UploadPhoto(t *testing.T) {
	t.Run("uploaded", func(t *testing.T) {
		svc, router := setup(t)

		svc.EXPECT().
			Upload(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req dto.UploadPhotoRequest) (dto.UploadResponse, error) {
				assert.Equal(t, "evidence.jpg", req.File.Filename)

				return dto.UploadResponse{PhotoURL: "https://cdn/booking/1.jpg"}, nil
			})

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile(constant.FormFile, "evidence.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte{0xFF, 0xD8, 0xFF})
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/photo_usage/upload", body)
		req.Header.Set(constant.RequestHeaderContentType, writer.FormDataContentType())

		rec := serve(router, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"photoUrl":"https://cdn/booking/1.jpg"`)
	})

	t.Run("file missing", func(t *testing.T) {
		_, router := setup(t)

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		require.NoError(t, writer.WriteField("note", "x"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/photo_usage/upload", body)
		req.Header.Set(constant.RequestHeaderContentType, writer.FormDataContentType())

		assert.Equal(t, http.StatusBadRequest, serve(router, req).Code)
	})
}
