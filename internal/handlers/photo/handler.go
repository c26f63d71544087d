package photo

import (
	"fmt"
	"net/http"
	"roombooking/infras/otel"
	"roombooking/internal/domains/photo/model"
	"roombooking/internal/domains/photo/model/dto"
	"roombooking/internal/domains/photo/service"
	"roombooking/shared"
	"roombooking/shared/constant"
	"roombooking/shared/failure"
	"roombooking/shared/validator"
	"roombooking/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Photo
	otel    otel.Otel
}

func New(service service.Photo, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/photo_usage", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetPhotos)
		routerGroup.Post("/", handler.CreatePhoto)
		routerGroup.Post("/upload", handler.UploadPhoto)
		routerGroup.Get("/{id}", handler.GetPhotoByID)
		routerGroup.Delete("/{id}", handler.DeletePhoto)
	})
}

// GetPhotos lists the evidence photos of one booking.
// @Summary List booking photos
// @Tags Photo
// @Produce json
// @Param booking_id query integer true "Booking ID"
// @Success 200 {object} response.Data[[]dto.PhotoResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/photo_usage [get]
// @Security BearerAuth
func (handler *Handler) GetPhotos(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPhotos")
	defer scope.End()

	bookingID, err := shared.ParseID(model.FieldBookingID, r.URL.Query().Get(model.FieldBookingID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	photos, err := handler.service.GetByBooking(ctx, bookingID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("bookingID", bookingID).Msg("failed to get photos")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, photos)
}

// GetPhotoByID returns one photo.
// @Summary Get a photo
// @Tags Photo
// @Produce json
// @Param id path integer true "Photo ID"
// @Success 200 {object} response.Data[dto.PhotoResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/photo_usage/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetPhotoByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPhotoByID")
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	photo, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, photo)
}

// CreatePhoto attaches an already uploaded photo to a booking.
// @Summary Attach a photo
// @Tags Photo
// @Accept json
// @Produce json
// @Param request body dto.CreatePhotoRequest true "Photo"
// @Success 201 {object} response.Data[dto.PhotoResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/photo_usage [post]
// @Security BearerAuth
func (handler *Handler) CreatePhoto(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreatePhoto")
	defer scope.End()

	req := dto.CreatePhotoRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	photo, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create photo")

		response.WithError(w, err)

		return
	}

	response.WithCreated(w, fmt.Sprintf("/api/photo_usage/%d", photo.ID), photo)
}

// DeletePhoto removes one photo record.
// @Summary Delete a photo
// @Tags Photo
// @Param id path integer true "Photo ID"
// @Success 204
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/photo_usage/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeletePhoto")
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("id", id).Msg("failed to delete photo")

		response.WithError(w, err)

		return
	}

	response.WithNoContent(w)
}

// UploadPhoto stores an image and returns its public URL, ready for checkout or booking creation.
// @Summary Upload a photo
// @Tags Photo
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image (jpeg, png or gif)"
// @Success 201 {object} response.Data[dto.UploadResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/photo_usage/upload [post]
// @Security BearerAuth
func (handler *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadPhoto")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(w, failure.BadRequest(err))

		return
	}

	req := dto.UploadPhotoRequest{}

	if _, fileHeader, err := r.FormFile(constant.FormFile); err == nil {
		req.File = fileHeader
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.Upload(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload photo")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}
