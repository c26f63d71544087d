package booking

import (
	"fmt"
	"net/http"
	"roombooking/infras/otel"
	"roombooking/internal/domains/booking/model"
	"roombooking/internal/domains/booking/model/dto"
	"roombooking/internal/domains/booking/service"
	"roombooking/shared"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
	"roombooking/shared/failure"
	"roombooking/shared/timezone"
	"roombooking/shared/validator"
	"roombooking/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const (
	paramUserID = "userId"
	paramRoomID = "roomId"

	exportFilename = "bookings.xlsx"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/me", handler.GetMyBookings)
		routerGroup.Get("/export", handler.ExportBookings)
		routerGroup.Get("/user/{userId}", handler.GetBookingsByUser)
		routerGroup.Get("/room/{roomId}", handler.GetBookingsByRoom)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Put("/{id}", handler.UpdateBooking)
		routerGroup.Delete("/{id}", handler.DeleteBooking)
		routerGroup.Put("/{id}/approve", handler.ApproveBooking)
		routerGroup.Put("/{id}/reject", handler.RejectBooking)
		routerGroup.Put("/{id}/checkin", handler.CheckinBooking)
		routerGroup.Put("/{id}/checkout", handler.CheckoutBooking)
	})
}

// filterFromRequest turns the optional status, room_id, user_id and booking_date query values into an AND group.
func filterFromRequest(r *http.Request) (gDto.FilterGroup, error) {
	query := r.URL.Query()
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	eq := func(field string, value any) {
		group.Filters = append(group.Filters, gDto.Filter{
			Field:    field,
			Operator: gDto.FilterOperatorEq,
			Value:    value,
			Table:    model.TableName,
		})
	}

	if value := query.Get(model.FieldStatus); value != "" {
		status, err := model.ParseStatus(value)
		if err != nil {
			return group, failure.BadRequest(err) // nolint:wrapcheck
		}

		eq(model.FieldStatus, status)
	}

	for _, field := range []string{model.FieldRoomID, model.FieldUserID} {
		if value := query.Get(field); value != "" {
			id, err := shared.ParseID(field, value)
			if err != nil {
				return group, err
			}

			eq(field, id)
		}
	}

	if value := query.Get(model.FieldBookingDate); value != "" {
		date, err := timezone.ParseDate(value)
		if err != nil {
			return group, failure.BadRequestFromString(fmt.Sprintf("invalid booking_date: %q", value)) // nolint:wrapcheck
		}

		eq(model.FieldBookingDate, date)
	}

	return group, nil
}

// GetBookings lists bookings.
// @Summary List bookings
// @Description List bookings with room and user names and their photo URLs. Unpaginated unless page or limit is sent.
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status" Enums(pending, approved, rejected, in_use, done)
// @Param room_id query integer false "Filter by room"
// @Param user_id query integer false "Filter by user"
// @Param booking_date query string false "Filter by date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[[]dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	filter, err := filterFromRequest(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	bookings, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID returns one booking.
// @Summary Get a booking
// @Tags Booking
// @Produce json
// @Param id path integer true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("id", id).Msg("failed to get booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// GetMyBookings lists the caller's bookings.
// @Summary List my bookings
// @Tags Booking
// @Produce json
// @Success 200 {object} response.Data[[]dto.BookingResponse]
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings/me [get]
// @Security BearerAuth
func (handler *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyBookings")
	defer scope.End()

	userID := shared.GetUserID(ctx)
	if userID == 0 {
		response.WithError(w, failure.Unauthorized("Invalid token"))

		return
	}

	bookings, err := handler.service.GetByUser(ctx, userID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get my bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingsByUser lists a user's bookings.
// @Summary List bookings of a user
// @Tags Booking
// @Produce json
// @Param userId path integer true "User ID"
// @Success 200 {object} response.Data[[]dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings/user/{userId} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingsByUser(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingsByUser")
	defer scope.End()

	userID, err := shared.ParseID(paramUserID, chi.URLParam(r, paramUserID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	bookings, err := handler.service.GetByUser(ctx, userID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("userID", userID).Msg("failed to get bookings by user")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingsByRoom lists a room's bookings.
// @Summary List bookings of a room
// @Tags Booking
// @Produce json
// @Param roomId path integer true "Room ID"
// @Success 200 {object} response.Data[[]dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings/room/{roomId} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingsByRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingsByRoom")
	defer scope.End()

	roomID, err := shared.ParseID(paramRoomID, chi.URLParam(r, paramRoomID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	bookings, err := handler.service.GetByRoom(ctx, roomID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("roomID", roomID).Msg("failed to get bookings by room")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// CreateBooking handles the creation of a new booking.
// @Summary Create a booking
// @Description The booking starts pending. userId defaults to the caller; photo URLs are attached in order.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse]
// @Header 201 {string} Location "/api/bookings/{id}"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	booking, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking created successfully by " + shared.Actor(ctx))

	response.WithCreated(writer, fmt.Sprintf("/api/bookings/%d", booking.ID), booking)
}

// UpdateBooking replaces a booking.
// @Summary Replace a booking
// @Description Overwrites every mutable field without transition checks. The body id must match the path.
// @Tags Booking
// @Accept json
// @Param id path integer true "Booking ID"
// @Param request body dto.UpdateBookingRequest true "Update Booking Request"
// @Success 204
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBooking")
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	req := dto.UpdateBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("id", id).Msg("failed to update booking")

		response.WithError(w, err)

		return
	}

	response.WithNoContent(w)
}

// DeleteBooking removes a booking and its photos.
// @Summary Delete a booking
// @Tags Booking
// @Param id path integer true "Booking ID"
// @Success 204
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteBooking")
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("id", id).Msg("failed to delete booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking deleted successfully by " + shared.Actor(ctx))

	response.WithNoContent(w)
}

// ApproveBooking marks a booking approved.
// @Summary Approve a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path integer true "Booking ID"
// @Param request body dto.NoteRequest false "Optional note"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings/{id}/approve [put]
// @Security BearerAuth
func (handler *Handler) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, "ApproveBooking", func(h *Handler, r *http.Request, id int64) (dto.BookingResponse, error) {
		req := dto.NoteRequest{}
		if err := decodeOptional(r, &req); err != nil {
			return dto.BookingResponse{}, err
		}

		return h.service.Approve(r.Context(), id, req)
	})
}

// RejectBooking marks a booking rejected.
// @Summary Reject a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path integer true "Booking ID"
// @Param request body dto.NoteRequest false "Optional note"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings/{id}/reject [put]
// @Security BearerAuth
func (handler *Handler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, "RejectBooking", func(h *Handler, r *http.Request, id int64) (dto.BookingResponse, error) {
		req := dto.NoteRequest{}
		if err := decodeOptional(r, &req); err != nil {
			return dto.BookingResponse{}, err
		}

		return h.service.Reject(r.Context(), id, req)
	})
}

// CheckinBooking records presence and moves the booking in use.
// @Summary Check in to a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path integer true "Booking ID"
// @Param request body dto.CheckinRequest false "GPS location"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings/{id}/checkin [put]
// @Security BearerAuth
func (handler *Handler) CheckinBooking(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, "CheckinBooking", func(h *Handler, r *http.Request, id int64) (dto.BookingResponse, error) {
		req := dto.CheckinRequest{}
		if err := decodeOptional(r, &req); err != nil {
			return dto.BookingResponse{}, err
		}

		return h.service.Checkin(r.Context(), id, req)
	})
}

// CheckoutBooking closes a checked-in booking and stores the evidence photo.
// @Summary Check out of a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path integer true "Booking ID"
// @Param request body dto.CheckoutRequest true "Evidence photo"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings/{id}/checkout [put]
// @Security BearerAuth
func (handler *Handler) CheckoutBooking(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, "CheckoutBooking", func(h *Handler, r *http.Request, id int64) (dto.BookingResponse, error) {
		req := dto.CheckoutRequest{}
		if err := validator.Validate(r.Body, &req); err != nil {
			return dto.BookingResponse{}, err
		}

		return h.service.Checkout(r.Context(), id, req)
	})
}

// ExportBookings downloads the filtered bookings as a spreadsheet.
// @Summary Export bookings
// @Tags Booking
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Filter by status"
// @Param room_id query integer false "Filter by room"
// @Param user_id query integer false "Filter by user"
// @Param booking_date query string false "Filter by date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/bookings/export [get]
// @Security BearerAuth
func (handler *Handler) ExportBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExportBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	filter, err := filterFromRequest(r)
	if err != nil {
		response.WithError(w, err)

		return
	}

	data, err := handler.service.Export(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to export bookings")

		response.WithError(w, err)

		return
	}

	response.WithFile(w, constant.ContentTypeXLSX, exportFilename, data)
}

type transitionFunc func(h *Handler, r *http.Request, id int64) (dto.BookingResponse, error)

// transition runs one lifecycle call with the shared id parsing, tracing and error rendering.
func (handler *Handler) transition(w http.ResponseWriter, r *http.Request, name string, call transitionFunc) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	booking, err := call(handler, r.WithContext(ctx), id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("id", id).Str("action", name).Msg("failed to change booking status")

		response.WithError(w, err)

		return
	}

	scope.AddEvent(fmt.Sprintf("Booking %d moved to %s by %s", id, booking.Status, shared.Actor(ctx)))

	response.WithJSON(w, http.StatusOK, booking)
}

// decodeOptional validates a JSON body that clients may leave out entirely.
func decodeOptional[T any](r *http.Request, req *T) error {
	if r.ContentLength == 0 {
		return validator.ValidateStruct(req)
	}

	return validator.ValidateOptional(r.Body, req)
}
