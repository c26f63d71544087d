package room

import (
	"fmt"
	"net/http"
	"roombooking/infras/otel"
	"roombooking/internal/domains/room/model"
	"roombooking/internal/domains/room/model/dto"
	"roombooking/internal/domains/room/service"
	"roombooking/shared"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
	"roombooking/shared/failure"
	"roombooking/shared/validator"
	"roombooking/transport/http/response"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const (
	formFacilityIDs = "facility_ids"
	formLatitude    = "latitude"
	formLongitude   = "longitude"
)

type Handler struct {
	service service.Room
	otel    otel.Otel
}

func New(service service.Room, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/meeting_rooms", handler.GetRooms)

	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Post("/", handler.CreateRoom)
		routerGroup.Get("/{id}", handler.GetRoomByID)
		routerGroup.Put("/{id}", handler.UpdateRoom)
		routerGroup.Delete("/{id}", handler.DeleteRoom)
		routerGroup.Put("/{id}/facilities", handler.ReplaceFacilities)
	})
}

// roomForm holds the multipart fields shared by create and update.
type roomForm struct {
	name        string
	capacity    int
	location    string
	description string
	status      string
	latitude    *float64
	longitude   *float64
	facilityIDs []int64
}

func parseRoomForm(r *http.Request) (form roomForm, err error) {
	form.name = r.FormValue(model.FieldName)
	form.location = r.FormValue(model.FieldLocation)
	form.description = r.FormValue(model.FieldDescription)
	form.status = r.FormValue(model.FieldStatus)

	if value := r.FormValue(model.FieldCapacity); value != "" {
		if form.capacity, err = shared.ConvertStringToInt(value); err != nil {
			return form, failure.BadRequestFromString("capacity must be a number") // nolint:wrapcheck
		}
	}

	if form.latitude, err = formFloat(r, formLatitude); err != nil {
		return form, err
	}

	if form.longitude, err = formFloat(r, formLongitude); err != nil {
		return form, err
	}

	form.facilityIDs, err = formIDs(r, formFacilityIDs)

	return form, err
}

func formFloat(r *http.Request, key string) (*float64, error) {
	value := r.FormValue(key)
	if value == "" {
		return nil, nil
	}

	number, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil, failure.BadRequestFromString(key + " must be a number") // nolint:wrapcheck
	}

	return &number, nil
}

// formIDs accepts repeated keys as well as comma separated values. A key that was never sent yields nil; a key sent
// empty yields an empty slice.
func formIDs(r *http.Request, key string) ([]int64, error) {
	values, sent := r.MultipartForm.Value[key]
	if !sent {
		return nil, nil
	}

	ids := []int64{}

	for _, value := range values {
		for part := range strings.SplitSeq(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}

			id, err := shared.ParseID(key, part)
			if err != nil {
				return nil, err
			}

			ids = append(ids, id)
		}
	}

	return ids, nil
}

// CreateRoom handles the creation of a new room.
// @Summary Create a room
// @Description Create a room with an optional photo and facility list.
// @Tags Room
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Room name"
// @Param capacity formData integer false "Room capacity"
// @Param location formData string true "Room location"
// @Param description formData string false "Room description"
// @Param status formData string false "Room status"
// @Param latitude formData number false "Latitude"
// @Param longitude formData number false "Longitude"
// @Param facility_ids formData []integer false "Facility IDs" collectionFormat(multi)
// @Param photo formData file false "Room photo"
// @Success 201 {object} response.Data[dto.RoomResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/rooms [post]
// @Security BearerAuth
func (handler *Handler) CreateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoom")
	defer scope.End()

	if err := request.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(writer, failure.BadRequest(err))

		return
	}

	form, err := parseRoomForm(request)
	if err != nil {
		response.WithError(writer, err)

		return
	}

	req := dto.CreateRoomRequest{
		Name:        form.name,
		Capacity:    form.capacity,
		Location:    form.location,
		Description: form.description,
		Status:      form.status,
		Latitude:    form.latitude,
		Longitude:   form.longitude,
		FacilityIDs: form.facilityIDs,
	}

	if _, fileHeader, err := request.FormFile(constant.FormPhoto); err == nil {
		req.Photo = fileHeader
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	room, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create room")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Room created successfully by " + shared.Actor(ctx))

	response.WithCreated(writer, fmt.Sprintf("/api/rooms/%d", room.ID), room)
}

// GetRooms lists rooms with their facility names.
// @Summary List rooms
// @Description Served on both /api/meeting_rooms and /api/rooms.
// @Tags Room
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param location query string false "Filter by location"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Data[[]dto.RoomResponse]
// @Failure 500 {object} response.Error
// @Router /api/meeting_rooms [get]
// @Security BearerAuth
func (handler *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRooms")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	for _, field := range []string{model.FieldName, model.FieldLocation} {
		if value := r.URL.Query().Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorLike,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	if status := r.URL.Query().Get(model.FieldStatus); status != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	rooms, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rooms")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Rooms retrieved successfully")

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetRoomByID retrieves a room by its ID.
// @Summary Get a room
// @Tags Room
// @Produce json
// @Param id path integer true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/rooms/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetRoomByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomByID")
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	room, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get room by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, room)
}

// UpdateRoom replaces a room's fields.
// @Summary Update a room
// @Description Omitting facility_ids keeps the current facilities; a new photo replaces the old one.
// @Tags Room
// @Accept multipart/form-data
// @Param id path integer true "Room ID"
// @Param name formData string true "Room name"
// @Param capacity formData integer false "Room capacity"
// @Param location formData string true "Room location"
// @Param description formData string false "Room description"
// @Param status formData string false "Room status"
// @Param latitude formData number false "Latitude"
// @Param longitude formData number false "Longitude"
// @Param facility_ids formData []integer false "Facility IDs" collectionFormat(multi)
// @Param photo formData file false "Room photo"
// @Success 204
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/rooms/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoom")
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(w, failure.BadRequest(err))

		return
	}

	form, err := parseRoomForm(r)
	if err != nil {
		response.WithError(w, err)

		return
	}

	req := dto.UpdateRoomRequest{
		Name:        form.name,
		Capacity:    form.capacity,
		Location:    form.location,
		Description: form.description,
		Status:      form.status,
		Latitude:    form.latitude,
		Longitude:   form.longitude,
		FacilityIDs: form.facilityIDs,
	}

	if value := r.FormValue(constant.RequestParamID); value != "" {
		if req.ID, err = shared.ParseID(constant.RequestParamID, value); err != nil {
			response.WithError(w, err)

			return
		}
	}

	if _, fileHeader, err := r.FormFile(constant.FormPhoto); err == nil {
		req.Photo = fileHeader
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update room")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Room updated successfully by " + shared.Actor(ctx))

	response.WithNoContent(w)
}

// ReplaceFacilities sets a room's facilities to exactly the given list.
// @Summary Replace room facilities
// @Tags Room
// @Accept json
// @Produce json
// @Param id path integer true "Room ID"
// @Param request body dto.ReplaceFacilitiesRequest true "Facility IDs"
// @Success 200 {object} response.Data[dto.RoomResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/rooms/{id}/facilities [put]
// @Security BearerAuth
func (handler *Handler) ReplaceFacilities(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ReplaceFacilities")
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	req := dto.ReplaceFacilitiesRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	room, err := handler.service.ReplaceFacilities(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("id", id).Msg("failed to replace room facilities")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, room)
}

// DeleteRoom deletes a room by its ID.
// @Summary Delete a room
// @Tags Room
// @Param id path integer true "Room ID"
// @Success 204
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/rooms/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRoom")
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete room")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Room deleted successfully by " + shared.Actor(ctx))

	response.WithNoContent(w)
}
