package facility

import (
	"fmt"
	"net/http"
	"roombooking/infras/otel"
	"roombooking/internal/domains/facility/model"
	"roombooking/internal/domains/facility/model/dto"
	"roombooking/internal/domains/facility/service"
	"roombooking/shared"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
	"roombooking/shared/validator"
	"roombooking/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Facility
	otel    otel.Otel
}

func New(service service.Facility, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/facilities", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetFacilities)
		routerGroup.Post("/", handler.CreateFacility)
		routerGroup.Get("/{id}", handler.GetFacilityByID)
		routerGroup.Put("/{id}", handler.UpdateFacility)
		routerGroup.Delete("/{id}", handler.DeleteFacility)
	})
}

// GetFacilities lists facilities.
// @Summary List facilities
// @Tags Facility
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Success 200 {object} response.Data[[]dto.FacilityResponse]
// @Failure 500 {object} response.Error
// @Router /api/facilities [get]
// @Security BearerAuth
func (handler *Handler) GetFacilities(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetFacilities")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if name := r.URL.Query().Get(model.FieldName); name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	facilities, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get facilities")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, facilities)
}

// GetFacilityByID returns one facility.
// @Summary Get a facility
// @Tags Facility
// @Produce json
// @Param id path integer true "Facility ID"
// @Success 200 {object} response.Data[dto.FacilityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/facilities/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetFacilityByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetFacilityByID")
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	facility, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("id", id).Msg("failed to get facility")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, facility)
}

// CreateFacility adds a facility.
// @Summary Create a facility
// @Tags Facility
// @Accept json
// @Produce json
// @Param request body dto.FacilityRequest true "Facility"
// @Success 201 {object} response.Data[dto.FacilityResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/facilities [post]
// @Security BearerAuth
func (handler *Handler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateFacility")
	defer scope.End()

	req := dto.FacilityRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	facility, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create facility")

		response.WithError(w, err)

		return
	}

	response.WithCreated(w, fmt.Sprintf("/api/facilities/%d", facility.ID), facility)
}

// UpdateFacility renames a facility.
// @Summary Update a facility
// @Tags Facility
// @Accept json
// @Produce json
// @Param id path integer true "Facility ID"
// @Param request body dto.FacilityRequest true "Facility"
// @Success 200 {object} response.Data[dto.FacilityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/facilities/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateFacility(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateFacility")
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	req := dto.FacilityRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	facility, err := handler.service.Update(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("id", id).Msg("failed to update facility")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, facility)
}

// DeleteFacility removes a facility no room uses.
// @Summary Delete a facility
// @Tags Facility
// @Param id path integer true "Facility ID"
// @Success 204
// @Failure 400 {object} response.Error "Facility still linked to a room"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /api/facilities/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteFacility(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteFacility")
	defer scope.End()

	id, err := shared.ParseID(constant.RequestParamID, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("id", id).Msg("failed to delete facility")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Facility deleted successfully by " + shared.Actor(ctx))

	response.WithNoContent(w)
}
