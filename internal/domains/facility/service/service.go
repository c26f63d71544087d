package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"roombooking/config"
	"roombooking/infras/otel"
	"roombooking/internal/domains/facility/model"
	"roombooking/internal/domains/facility/model/dto"
	"roombooking/internal/domains/facility/repository"
	roomRepo "roombooking/internal/domains/room/repository"
	"roombooking/shared"
	"roombooking/shared/cache"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
	"roombooking/shared/failure"
	"roombooking/shared/timezone"

	"github.com/rs/zerolog/log"
)

const facilityInUse = "Cannot delete facility because it is used by one or more rooms"

type Facility interface {
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]dto.FacilityResponse, error)
	Get(ctx context.Context, id int64) (dto.FacilityResponse, error)
	Create(ctx context.Context, req dto.FacilityRequest) (dto.FacilityResponse, error)
	Update(ctx context.Context, id int64, req dto.FacilityRequest) (dto.FacilityResponse, error)
	Delete(ctx context.Context, id int64) error
}

type serviceImpl struct {
	repo      repository.Facility
	roomLinks roomRepo.RoomFacility
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
}

func New(
	repo repository.Facility,
	roomLinks roomRepo.RoomFacility,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Facility {
	return &serviceImpl{
		repo:      repo,
		roomLinks: roomLinks,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
	}
}

func byID(id int64) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

func notFound(id int64) error {
	return failure.NotFound(fmt.Sprintf("Facility with ID %d not found", id))
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res []dto.FacilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	params.Sanitize(map[string]string{
		model.FieldID:   model.TableName + "." + model.FieldID,
		model.FieldName: model.TableName + "." + model.FieldName,
	}, model.TableName+"."+model.FieldID)

	cacheKey := shared.BuildCacheKeyWithQuery(constant.CacheFacilityGetAll, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	facilities, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get facilities")

		return nil, fmt.Errorf("failed to get facilities: %w", err)
	}

	res = dto.FromModels(facilities)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save facilities to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.FacilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKey(constant.CacheFacilityGet, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	facility, err := s.repo.Get(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get facility")

		return res, fmt.Errorf("failed to get facility: %w", err)
	}

	if facility.ID == 0 {
		return res, notFound(id) // nolint:wrapcheck
	}

	res.FromModel(facility)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save facility to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.FacilityRequest) (res dto.FacilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	facility := req.ToModel(shared.Actor(ctx), timezone.Now())

	facility.ID, err = s.repo.InsertReturningID(ctx, facility)
	if err != nil {
		if shared.IsPqErrorCode(err, constant.PqErrorCodeUniqueViolation) {
			return res, failure.BadRequestFromString(fmt.Sprintf("Facility %q already exists", req.Name)) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create facility")

		return res, fmt.Errorf("failed to create facility: %w", err)
	}

	shared.InvalidateCaches(ctx, s.cache, constant.CacheFacilityGetAll)

	res.FromModel(facility)

	return res, nil
}

// Update renames the facility. Room payloads embed facility names, so every cached room goes too.
func (s *serviceImpl) Update(ctx context.Context, id int64, req dto.FacilityRequest) (res dto.FacilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	affected, err := s.repo.UpdateCount(ctx, shared.TransformFields(req, shared.Actor(ctx)), byID(id))
	if err != nil {
		if shared.IsPqErrorCode(err, constant.PqErrorCodeUniqueViolation) {
			return res, failure.BadRequestFromString(fmt.Sprintf("Facility %q already exists", req.Name)) // nolint:wrapcheck
		}

		log.Error().Err(err).Int64("id", id).Msg("failed to update facility")

		return res, fmt.Errorf("failed to update facility: %w", err)
	}

	if affected == 0 {
		return res, notFound(id)
	}

	s.invalidate(ctx, id)

	return s.Get(ctx, id)
}

func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	facility, err := s.repo.Get(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to get facility")

		return fmt.Errorf("failed to get facility: %w", err)
	}

	if facility.ID == 0 {
		return notFound(id)
	}

	inUse, err := s.roomLinks.Exist(ctx, roomRepo.ByFacilityID(id))
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to check facility usage")

		return fmt.Errorf("failed to check facility usage: %w", err)
	}

	if inUse {
		return failure.BadRequestFromString(facilityInUse) // nolint:wrapcheck
	}

	affected, err := s.repo.DeleteCount(ctx, byID(id))
	if err != nil {
		// a room may have picked the facility up after the usage check
		if shared.IsPqErrorCode(err, constant.PqErrorCodeFkViolation) {
			return failure.BadRequestFromString(facilityInUse) // nolint:wrapcheck
		}

		log.Error().Err(err).Int64("id", id).Msg("failed to delete facility")

		return fmt.Errorf("failed to delete facility: %w", err)
	}

	if affected == 0 {
		return notFound(id)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(constant.CacheFacilityGet, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete facility cache")
	}

	shared.InvalidateCaches(ctx, s.cache, constant.CacheFacilityGetAll)
	shared.InvalidateCaches(ctx, s.cache, constant.CacheRoom)
}
