package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"mime/multipart"
	"roombooking/config"
	"roombooking/infras/otel"
	"roombooking/infras/postgres"
	"roombooking/infras/s3"
	"roombooking/internal/domains/room/model"
	"roombooking/internal/domains/room/model/dto"
	"roombooking/internal/domains/room/repository"
	"roombooking/shared"
	"roombooking/shared/cache"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
	"roombooking/shared/failure"
	"roombooking/shared/mime"
	"roombooking/shared/timezone"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type Room interface {
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]dto.RoomResponse, error)
	Get(ctx context.Context, id int64) (dto.RoomResponse, error)
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateRoomRequest) error
	ReplaceFacilities(ctx context.Context, id int64, req dto.ReplaceFacilitiesRequest) (dto.RoomResponse, error)
	Delete(ctx context.Context, id int64) error
}

type serviceImpl struct {
	repo         repository.Room
	facilityRepo repository.RoomFacility
	transactor   postgres.Transactor
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
	s3           s3.S3
}

func New(
	repo repository.Room,
	facilityRepo repository.RoomFacility,
	transactor postgres.Transactor,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	s3 s3.S3,
) Room {
	return &serviceImpl{
		repo:         repo,
		facilityRepo: facilityRepo,
		transactor:   transactor,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
		s3:           s3,
	}
}

func notFound(id int64) error {
	return failure.NotFound(fmt.Sprintf("Room with ID %d not found", id))
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res []dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	params.Sanitize(model.SortColumns, model.SortColumns[model.FieldID])

	cacheKey := shared.BuildCacheKeyWithQuery(constant.CacheRoomGetAll, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	rooms, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}

	ids := make([]int64, len(rooms))
	for i, room := range rooms {
		ids[i] = room.ID
	}

	links, err := s.linksOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	res = dto.FromModels(rooms, links)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) linksOf(ctx context.Context, roomIDs []int64) (map[int64][]model.RoomFacility, error) {
	if len(roomIDs) == 0 {
		return map[int64][]model.RoomFacility{}, nil
	}

	links, err := s.facilityRepo.GetAll(ctx, repository.OrderLinks(), repository.ByRoomIDs(roomIDs))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room facilities")

		return nil, fmt.Errorf("failed to get room facilities: %w", err)
	}

	return model.GroupByRoom(links), nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKey(constant.CacheRoomGet, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	room, err := s.repo.Get(ctx, repository.ByID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == 0 {
		return res, notFound(id) // nolint:wrapcheck
	}

	links, err := s.linksOf(ctx, []int64{id})
	if err != nil {
		return res, err
	}

	res.FromModel(room, links[id])

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	photoURL, err := s.uploadPhoto(ctx, req.Photo)
	if err != nil {
		return res, err
	}

	now := timezone.Now()

	var id int64

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		insertedID, err := s.repo.InsertReturningIDTx(ctx, tx, req.ToModel(shared.Actor(ctx), photoURL, now))
		if err != nil {
			return err
		}

		id = insertedID

		return s.facilityRepo.InsertBulkTx(ctx, tx, model.NewRoomFacilities(insertedID, req.FacilityIDs, now))
	})
	if err != nil {
		s.discardPhoto(ctx, photoURL)

		if shared.IsPqErrorCode(err, constant.PqErrorCodeFkViolation) {
			return res, failure.BadRequestFromString("one or more facilities do not exist") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create room")

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	s.invalidate(ctx, id)

	return s.Get(ctx, id)
}

// Update replaces the room's scalar fields and, when FacilityIDs is sent, its facility list. A new photo replaces
// the stored one; the old object is removed only after the commit.
func (s *serviceImpl) Update(ctx context.Context, id int64, req dto.UpdateRoomRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req.ID != 0 && req.ID != id {
		return failure.BadRequestFromString("Room ID mismatch") // nolint:wrapcheck
	}

	current, err := s.repo.Get(ctx, repository.ByID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to check room existence")

		return fmt.Errorf("failed to check room existence: %w", err)
	}

	if current.ID == 0 {
		return notFound(id)
	}

	photoURL, err := s.uploadPhoto(ctx, req.Photo)
	if err != nil {
		return err
	}

	now := timezone.Now()

	fields := req.ToUpdateFields(shared.Actor(ctx), now)
	if photoURL != constant.Empty {
		fields[model.FieldPhotoURL] = photoURL
	}

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		affected, err := s.repo.UpdateCountTx(ctx, tx, fields, repository.ByID(id))
		if err != nil {
			return err
		}

		if affected == 0 {
			return notFound(id)
		}

		if req.FacilityIDs == nil {
			return nil
		}

		return s.replaceLinks(ctx, tx, id, req.FacilityIDs, now)
	})
	if err != nil {
		s.discardPhoto(ctx, photoURL)

		if failure.IsFailure(err) {
			return err
		}

		if shared.IsPqErrorCode(err, constant.PqErrorCodeFkViolation) {
			return failure.BadRequestFromString("one or more facilities do not exist") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to update room")

		return fmt.Errorf("failed to update room: %w", err)
	}

	if photoURL != constant.Empty && current.PhotoURL != nil {
		s.discardPhoto(ctx, *current.PhotoURL)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) ReplaceFacilities(ctx context.Context, id int64, req dto.ReplaceFacilitiesRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ReplaceFacilities")
	defer scope.End()
	defer scope.TraceIfError(&err)

	exist, err := s.repo.Exist(ctx, repository.ByID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to check room existence")

		return res, fmt.Errorf("failed to check room existence: %w", err)
	}

	if !exist {
		return res, notFound(id)
	}

	err = s.transactor.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		return s.replaceLinks(ctx, tx, id, req.FacilityIDs, timezone.Now())
	})
	if err != nil {
		if shared.IsPqErrorCode(err, constant.PqErrorCodeFkViolation) {
			return res, failure.BadRequestFromString("one or more facilities do not exist") // nolint:wrapcheck
		}

		log.Error().Err(err).Int64("id", id).Msg("failed to replace room facilities")

		return res, fmt.Errorf("failed to replace room facilities: %w", err)
	}

	s.invalidate(ctx, id)

	return s.Get(ctx, id)
}

func (s *serviceImpl) replaceLinks(ctx context.Context, tx *sqlx.Tx, roomID int64, facilityIDs []int64, now time.Time) error {
	filter := shared.FilterByID(roomID, model.FieldRoomID, model.RoomFacilityTableName)

	if err := s.facilityRepo.DeleteTx(ctx, tx, filter); err != nil {
		return err
	}

	return s.facilityRepo.InsertBulkTx(ctx, tx, model.NewRoomFacilities(roomID, facilityIDs, now))
}

// Delete refuses rooms that still have bookings; their facility links go with the room.
func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	current, err := s.repo.Get(ctx, repository.ByID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to check room existence")

		return fmt.Errorf("failed to check room existence: %w", err)
	}

	if current.ID == 0 {
		return notFound(id)
	}

	affected, err := s.repo.DeleteCount(ctx, repository.ByID(id))
	if err != nil {
		if shared.IsPqErrorCode(err, constant.PqErrorCodeFkViolation) {
			return failure.Conflict(fmt.Sprintf("Room with ID %d still has bookings", id)) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to delete room")

		return fmt.Errorf("failed to delete room: %w", err)
	}

	if affected == 0 {
		return notFound(id)
	}

	if current.PhotoURL != nil {
		s.discardPhoto(ctx, *current.PhotoURL)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) uploadPhoto(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return constant.Empty, nil
	}

	upload, err := mime.ReadUpload(fileHeader, s.cfg.UploadMaxBytes(), s.cfg.App.Upload.AllowedMimeTypes)
	if err != nil {
		return constant.Empty, err
	}

	url, err := s.s3.UploadFileBytes(ctx, s.cfg.App.Upload.RoomPhotoDir, uuid.NewString()+upload.Extension, upload.ContentType, upload.Data)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload room photo")

		return constant.Empty, fmt.Errorf("failed to upload room photo: %w", err)
	}

	return url, nil
}

func (s *serviceImpl) discardPhoto(ctx context.Context, url string) {
	if url == constant.Empty {
		return
	}

	objectKey := s.s3.GetObjectNameFromURL(url)
	if objectKey == constant.Empty {
		return
	}

	if err := s.s3.DeleteFile(ctx, objectKey); err != nil {
		log.Warn().Err(err).Str("objectKey", objectKey).Msg("failed to delete room photo")
	}
}

// invalidate runs before the write returns so the next read never sees the old room.
func (s *serviceImpl) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(constant.CacheRoomGet, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete room cache")
	}

	shared.InvalidateCaches(ctx, s.cache, constant.CacheRoomGetAll)
}
