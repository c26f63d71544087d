package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"roombooking/config"
	"roombooking/infras/otel"
	"roombooking/infras/s3"
	"roombooking/internal/domains/user/model"
	"roombooking/internal/domains/user/model/dto"
	"roombooking/internal/domains/user/repository"
	"roombooking/shared"
	"roombooking/shared/cache"
	"roombooking/shared/constant"
	gDto "roombooking/shared/dto"
	"roombooking/shared/failure"
	"roombooking/shared/mime"
	"roombooking/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetUser    = "user:get"
	cacheGetAllUser = "user:gets"
	cacheCountUser  = "user:count"
)

type User interface {
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetUsersResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id int64) (dto.UserResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateUserRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, id int64) error
	Me(ctx context.Context) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (dto.UserResponse, error)
	UploadPhoto(ctx context.Context, req dto.UploadPhotoRequest) (dto.UploadPhotoResponse, error)
}

type serviceImpl struct {
	repo  repository.User
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	s3    s3.S3
}

func New(repo repository.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3) User {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		s3:    s3,
	}
}

func notFound(id int64) error {
	return failure.NotFound(fmt.Sprintf("User with ID %d not found", id))
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetUsersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	req.Sanitize(model.SortColumns, model.SortColumns[model.FieldID])

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllUser, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for users")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get users")

		return res, fmt.Errorf("failed to get users: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save users to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountUser, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count users")

		return res, fmt.Errorf("failed to count users: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save user count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKey(cacheGetUser, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for user")

		return res, nil
	}

	user, err := s.repo.Get(ctx, repository.ByID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == 0 {
		return res, notFound(id) // nolint:wrapcheck
	}

	res.FromModel(user)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save user to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, id int64, req dto.UpdateUserRequest) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req == (dto.UpdateUserRequest{}) {
		return res, failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	if err = s.update(ctx, id, shared.TransformFields(req, shared.Actor(ctx))); err != nil {
		return res, err
	}

	return s.Get(ctx, id)
}

// Delete refuses users that still own bookings.
func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if id == shared.GetUserID(ctx) {
		return failure.BadRequestFromString("You cannot delete your own account") // nolint:wrapcheck
	}

	affected, err := s.repo.DeleteCount(ctx, repository.ByID(id))
	if err != nil {
		if shared.IsPqErrorCode(err, constant.PqErrorCodeFkViolation) {
			return failure.Conflict(fmt.Sprintf("User with ID %d still has bookings", id)) // nolint:wrapcheck
		}

		log.Error().Err(err).Int64("id", id).Msg("failed to delete user")

		return fmt.Errorf("failed to delete user: %w", err)
	}

	if affected == 0 {
		return notFound(id)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Me(ctx context.Context) (dto.UserResponse, error) {
	userID := shared.GetUserID(ctx)
	if userID == 0 {
		return dto.UserResponse{}, failure.Unauthorized("Invalid token") // nolint:wrapcheck
	}

	return s.Get(ctx, userID)
}

func (s *serviceImpl) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateProfile")
	defer scope.End()
	defer scope.TraceIfError(&err)

	userID := shared.GetUserID(ctx)
	if userID == 0 {
		return res, failure.Unauthorized("Invalid token") // nolint:wrapcheck
	}

	taken, err := s.repo.Exist(ctx, repository.ByEmailExcept(req.Email, userID))
	if err != nil {
		log.Error().Err(err).Msg("failed to check email")

		return res, fmt.Errorf("failed to check email: %w", err)
	}

	if taken {
		return res, failure.BadRequestFromString("Email already in use") // nolint:wrapcheck
	}

	if err = s.update(ctx, userID, shared.TransformFields(req, shared.Actor(ctx))); err != nil {
		return res, err
	}

	return s.Get(ctx, userID)
}

func (s *serviceImpl) UploadPhoto(ctx context.Context, req dto.UploadPhotoRequest) (res dto.UploadPhotoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadPhoto")
	defer scope.End()
	defer scope.TraceIfError(&err)

	userID := shared.GetUserID(ctx)
	if userID == 0 {
		return res, failure.Unauthorized("Invalid token") // nolint:wrapcheck
	}

	upload, err := mime.ReadUpload(req.Photo, s.cfg.UploadMaxBytes(), s.cfg.App.Upload.AllowedMimeTypes)
	if err != nil {
		return res, err
	}

	url, err := s.s3.UploadFileBytes(ctx, s.cfg.App.Upload.ProfilePhotoDir, uuid.NewString()+upload.Extension, upload.ContentType, upload.Data)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload profile photo")

		return res, fmt.Errorf("failed to upload profile photo: %w", err)
	}

	fields := map[string]any{
		model.FieldPhoto:         url,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: shared.Actor(ctx),
	}

	if err = s.update(ctx, userID, fields); err != nil {
		return res, err
	}

	res.PhotoURL = url

	return res, nil
}

func (s *serviceImpl) update(ctx context.Context, id int64, fields map[string]any) error {
	affected, err := s.repo.UpdateCount(ctx, fields, repository.ByID(id))
	if err != nil {
		if shared.IsPqErrorCode(err, constant.PqErrorCodeUniqueViolation) {
			return failure.BadRequestFromString("Email already in use") // nolint:wrapcheck
		}

		log.Error().Err(err).Int64("id", id).Msg("failed to update user")

		return fmt.Errorf("failed to update user: %w", err)
	}

	if affected == 0 {
		return notFound(id)
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetUser, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete user from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllUser)
	shared.InvalidateCaches(ctx, s.cache, cacheCountUser)
}
